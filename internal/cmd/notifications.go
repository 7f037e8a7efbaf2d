package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Read your notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE:  runNotificationsReadAll,
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Print the number of unread notifications",
	RunE:  runNotificationsUnread,
}

func init() {
	addPageFlags(notificationsListCmd)
	notificationsListCmd.Flags().Bool("unread", false, "only unread notifications")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsUnreadCmd)

	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	p := exam.NotificationListParams{Page: pageFlag(cmd)}
	if unread, _ := cmd.Flags().GetBool("unread"); unread {
		isRead := false
		p.IsRead = &isRead
	}

	page, err := a.exam.ListNotifications(cmd.Context(), p)
	if err != nil {
		return ux.FormatError(err, "listing notifications")
	}
	return a.list(cmd, "Notifications", page, notificationsView(page, a.lang()))
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "notification")
	if err != nil {
		return err
	}

	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	if err := a.exam.MarkNotificationRead(cmd.Context(), id); err != nil {
		return ux.FormatError(err, "marking notification read")
	}
	return a.done("Marked notification %d as read", id)
}

func runNotificationsReadAll(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	if err := a.exam.MarkAllNotificationsRead(cmd.Context()); err != nil {
		return ux.FormatError(err, "marking notifications read")
	}
	return a.done("Marked all notifications as read")
}

func runNotificationsUnread(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	n, err := a.exam.UnreadNotificationCount(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "counting unread notifications")
	}
	return a.render(exam.UnreadCount{UnreadCount: n}, tableFunc(func() ux.Table {
		return ux.Table{Headers: []string{"Unread"}, Rows: [][]string{{itoa(n)}}}
	}))
}
