package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard",
	Long: `Show the leaderboard for a period, optionally narrowed to a branch.

Examples:
  psc leaderboard --period WEEKLY
  psc leaderboard --period ALL_TIME --branch 2
`,
	RunE: runLeaderboard,
}

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "List question contributions and their review status",
	RunE:  runContributions,
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List your study collections",
	RunE:  runCollections,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Platform and personal statistics",
}

var statsPlatformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show platform-wide statistics",
	RunE:  runStatsPlatform,
}

var statsMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your statistics",
	RunE:  runStatsMe,
}

var statsProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your accuracy per category",
	RunE:  runStatsProgress,
}

var statsActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show daily platform activity",
	RunE:  runStatsActivity,
}

var statsUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List per-user statistics",
	RunE:  runStatsUsers,
}

func init() {
	addPageFlags(leaderboardCmd)
	leaderboardCmd.Flags().String("period", "", "WEEKLY, MONTHLY or ALL_TIME")
	leaderboardCmd.Flags().Int("branch", 0, "only users of this branch")
	leaderboardCmd.Flags().Int("sub-branch", 0, "only users of this sub-branch")

	addPageFlags(contributionsCmd)
	contributionsCmd.Flags().String("status", "", "review status, e.g. PENDING or APPROVED")
	contributionsCmd.Flags().Int("year", 0, "contribution year")
	contributionsCmd.Flags().Int("month", 0, "contribution month (1-12)")

	addPageFlags(collectionsCmd)
	addPageFlags(statsProgressCmd)
	addPageFlags(statsActivityCmd)
	addPageFlags(statsUsersCmd)

	statsCmd.AddCommand(statsPlatformCmd)
	statsCmd.AddCommand(statsMeCmd)
	statsCmd.AddCommand(statsProgressCmd)
	statsCmd.AddCommand(statsActivityCmd)
	statsCmd.AddCommand(statsUsersCmd)

	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(contributionsCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	period, _ := cmd.Flags().GetString("period")
	branch, _ := cmd.Flags().GetInt("branch")
	subBranch, _ := cmd.Flags().GetInt("sub-branch")

	page, err := a.exam.Leaderboard(cmd.Context(), exam.LeaderboardParams{
		TimePeriod: strings.ToUpper(period),
		Branch:     branch,
		SubBranch:  subBranch,
		Page:       pageFlag(cmd),
	})
	if err != nil {
		return ux.FormatError(err, "loading leaderboard")
	}
	return a.list(cmd, "Leaderboard", page, leaderboardView(page))
}

func runContributions(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")

	page, err := a.exam.ListContributions(cmd.Context(), exam.ContributionListParams{
		Page:              pageFlag(cmd),
		Status:            strings.ToUpper(status),
		ContributionYear:  year,
		ContributionMonth: month,
	})
	if err != nil {
		return ux.FormatError(err, "listing contributions")
	}
	return a.list(cmd, "Contributions", page, contributionsView(page))
}

func collectionsView(page *api.Page[exam.StudyCollection]) ux.Tabular {
	return pageTable(page, []string{"ID", "Name", "Questions", "Private"}, func(c exam.StudyCollection) []string {
		return []string{itoa(c.ID), c.Name, itoa(c.QuestionCount), yesNo(c.IsPrivate)}
	})
}

func runCollections(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListCollections(cmd.Context(), pageFlag(cmd))
	if err != nil {
		return ux.FormatError(err, "listing collections")
	}
	return a.list(cmd, "Collections", page, collectionsView(page))
}

func runStatsPlatform(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	s, err := a.exam.PlatformStats(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "loading platform statistics")
	}
	if err := present(s, "loading platform statistics"); err != nil {
		return err
	}
	return a.render(s, platformStatsView(s))
}

func runStatsMe(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	s, err := a.exam.MyStatistics(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "loading statistics")
	}
	if err := present(s, "loading statistics"); err != nil {
		return err
	}
	return a.render(s, userStatsView(s))
}

func runStatsProgress(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListProgress(cmd.Context(), pageFlag(cmd))
	if err != nil {
		return ux.FormatError(err, "loading progress")
	}
	return a.list(cmd, "Progress", page, progressView(page))
}

func activityView(page *api.Page[exam.DailyActivity]) ux.Tabular {
	return pageTable(page, []string{"Date", "New users", "Active users", "Questions added", "Approved", "Mock tests", "Answers"}, func(d exam.DailyActivity) []string {
		return []string{
			d.Date,
			itoa(d.NewUsers),
			itoa(d.ActiveUsers),
			itoa(d.QuestionsAdded),
			itoa(d.QuestionsApproved),
			itoa(d.MockTestsTaken),
			itoa(d.TotalAnswersSubmitted),
		}
	})
}

func runStatsActivity(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListDailyActivity(cmd.Context(), pageFlag(cmd))
	if err != nil {
		return ux.FormatError(err, "loading activity")
	}
	return a.list(cmd, "Daily activity", page, activityView(page))
}

func usersStatsView(page *api.Page[exam.UserStatistics]) ux.Tabular {
	return pageTable(page, []string{"Answered", "Correct", "Accuracy", "Mock tests", "Contributed", "Streak"}, func(s exam.UserStatistics) []string {
		return []string{
			itoa(s.QuestionsAnswered),
			itoa(s.CorrectAnswers),
			percent(s.AccuracyPercentage),
			itoa(s.MockTestsCompleted),
			itoa(s.QuestionsContributed),
			itoa(s.StudyStreakDays),
		}
	})
}

func runStatsUsers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListStatistics(cmd.Context(), pageFlag(cmd))
	if err != nil {
		return ux.FormatError(err, "listing statistics")
	}
	return a.list(cmd, "Statistics", page, usersStatsView(page))
}
