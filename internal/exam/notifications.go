package exam

import (
	"context"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// Notification is an in-app message.
type Notification struct {
	ID               int       `json:"id"`
	NotificationType string    `json:"notification_type"`
	TitleEN          string    `json:"title_en"`
	TitleNP          string    `json:"title_np"`
	MessageEN        string    `json:"message_en"`
	MessageNP        string    `json:"message_np"`
	RelatedQuestion  *int      `json:"related_question"`
	RelatedMockTest  *int      `json:"related_mock_test"`
	IsRead           bool      `json:"is_read"`
	ActionURL        *string   `json:"action_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// Title returns the localized title.
func (n Notification) Title(lang Language) string {
	return localized(lang, n.TitleEN, n.TitleNP)
}

// UnreadCount is the body of the unread endpoint.
type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationListParams filters ListNotifications.
type NotificationListParams struct {
	Page   int
	IsRead *bool
}

func (c *Client) ListNotifications(ctx context.Context, p NotificationListParams) (*api.Page[Notification], error) {
	return list[Notification](ctx, c, api.PathNotifications, api.Query{"page": p.Page, "is_read": p.IsRead})
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	return c.doer.Do(ctx, api.Post(api.NotificationReadPath(id), nil), nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doer.Do(ctx, api.Post(api.PathNotificationsReadAll, nil), nil)
}

// UnreadNotificationCount returns 0 when the server sends no body.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	out, err := one[UnreadCount](ctx, c, api.Get(api.PathNotificationsUnread))
	if err != nil || out == nil {
		return 0, err
	}
	return out.UnreadCount, nil
}
