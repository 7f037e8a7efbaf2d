package exam

import (
	"context"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// AppSetting is a server-managed key/value setting.
type AppSetting struct {
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	Description  *string   `json:"description"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListSettings returns every public setting. The endpoint is not paginated.
func (c *Client) ListSettings(ctx context.Context) ([]AppSetting, error) {
	var out []AppSetting
	if err := c.doer.Do(ctx, api.Get(api.PathSettings), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSetting(ctx context.Context, key string) (*AppSetting, error) {
	return one[AppSetting](ctx, c, api.Get(api.SettingPath(key)))
}
