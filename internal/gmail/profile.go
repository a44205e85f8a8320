package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
)

// GetProfile returns the Gmail profile for the authenticated user
func (c *Client) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	profile, err := c.svc.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get Gmail profile: %w", err)
	}
	return profile, nil
}

// GetVacationSettings returns the vacation/auto-reply settings for the
// authenticated user
func (c *Client) GetVacationSettings(ctx context.Context) (*gmail.VacationSettings, error) {
	settings, err := c.svc.Settings.GetVacation("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get vacation settings: %w", err)
	}
	return settings, nil
}
