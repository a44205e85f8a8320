package forms

import (
	"context"
	"fmt"

	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/letterrip/letterrip/internal/google"
)

// Client wraps the Google Forms service for a single account
type Client struct {
	svc     *forms.Service
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Forms client authenticated for a specific
// account using the file-based token store
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(httpClient))
}

// NewClientForAccountWithProvider creates a Forms client using the given
// token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(google.GetHTTPClientForToken(ctx, token)))
}

func newClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := forms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// GetForm returns a form's structure and questions
func (c *Client) GetForm(ctx context.Context, formID string) (*Form, error) {
	f, err := c.svc.Forms.Get(formID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}
	return toForm(f), nil
}

// ListResponses returns responses, following pagination. A limit of 0
// means no cap.
func (c *Client) ListResponses(ctx context.Context, formID string, limit int) ([]Response, error) {
	var responses []Response
	pageToken := ""
	for {
		call := c.svc.Forms.Responses.List(formID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list responses of form %s: %w", formID, err)
		}

		for _, r := range res.Responses {
			responses = append(responses, toResponse(r))
			if limit > 0 && len(responses) >= limit {
				return responses, nil
			}
		}

		pageToken = res.NextPageToken
		if pageToken == "" {
			return responses, nil
		}
	}
}

// GetResponse returns a single response by ID
func (c *Client) GetResponse(ctx context.Context, formID, responseID string) (*Response, error) {
	r, err := c.svc.Forms.Responses.Get(formID, responseID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get response %s of form %s: %w", responseID, formID, err)
	}
	resp := toResponse(r)
	return &resp, nil
}

// GetResponsesTable returns responses pivoted into rows keyed by question
// title, for spreadsheet-like consumption
func (c *Client) GetResponsesTable(ctx context.Context, formID string, limit int) ([]map[string]string, error) {
	form, err := c.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	responses, err := c.ListResponses(ctx, formID, limit)
	if err != nil {
		return nil, err
	}
	return ResponsesToRows(form, responses), nil
}

// GetResponseSummary aggregates responses into per-question statistics
func (c *Client) GetResponseSummary(ctx context.Context, formID string) (*Summary, error) {
	form, err := c.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	responses, err := c.ListResponses(ctx, formID, 0)
	if err != nil {
		return nil, err
	}
	return Summarize(form, responses), nil
}
