package slides

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	slides "google.golang.org/api/slides/v1"

	"github.com/letterrip/letterrip/internal/google"
)

// Client wraps the Google Slides service for a single account
type Client struct {
	svc     *slides.Service
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Slides client authenticated for a specific
// account using the file-based token store
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(httpClient))
}

// NewClientForAccountWithProvider creates a Slides client using the given
// token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	return newClient(ctx, account, option.WithHTTPClient(google.GetHTTPClientForToken(ctx, token)))
}

func newClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := slides.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// GetPresentation returns presentation metadata
func (c *Client) GetPresentation(ctx context.Context, presentationID string) (*PresentationInfo, error) {
	p, err := c.svc.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}
	return toPresentationInfo(p), nil
}

// ListSlides returns all slides of a presentation with their elements
func (c *Client) ListSlides(ctx context.Context, presentationID string) ([]Slide, error) {
	p, err := c.svc.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	out := make([]Slide, 0, len(p.Slides))
	for _, page := range p.Slides {
		out = append(out, toSlide(page))
	}
	return out, nil
}

// GetSlideByNumber returns a slide by its 1-indexed position, or nil when
// out of range
func (c *Client) GetSlideByNumber(ctx context.Context, presentationID string, number int) (*Slide, error) {
	all, err := c.ListSlides(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if number < 1 || number > len(all) {
		return nil, nil
	}
	return &all[number-1], nil
}

// CreatePresentation creates a new presentation and returns its metadata
func (c *Client) CreatePresentation(ctx context.Context, title string) (*PresentationInfo, error) {
	p, err := c.svc.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	return toPresentationInfo(p), nil
}

// CreateSlide appends a slide with a predefined layout (BLANK, TITLE,
// TITLE_AND_BODY, ...) and returns its object ID
func (c *Client) CreateSlide(ctx context.Context, presentationID, layout string) (string, error) {
	if layout == "" {
		layout = "BLANK"
	}

	res, err := c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{
				CreateSlide: &slides.CreateSlideRequest{
					SlideLayoutReference: &slides.LayoutReference{
						PredefinedLayout: layout,
					},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create slide: %w", err)
	}

	if len(res.Replies) > 0 && res.Replies[0].CreateSlide != nil {
		return res.Replies[0].CreateSlide.ObjectId, nil
	}
	return "", nil
}

// AddTextBox places a text box on a slide. Position and size are in points.
func (c *Client) AddTextBox(ctx context.Context, presentationID, slideID, text string, x, y, width, height float64) (string, error) {
	elementID := fmt.Sprintf("textbox_%s_%d", slideID, len(text))

	res, err := c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{
			{
				CreateShape: &slides.CreateShapeRequest{
					ObjectId:  elementID,
					ShapeType: "TEXT_BOX",
					ElementProperties: &slides.PageElementProperties{
						PageObjectId: slideID,
						Size: &slides.Size{
							Width:  &slides.Dimension{Magnitude: width, Unit: "PT"},
							Height: &slides.Dimension{Magnitude: height, Unit: "PT"},
						},
						Transform: &slides.AffineTransform{
							ScaleX:     1,
							ScaleY:     1,
							TranslateX: x,
							TranslateY: y,
							Unit:       "PT",
						},
					},
				},
			},
			{
				InsertText: &slides.InsertTextRequest{
					ObjectId:       elementID,
					InsertionIndex: 0,
					Text:           text,
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to add text box: %w", err)
	}

	if len(res.Replies) > 0 && res.Replies[0].CreateShape != nil {
		return res.Replies[0].CreateShape.ObjectId, nil
	}
	return elementID, nil
}
