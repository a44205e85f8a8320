package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/letterrip/letterrip/internal/triage"
)

// Message is a parsed Gmail message
type Message struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Snippet  string
	Body     string
	Date     string
	LabelIDs []string
}

// Draft is a summary of a Gmail draft
type Draft struct {
	ID      string
	To      string
	Subject string
	Snippet string
}

// ListOptions controls which messages ListMessages returns
type ListOptions struct {
	// NewerThanDays restricts results to the last N days when > 0
	NewerThanDays int

	// LabelIDs restricts results to messages carrying all given labels
	LabelIDs []string

	// UntriagedOnly excludes messages that already carry a triage label
	UntriagedOnly bool

	// MaxResults caps the number of messages returned (default 50)
	MaxResults int64
}

// BuildQuery renders the Gmail search query for the options
func BuildQuery(opts ListOptions) string {
	var parts []string
	if opts.UntriagedOnly {
		parts = append(parts, triage.ExcludeQuery())
	}
	if opts.NewerThanDays > 0 {
		parts = append(parts, fmt.Sprintf("newer_than:%dd", opts.NewerThanDays))
	}
	return strings.Join(parts, " ")
}

// ListMessages returns parsed inbox messages matching the options
func (c *Client) ListMessages(ctx context.Context, opts ListOptions) ([]*Message, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	labelIDs := opts.LabelIDs
	if len(labelIDs) == 0 {
		labelIDs = []string{"INBOX"}
	}

	req := c.svc.Messages.List("me").
		LabelIds(labelIDs...).
		MaxResults(maxResults).
		Context(ctx)
	if q := BuildQuery(opts); q != "" {
		req = req.Q(q)
	}

	res, err := req.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", mapAPIError(err))
	}

	messages := make([]*Message, 0, len(res.Messages))
	for _, ref := range res.Messages {
		msg, err := c.GetMessage(ctx, ref.Id)
		if err != nil {
			// A message can disappear between list and get; skip it.
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// GetMessage fetches a single message with its body extracted
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, mapAPIError(err))
	}
	return parseMessage(msg), nil
}

// ListSent returns sent messages addressed to the given recipient, newest
// first. Useful for sampling the user's writing style toward a contact.
func (c *Client) ListSent(ctx context.Context, toAddress string, maxResults int64) ([]*Message, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	res, err := c.svc.Messages.List("me").
		LabelIds("SENT").
		Q("to:" + toAddress).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", mapAPIError(err))
	}

	messages := make([]*Message, 0, len(res.Messages))
	for _, ref := range res.Messages {
		msg, err := c.GetMessage(ctx, ref.Id)
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// CreateDraftReply creates a draft reply in an existing thread
func (c *Client) CreateDraftReply(ctx context.Context, threadID, to, subject, body string) (string, error) {
	if threadID == "" {
		return "", fmt.Errorf("threadID is required")
	}
	if to == "" {
		return "", fmt.Errorf("recipient is required")
	}
	if subject == "" {
		subject = "Re: "
	}

	raw := buildRawMessage(to, subject, body)
	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw:      raw,
			ThreadId: threadID,
		},
	}

	created, err := c.svc.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", mapAPIError(err))
	}
	return created.Id, nil
}

// ListDrafts returns draft summaries, newest first
func (c *Client) ListDrafts(ctx context.Context, maxResults int64) ([]*Draft, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	res, err := c.svc.Drafts.List("me").MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", mapAPIError(err))
	}

	drafts := make([]*Draft, 0, len(res.Drafts))
	for _, ref := range res.Drafts {
		full, err := c.svc.Drafts.Get("me", ref.Id).Format("metadata").Context(ctx).Do()
		if err != nil || full.Message == nil {
			continue
		}
		headers := headerMap(full.Message.Payload)
		drafts = append(drafts, &Draft{
			ID:      full.Id,
			To:      headers["To"],
			Subject: headers["Subject"],
			Snippet: full.Message.Snippet,
		})
	}
	return drafts, nil
}

// EmailMessage describes an outgoing email
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool
}

// SendEmail sends an email through the Gmail API and returns the message ID
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	var b strings.Builder
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + "\r\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(msg.Bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(msg.Subject) + "\r\n")
	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n\r\n")
	b.WriteString(msg.Body)

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(b.String())),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", mapAPIError(err))
	}
	return sent.Id, nil
}

func buildRawMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + encodeRFC2047(subject) + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n\r\n")
	b.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// encodeRFC2047 encodes a header value when it contains non-ASCII
// characters (like umlauts), per RFC 2047
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

func parseMessage(msg *gmail.Message) *Message {
	headers := headerMap(msg.Payload)
	return &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     headers["From"],
		To:       headers["To"],
		Subject:  headers["Subject"],
		Snippet:  msg.Snippet,
		Body:     ExtractBody(msg.Payload),
		Date:     headers["Date"],
		LabelIDs: msg.LabelIds,
	}
}

func headerMap(payload *gmail.MessagePart) map[string]string {
	headers := make(map[string]string)
	if payload == nil {
		return headers
	}
	for _, h := range payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}
