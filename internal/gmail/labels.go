package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/letterrip/letterrip/internal/triage"
)

// ListLabels returns the account's full label catalog. Implements
// triage.Store.
func (c *Client) ListLabels(ctx context.Context) ([]triage.Label, error) {
	res, err := c.svc.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", mapAPIError(err))
	}

	labels := make([]triage.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, triage.Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

// MessageLabelIDs returns the label IDs currently attached to a message.
// Implements triage.Store.
func (c *Client) MessageLabelIDs(ctx context.Context, messageID string) ([]string, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("minimal").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, mapAPIError(err))
	}
	return msg.LabelIds, nil
}

// ModifyMessageLabels applies one add/remove delta in a single Modify call
// and returns the resulting label IDs. Implements triage.Store.
func (c *Client) ModifyMessageLabels(ctx context.Context, messageID string, addIDs, removeIDs []string) ([]string, error) {
	msg, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addIDs,
		RemoveLabelIds: removeIDs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels of message %s: %w", messageID, mapAPIError(err))
	}
	return msg.LabelIds, nil
}

// EnsureTriageLabels creates any triage labels missing from the account.
// Gmail treats "Needs-Review" and "Needs Review" as the same label, so an
// existing label matching under that equivalence is reused rather than
// recreated. A 409 on create means someone else created it concurrently;
// the catalog is re-read to pick it up.
func (c *Client) EnsureTriageLabels(ctx context.Context) error {
	catalog, err := c.ListLabels(ctx)
	if err != nil {
		return err
	}

	for _, name := range MissingTriageLabels(catalog) {
		_, err := c.svc.Labels.Create("me", &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(ctx).Do()
		if err == nil {
			continue
		}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			// Created concurrently or conflicts under Gmail's name
			// equivalence; verify it is now resolvable.
			refreshed, listErr := c.ListLabels(ctx)
			if listErr != nil {
				return listErr
			}
			if _, resolveErr := triage.ResolveLabel(refreshed, name); resolveErr == nil {
				continue
			}
		}
		return fmt.Errorf("failed to create label %q: %w", name, mapAPIError(err))
	}
	return nil
}

// MissingTriageLabels returns the triage label names not present in the
// catalog, using Gmail's space/hyphen-insensitive name matching.
func MissingTriageLabels(catalog []triage.Label) []string {
	existing := make(map[string]bool, len(catalog))
	for _, l := range catalog {
		existing[normalizeForMatch(l.Name)] = true
	}

	var missing []string
	for _, name := range triage.LabelNames() {
		if !existing[normalizeForMatch(name)] {
			missing = append(missing, name)
		}
	}
	return missing
}

func normalizeForMatch(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return name
}

// mapAPIError folds Gmail API failures onto the triage error taxonomy so
// callers can react to the class of failure instead of HTTP details.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", triage.ErrNotFound, err)
		case apiErr.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", triage.ErrInvalidLabel, err)
		case apiErr.Code == http.StatusUnauthorized,
			apiErr.Code == http.StatusForbidden,
			apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", triage.ErrUpstreamUnavailable, err)
		}
		return err
	}

	// Non-HTTP failures are transport problems.
	return fmt.Errorf("%w: %v", triage.ErrUpstreamUnavailable, err)
}
