package triage

import (
	"context"
	"fmt"
)

// Store is the mail-store collaborator the Manager mutates labels through.
// Implementations are expected to map their transport errors onto
// ErrNotFound and ErrUpstreamUnavailable; everything behind this interface
// (auth, retries, timeouts) is the implementation's concern.
type Store interface {
	// ListLabels returns the full label catalog.
	ListLabels(ctx context.Context) ([]Label, error)

	// MessageLabelIDs returns the label IDs currently attached to a message.
	MessageLabelIDs(ctx context.Context, messageID string) ([]string, error)

	// ModifyMessageLabels applies one add/remove delta atomically and
	// returns the resulting label IDs as reported by the store.
	ModifyMessageLabels(ctx context.Context, messageID string, addIDs, removeIDs []string) ([]string, error)
}

// Manager translates triage operations into single label mutations against
// a Store. It holds no message state: the catalog and the message's current
// labels are re-fetched on every call, so concurrent callers race only at
// the store's own last-write-wins mutation.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// ApplyCategory attaches the category's label and strips any other triage
// label in the same mutation, so the message ends up with exactly one
// triage label. Returns the resulting label set.
func (m *Manager) ApplyCategory(ctx context.Context, messageID string, category Category) ([]Label, error) {
	catalog, err := m.store.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	target, err := ResolveLabel(catalog, category.LabelName())
	if err != nil {
		return nil, err
	}

	triageIDs := make(map[string]bool, len(categoryLabels))
	for _, name := range LabelNames() {
		if l, err := ResolveLabel(catalog, name); err == nil {
			triageIDs[l.ID] = true
		}
	}

	currentIDs, err := m.store.MessageLabelIDs(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("reading labels of message %s: %w", messageID, err)
	}

	delta := ComputeCategoryDelta(target, triageIDs, currentIDs)
	resultIDs, err := m.store.ModifyMessageLabels(ctx, messageID, delta.AddIDs, delta.RemoveIDs)
	if err != nil {
		return nil, fmt.Errorf("applying category %s to message %s: %w", category, messageID, err)
	}
	if resultIDs == nil {
		resultIDs = applyDelta(currentIDs, delta)
	}
	return labelsForIDs(catalog, resultIDs), nil
}

// ApplyLabel attaches a single label by name without touching any other
// label. The name must resolve against the catalog; labels are never
// created here.
func (m *Manager) ApplyLabel(ctx context.Context, messageID, name string) ([]Label, error) {
	catalog, err := m.store.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	label, err := ResolveLabel(catalog, name)
	if err != nil {
		return nil, err
	}

	resultIDs, err := m.store.ModifyMessageLabels(ctx, messageID, []string{label.ID}, nil)
	if err != nil {
		return nil, fmt.Errorf("adding label %q to message %s: %w", label.Name, messageID, err)
	}
	return labelsForIDs(catalog, resultIDs), nil
}

// RemoveLabel detaches a label by name. Removing a label that resolves but
// is not attached succeeds without issuing a mutation.
func (m *Manager) RemoveLabel(ctx context.Context, messageID, name string) ([]Label, error) {
	catalog, err := m.store.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	label, err := ResolveLabel(catalog, name)
	if err != nil {
		return nil, err
	}

	currentIDs, err := m.store.MessageLabelIDs(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("reading labels of message %s: %w", messageID, err)
	}

	attached := false
	for _, id := range currentIDs {
		if id == label.ID {
			attached = true
			break
		}
	}
	if !attached {
		return labelsForIDs(catalog, currentIDs), nil
	}

	resultIDs, err := m.store.ModifyMessageLabels(ctx, messageID, nil, []string{label.ID})
	if err != nil {
		return nil, fmt.Errorf("removing label %q from message %s: %w", label.Name, messageID, err)
	}
	if resultIDs == nil {
		resultIDs = applyDelta(currentIDs, Delta{RemoveIDs: []string{label.ID}})
	}
	return labelsForIDs(catalog, resultIDs), nil
}

// ListLabels returns the store's label catalog.
func (m *Manager) ListLabels(ctx context.Context) ([]Label, error) {
	return m.store.ListLabels(ctx)
}

// applyDelta computes the expected post-mutation IDs for stores that do not
// echo the resulting label set.
func applyDelta(currentIDs []string, d Delta) []string {
	removed := make(map[string]bool, len(d.RemoveIDs))
	for _, id := range d.RemoveIDs {
		removed[id] = true
	}
	result := make([]string, 0, len(currentIDs)+len(d.AddIDs))
	seen := make(map[string]bool, len(currentIDs))
	for _, id := range currentIDs {
		if !removed[id] {
			result = append(result, id)
			seen[id] = true
		}
	}
	for _, id := range d.AddIDs {
		if !seen[id] && !removed[id] {
			result = append(result, id)
		}
	}
	return result
}

func labelsForIDs(catalog []Label, ids []string) []Label {
	byID := make(map[string]Label, len(catalog))
	for _, l := range catalog {
		byID[l.ID] = l
	}
	labels := make([]Label, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			labels = append(labels, l)
		} else {
			// System labels like INBOX use their ID as name.
			labels = append(labels, Label{ID: id, Name: id})
		}
	}
	return labels
}
