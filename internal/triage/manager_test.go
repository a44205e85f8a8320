package triage

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory mail store that records every mutation it
// receives. Labels behave like Gmail's: adds are set-union, removes are
// set-difference, and the resulting ID set is echoed back.
type fakeStore struct {
	catalog  []Label
	messages map[string][]string

	modifyCalls []modifyCall

	listErr   error
	getErr    error
	modifyErr error
}

type modifyCall struct {
	messageID string
	addIDs    []string
	removeIDs []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		catalog: []Label{
			{ID: "INBOX", Name: "INBOX"},
			{ID: "L_fyi", Name: "FYI"},
			{ID: "L_respond", Name: "Respond"},
			{ID: "L_draft", Name: "Write-Reply"},
			{ID: "L_archive", Name: "To-Archive"},
			{ID: "L_review", Name: "Needs-Review"},
			{ID: "L_misc", Name: "Receipts"},
		},
		messages: make(map[string][]string),
	}
}

func (s *fakeStore) ListLabels(_ context.Context) ([]Label, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.catalog, nil
}

func (s *fakeStore) MessageLabelIDs(_ context.Context, messageID string) ([]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	ids, ok := s.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}
	return append([]string(nil), ids...), nil
}

func (s *fakeStore) ModifyMessageLabels(_ context.Context, messageID string, addIDs, removeIDs []string) ([]string, error) {
	if s.modifyErr != nil {
		return nil, s.modifyErr
	}
	current, ok := s.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}

	s.modifyCalls = append(s.modifyCalls, modifyCall{messageID: messageID, addIDs: addIDs, removeIDs: removeIDs})

	set := make(map[string]bool, len(current))
	for _, id := range current {
		set[id] = true
	}
	for _, id := range removeIDs {
		delete(set, id)
	}
	for _, id := range addIDs {
		set[id] = true
	}

	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	s.messages[messageID] = result
	return append([]string(nil), result...), nil
}

func labelNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

func TestApplyCategoryEnforcesExclusivity(t *testing.T) {
	// Whatever triage label a message starts with, applying any category
	// must leave exactly one triage label attached.
	startStates := map[string][]string{
		"none":     {"INBOX"},
		"fyi":      {"INBOX", "L_fyi"},
		"respond":  {"INBOX", "L_respond"},
		"multiple": {"INBOX", "L_respond", "L_archive"},
	}

	for startName, startIDs := range startStates {
		for _, category := range Categories() {
			t.Run(fmt.Sprintf("%s_to_%s", startName, category), func(t *testing.T) {
				store := newFakeStore()
				store.messages["m1"] = append([]string(nil), startIDs...)
				mgr := NewManager(store)

				result, err := mgr.ApplyCategory(context.Background(), "m1", category)
				require.NoError(t, err)

				triageCount := 0
				for _, l := range result {
					for _, name := range LabelNames() {
						if l.Name == name {
							triageCount++
						}
					}
				}
				assert.Equal(t, 1, triageCount, "exactly one triage label after apply")
				assert.Contains(t, labelNames(result), category.LabelName())
				assert.Contains(t, labelNames(result), "INBOX", "non-triage labels preserved")
			})
		}
	}
}

func TestApplyCategoryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX", "L_respond"}
	mgr := NewManager(store)

	first, err := mgr.ApplyCategory(context.Background(), "m1", CategoryArchive)
	require.NoError(t, err)

	second, err := mgr.ApplyCategory(context.Background(), "m1", CategoryArchive)
	require.NoError(t, err)

	assert.Equal(t, labelNames(first), labelNames(second))
	assert.Equal(t, []string{"INBOX", "L_archive"}, store.messages["m1"])
}

func TestApplyCategorySingleMutation(t *testing.T) {
	// The swap must go out as one modify call carrying both the addition
	// and the removals.
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX", "L_respond", "L_draft"}
	mgr := NewManager(store)

	_, err := mgr.ApplyCategory(context.Background(), "m1", CategoryFYI)
	require.NoError(t, err)

	require.Len(t, store.modifyCalls, 1)
	call := store.modifyCalls[0]
	assert.Equal(t, []string{"L_fyi"}, call.addIDs)
	assert.ElementsMatch(t, []string{"L_respond", "L_draft"}, call.removeIDs)
}

func TestApplyCategoryScenarioRespondToFYI(t *testing.T) {
	store := newFakeStore()
	store.messages["M1"] = []string{"INBOX", "L_respond"}
	mgr := NewManager(store)

	result, err := mgr.ApplyCategory(context.Background(), "M1", CategoryFYI)
	require.NoError(t, err)

	assert.Equal(t, []string{"FYI", "INBOX"}, labelNames(result))
	assert.Equal(t, []string{"INBOX", "L_fyi"}, store.messages["M1"])
}

func TestApplyCategoryMissingMessage(t *testing.T) {
	store := newFakeStore()
	mgr := NewManager(store)

	_, err := mgr.ApplyCategory(context.Background(), "gone", CategoryFYI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyLabel(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX", "L_fyi"}
	mgr := NewManager(store)

	result, err := mgr.ApplyLabel(context.Background(), "m1", "Receipts")
	require.NoError(t, err)

	// Added without touching anything else, triage label included.
	assert.Equal(t, []string{"FYI", "INBOX", "Receipts"}, labelNames(result))
	require.Len(t, store.modifyCalls, 1)
	assert.Equal(t, []string{"L_misc"}, store.modifyCalls[0].addIDs)
	assert.Empty(t, store.modifyCalls[0].removeIDs)
}

func TestApplyLabelUnknownNameNoMutation(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX"}
	mgr := NewManager(store)

	_, err := mgr.ApplyLabel(context.Background(), "m1", "DoesNotExist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLabel)
	assert.Empty(t, store.modifyCalls, "no mutation on invalid label")
	assert.Equal(t, []string{"INBOX"}, store.messages["m1"])
}

func TestRemoveLabelPresent(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX", "L_misc"}
	mgr := NewManager(store)

	result, err := mgr.RemoveLabel(context.Background(), "m1", "Receipts")
	require.NoError(t, err)

	assert.Equal(t, []string{"INBOX"}, labelNames(result))
	require.Len(t, store.modifyCalls, 1)
	assert.Equal(t, []string{"L_misc"}, store.modifyCalls[0].removeIDs)
}

func TestRemoveLabelAbsentIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.messages["M2"] = []string{"INBOX"}
	mgr := NewManager(store)

	result, err := mgr.RemoveLabel(context.Background(), "M2", "Write-Reply")
	require.NoError(t, err)

	assert.Equal(t, []string{"INBOX"}, labelNames(result))
	assert.Empty(t, store.modifyCalls, "absent label removal issues no mutation")
	assert.Equal(t, []string{"INBOX"}, store.messages["M2"])
}

func TestRemoveLabelUnknownName(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX"}
	mgr := NewManager(store)

	_, err := mgr.RemoveLabel(context.Background(), "m1", "NoSuchLabel")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestManagerSurfacesUpstreamFailure(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX"}
	store.modifyErr = fmt.Errorf("gmail: 503: %w", ErrUpstreamUnavailable)
	mgr := NewManager(store)

	_, err := mgr.ApplyCategory(context.Background(), "m1", CategoryRespond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestManagerDoesNotCacheCatalog(t *testing.T) {
	store := newFakeStore()
	store.messages["m1"] = []string{"INBOX"}
	mgr := NewManager(store)

	_, err := mgr.ApplyLabel(context.Background(), "m1", "Receipts")
	require.NoError(t, err)

	// A label created after the first call must be visible to the next.
	store.catalog = append(store.catalog, Label{ID: "L_new", Name: "Invoices"})
	_, err = mgr.ApplyLabel(context.Background(), "m1", "Invoices")
	require.NoError(t, err)
}
