package triage

import (
	"fmt"
	"strings"
)

// Category is one of the fixed triage states a message can be in.
type Category string

const (
	CategoryFYI         Category = "fyi"
	CategoryRespond     Category = "respond"
	CategoryDraft       Category = "draft"
	CategoryArchive     Category = "archive"
	CategoryNeedsReview Category = "needs_review"
)

// categoryLabels maps each category to its Gmail label name. The mapping is
// static configuration; it is never mutated at runtime.
var categoryLabels = map[Category]string{
	CategoryFYI:         "FYI",
	CategoryRespond:     "Respond",
	CategoryDraft:       "Write-Reply",
	CategoryArchive:     "To-Archive",
	CategoryNeedsReview: "Needs-Review",
}

// Categories returns all triage categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFYI,
		CategoryRespond,
		CategoryDraft,
		CategoryArchive,
		CategoryNeedsReview,
	}
}

// LabelNames returns the label names of all triage categories in the same
// order as Categories.
func LabelNames() []string {
	cats := Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, categoryLabels[c])
	}
	return names
}

// ParseCategory validates a category key. Keys are matched
// case-insensitively with "-" and "_" treated as equivalent, so both
// "needs_review" and "Needs-Review" parse.
func ParseCategory(s string) (Category, error) {
	norm := normalizeName(s)
	for _, c := range Categories() {
		if normalizeName(string(c)) == norm || normalizeName(categoryLabels[c]) == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidLabel, s)
}

// LabelName returns the Gmail label name a category maps to.
func (c Category) LabelName() string {
	return categoryLabels[c]
}

// Label is one entry of the mail store's label catalog.
type Label struct {
	ID   string
	Name string
}

// Delta is the pair of label ID sets submitted in a single mutation.
// It is computed per operation and never persisted.
type Delta struct {
	AddIDs    []string
	RemoveIDs []string
}

// Empty reports whether the delta would change nothing.
func (d Delta) Empty() bool {
	return len(d.AddIDs) == 0 && len(d.RemoveIDs) == 0
}

// normalizeName canonicalizes a label or category name for comparison.
// Gmail treats label names case-insensitively and users mix hyphens,
// underscores and spaces, so all three are folded together.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, " ", "-")
	return name
}

// ResolveLabel finds the catalog entry a user-supplied name refers to.
// Category keys are accepted as aliases for their label names. Resolution
// never creates labels; an unknown name is ErrInvalidLabel.
func ResolveLabel(catalog []Label, name string) (Label, error) {
	if strings.TrimSpace(name) == "" {
		return Label{}, fmt.Errorf("%w: empty label name", ErrInvalidLabel)
	}

	target := normalizeName(name)
	if c, err := ParseCategory(name); err == nil {
		target = normalizeName(c.LabelName())
	}

	for _, l := range catalog {
		if normalizeName(l.Name) == target {
			return l, nil
		}
	}
	return Label{}, fmt.Errorf("%w: label %q not found in catalog", ErrInvalidLabel, name)
}

// ComputeCategoryDelta builds the delta that moves a message to exactly one
// triage label: add the target, remove every other triage label currently
// attached. The add and remove sets are disjoint so the delta can be applied
// as one mutation without an intermediate two-category or zero-category
// state becoming visible.
func ComputeCategoryDelta(target Label, triageIDs map[string]bool, currentIDs []string) Delta {
	d := Delta{AddIDs: []string{target.ID}}
	for _, id := range currentIDs {
		if id != target.ID && triageIDs[id] {
			d.RemoveIDs = append(d.RemoveIDs, id)
		}
	}
	return d
}

// ExcludeQuery returns a Gmail search fragment that excludes every triage
// label, used to find messages not yet triaged.
func ExcludeQuery() string {
	parts := make([]string, 0, len(categoryLabels))
	for _, name := range LabelNames() {
		parts = append(parts, "-label:"+name)
	}
	return strings.Join(parts, " ")
}
