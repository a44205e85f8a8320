package forms_tools

import (
	"strings"
	"testing"
	"time"

	"github.com/letterrip/letterrip/internal/forms"
)

func TestFormatQuestions(t *testing.T) {
	questions := []forms.Question{
		{
			QuestionID: "q1",
			Title:      "Favorite color",
			Type:       "CHOICE",
			Required:   true,
			Options:    []string{"Red", "Blue"},
		},
		{
			QuestionID: "q2",
			Title:      "Comments",
			Type:       "PARAGRAPH",
		},
	}

	result := formatQuestions(questions)

	if !strings.Contains(result, "Found 2 question(s)") {
		t.Errorf("expected count header, got:\n%s", result)
	}
	for _, want := range []string{"Favorite color", "ID: q1", "Type: CHOICE", "Required: yes", "Options: Red, Blue", "Comments", "Type: PARAGRAPH"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected result to contain %q, got:\n%s", want, result)
		}
	}
	// Optional question must not claim to be required
	if strings.Count(result, "Required: yes") != 1 {
		t.Errorf("expected exactly one required question, got:\n%s", result)
	}
}

func TestFormatQuestions_Empty(t *testing.T) {
	if got := formatQuestions(nil); got != "Form has no questions." {
		t.Errorf("expected empty message, got %q", got)
	}
}

func TestFormatResponse(t *testing.T) {
	r := &forms.Response{
		ResponseID:        "resp-1",
		LastSubmittedTime: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		RespondentEmail:   "alice@example.com",
		Answers: map[string]forms.Answer{
			"q2": {QuestionID: "q2", TextAnswers: []string{"Blue", "Green"}},
			"q1": {QuestionID: "q1", TextAnswers: []string{"Yes"}},
		},
	}

	result := formatResponse(r)

	for _, want := range []string{
		"Response ID: resp-1",
		"Submitted: 2026-02-01T12:00:00Z",
		"Respondent: alice@example.com",
		"q1: Yes",
		"q2: Blue; Green",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected result to contain %q, got:\n%s", want, result)
		}
	}

	// Answers are emitted in sorted question order
	if strings.Index(result, "q1:") > strings.Index(result, "q2:") {
		t.Errorf("expected q1 before q2, got:\n%s", result)
	}
}

func TestFormatResponse_NoAnswers(t *testing.T) {
	result := formatResponse(&forms.Response{ResponseID: "resp-1"})
	if !strings.Contains(result, "No answers.") {
		t.Errorf("expected no-answers marker, got:\n%s", result)
	}
}

func TestFormatSummary(t *testing.T) {
	s := &forms.Summary{
		FormID:         "form-1",
		TotalResponses: 3,
		FirstResponse:  time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		LastResponse:   time.Date(2026, 1, 3, 18, 0, 0, 0, time.UTC),
		QuestionStats: map[string]forms.QuestionStats{
			"Favorite color": {
				Type:         "CHOICE",
				TotalAnswers: 3,
				Distribution: map[string]int{"Red": 2, "Blue": 1},
			},
			"Comments": {
				Type:         "PARAGRAPH",
				TotalAnswers: 1,
			},
		},
	}

	result := formatSummary(s)

	for _, want := range []string{
		"Form: form-1",
		"Total responses: 3",
		"First response: 2026-01-01T09:00:00Z",
		"Last response: 2026-01-03T18:00:00Z",
		"Favorite color [CHOICE]: 3 answer(s)",
		"Red: 2",
		"Blue: 1",
		"Comments [PARAGRAPH]: 1 answer(s)",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected result to contain %q, got:\n%s", want, result)
		}
	}
}

func TestFormatSummary_NoResponses(t *testing.T) {
	result := formatSummary(&forms.Summary{FormID: "form-1"})
	if !strings.Contains(result, "Total responses: 0") {
		t.Errorf("expected zero count, got:\n%s", result)
	}
	if strings.Contains(result, "First response") {
		t.Errorf("should not report a time range without responses, got:\n%s", result)
	}
}
