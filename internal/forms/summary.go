package forms

import (
	"strings"
	"time"
)

// QuestionStats aggregates the answers given for one question
type QuestionStats struct {
	Type         string         `json:"type"`
	TotalAnswers int            `json:"total_answers"`
	Distribution map[string]int `json:"distribution,omitempty"`
}

// Summary aggregates all responses of a form
type Summary struct {
	FormID         string                   `json:"form_id"`
	TotalResponses int                      `json:"total_responses"`
	FirstResponse  time.Time                `json:"first_response,omitempty"`
	LastResponse   time.Time                `json:"last_response,omitempty"`
	QuestionStats  map[string]QuestionStats `json:"question_stats"`
}

// choiceTypes are the question types whose answers come from a closed set,
// making a per-value distribution meaningful.
var choiceTypes = map[string]bool{
	"CHOICE":   true,
	"CHECKBOX": true,
	"DROPDOWN": true,
}

// Summarize computes response counts, the submission time range, and
// per-question statistics. Choice questions additionally get an answer
// distribution.
func Summarize(form *Form, responses []Response) *Summary {
	s := &Summary{
		FormID:         form.FormID,
		TotalResponses: len(responses),
		QuestionStats:  make(map[string]QuestionStats, len(form.Questions)),
	}
	if len(responses) == 0 {
		return s
	}

	s.FirstResponse = responses[0].LastSubmittedTime
	s.LastResponse = responses[0].LastSubmittedTime
	for _, r := range responses[1:] {
		if r.LastSubmittedTime.Before(s.FirstResponse) {
			s.FirstResponse = r.LastSubmittedTime
		}
		if r.LastSubmittedTime.After(s.LastResponse) {
			s.LastResponse = r.LastSubmittedTime
		}
	}

	for _, q := range form.Questions {
		var answers []string
		for _, r := range responses {
			if a, ok := r.Answers[q.QuestionID]; ok {
				answers = append(answers, a.TextAnswers...)
			}
		}

		stats := QuestionStats{Type: q.Type, TotalAnswers: len(answers)}
		if choiceTypes[q.Type] {
			stats.Distribution = Distribution(answers)
		}
		s.QuestionStats[q.Title] = stats
	}
	return s
}

// Distribution counts occurrences of each answer value
func Distribution(answers []string) map[string]int {
	dist := make(map[string]int, len(answers))
	for _, a := range answers {
		dist[a]++
	}
	return dist
}

// AnswerDistribution counts answer values for a single question across
// responses
func AnswerDistribution(responses []Response, questionID string) map[string]int {
	var answers []string
	for _, r := range responses {
		if a, ok := r.Answers[questionID]; ok {
			answers = append(answers, a.TextAnswers...)
		}
	}
	return Distribution(answers)
}

// ResponsesToRows pivots responses into rows keyed by question title. A
// question with no answer yields an empty cell; multi-value answers are
// joined with "; ".
func ResponsesToRows(form *Form, responses []Response) []map[string]string {
	rows := make([]map[string]string, 0, len(responses))
	for _, r := range responses {
		row := map[string]string{
			"_response_id":  r.ResponseID,
			"_submitted_at": r.LastSubmittedTime.Format(time.RFC3339),
		}
		for _, q := range form.Questions {
			cell := ""
			if a, ok := r.Answers[q.QuestionID]; ok {
				cell = strings.Join(a.TextAnswers, "; ")
			}
			row[q.Title] = cell
		}
		rows = append(rows, row)
	}
	return rows
}
