package forms

import (
	"fmt"
	"time"

	forms "google.golang.org/api/forms/v1"
)

// Question is one question of a form
type Question struct {
	QuestionID  string   `json:"question_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
}

// Form is a Google Form with its questions
type Form struct {
	FormID        string     `json:"form_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DocumentTitle string     `json:"document_title"`
	ResponderURI  string     `json:"responder_uri"`
	Questions     []Question `json:"questions"`
}

// Answer holds the values a respondent gave for one question
type Answer struct {
	QuestionID  string   `json:"question_id"`
	TextAnswers []string `json:"text_answers,omitempty"`
	FileAnswers []string `json:"file_answers,omitempty"`
}

// Response is one submitted form response
type Response struct {
	ResponseID        string            `json:"response_id"`
	CreateTime        time.Time         `json:"create_time"`
	LastSubmittedTime time.Time         `json:"last_submitted_time"`
	RespondentEmail   string            `json:"respondent_email,omitempty"`
	Answers           map[string]Answer `json:"answers"`
}

func toForm(f *forms.Form) *Form {
	if f == nil {
		return &Form{}
	}

	out := &Form{
		FormID:       f.FormId,
		ResponderURI: f.ResponderUri,
	}
	if f.Info != nil {
		out.Title = f.Info.Title
		out.Description = f.Info.Description
		out.DocumentTitle = f.Info.DocumentTitle
	}
	for _, item := range f.Items {
		if q := toQuestion(item); q != nil {
			out.Questions = append(out.Questions, *q)
		}
	}
	return out
}

// toQuestion parses a form item into a Question. Items that are not
// questions (page breaks, images, ...) return nil.
func toQuestion(item *forms.Item) *Question {
	if item == nil || item.QuestionItem == nil || item.QuestionItem.Question == nil {
		return nil
	}

	q := item.QuestionItem.Question
	qType, options := parseQuestionType(q)
	return &Question{
		QuestionID:  q.QuestionId,
		Title:       item.Title,
		Description: item.Description,
		Required:    q.Required,
		Type:        qType,
		Options:     options,
	}
}

func parseQuestionType(q *forms.Question) (string, []string) {
	switch {
	case q.TextQuestion != nil:
		if q.TextQuestion.Paragraph {
			return "PARAGRAPH", nil
		}
		return "TEXT", nil

	case q.ChoiceQuestion != nil:
		var options []string
		for _, opt := range q.ChoiceQuestion.Options {
			options = append(options, opt.Value)
		}
		switch q.ChoiceQuestion.Type {
		case "CHECKBOX":
			return "CHECKBOX", options
		case "DROP_DOWN":
			return "DROPDOWN", options
		}
		return "CHOICE", options

	case q.ScaleQuestion != nil:
		return "SCALE", []string{fmt.Sprintf("%d-%d", q.ScaleQuestion.Low, q.ScaleQuestion.High)}

	case q.DateQuestion != nil:
		return "DATE", nil

	case q.TimeQuestion != nil:
		return "TIME", nil

	case q.FileUploadQuestion != nil:
		return "FILE_UPLOAD", nil

	case q.RowQuestion != nil:
		return "GRID", nil
	}
	return "UNKNOWN", nil
}

func toResponse(r *forms.FormResponse) Response {
	out := Response{
		ResponseID:        r.ResponseId,
		CreateTime:        parseTimestamp(r.CreateTime),
		LastSubmittedTime: parseTimestamp(r.LastSubmittedTime),
		RespondentEmail:   r.RespondentEmail,
		Answers:           make(map[string]Answer, len(r.Answers)),
	}
	for qid, a := range r.Answers {
		out.Answers[qid] = toAnswer(qid, &a)
	}
	return out
}

func toAnswer(questionID string, a *forms.Answer) Answer {
	out := Answer{QuestionID: questionID}
	if a == nil {
		return out
	}
	if a.TextAnswers != nil {
		for _, ta := range a.TextAnswers.Answers {
			if ta.Value != "" {
				out.TextAnswers = append(out.TextAnswers, ta.Value)
			}
		}
	}
	if a.FileUploadAnswers != nil {
		for _, fa := range a.FileUploadAnswers.Answers {
			if fa.FileId != "" {
				out.FileAnswers = append(out.FileAnswers, "https://drive.google.com/file/d/"+fa.FileId)
			}
		}
	}
	return out
}

func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
