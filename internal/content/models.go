package content

import "errors"

var (
	ErrTestNotFound   = errors.New("test not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// Question is the authoritative answer-key view supplied by the content side.
// Points defaults to 1 when omitted from imported content.
type Question struct {
	ID            string  `json:"id"`
	Prompt        string  `json:"prompt,omitempty"`
	CorrectAnswer string  `json:"correct_answer"`
	Points        float64 `json:"points"`
}

type Test struct {
	ID                string     `json:"id"`
	LessonID          string     `json:"lesson_id"`
	PassingPercentage float64    `json:"passing_percentage"`
	Questions         []Question `json:"questions"`
	CreatedAt         int64      `json:"created_at,omitempty"`
}

// Sanitized returns a copy safe to serve to students: answer keys stripped.
func (t Test) Sanitized() Test {
	qs := make([]Question, len(t.Questions))
	copy(qs, t.Questions)
	for i := range qs {
		qs[i].CorrectAnswer = ""
	}
	t.Questions = qs
	return t
}

type Lesson struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	OrderIndex int    `json:"order_index"`
	Title      string `json:"title,omitempty"`
}
