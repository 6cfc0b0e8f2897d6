package scoring

import (
	"math"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
)

// SubmittedAnswer is the raw answer collected from the user for one question.
type SubmittedAnswer struct {
	QuestionID       string   `json:"question_id"`
	UserAnswer       string   `json:"user_answer"`
	TimeTakenSeconds *float64 `json:"time_taken_seconds,omitempty"`
}

// AnswerRecord is the scored form of a submitted answer, annotated with the
// authoritative correct answer for post-test review.
type AnswerRecord struct {
	QuestionID       string   `json:"question_id"`
	UserAnswer       string   `json:"user_answer"`
	CorrectAnswer    string   `json:"correct_answer"`
	IsCorrect        bool     `json:"is_correct"`
	TimeTakenSeconds *float64 `json:"time_taken_seconds,omitempty"`
}

type Result struct {
	ScorePercent   float64        `json:"score_percent"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Answers        []AnswerRecord `json:"answers"`
}

type Option func(*Engine)

// WithNormalizedComparison makes answer comparison case-insensitive and
// punctuation/whitespace-tolerant. Off by default: the product has not decided
// whether "bonjour " should match "Bonjour".
func WithNormalizedComparison(b bool) Option { return func(e *Engine) { e.normalized = b } }

// Engine scores a completed set of answers against a question set. Pure and
// deterministic: no clock, no I/O.
type Engine struct {
	normalized bool
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Score compares each submitted answer against its question's answer key.
// Answers referencing unknown question ids are kept in the output but can
// never be correct. Unanswered questions simply never contribute a point,
// and a question is credited at most once no matter how often it appears in
// the submission, so CorrectCount never exceeds TotalQuestions.
// ScorePercent is 0 when the question set is empty.
func (e *Engine) Score(questions []content.Question, submitted []SubmittedAnswer) Result {
	byID := make(map[string]content.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	res := Result{
		TotalQuestions: len(questions),
		Answers:        make([]AnswerRecord, 0, len(submitted)),
	}
	credited := make(map[string]bool, len(questions))
	for _, sa := range submitted {
		rec := AnswerRecord{
			QuestionID:       sa.QuestionID,
			UserAnswer:       sa.UserAnswer,
			TimeTakenSeconds: sa.TimeTakenSeconds,
		}
		if q, ok := byID[sa.QuestionID]; ok {
			rec.CorrectAnswer = q.CorrectAnswer
			rec.IsCorrect = e.equal(sa.UserAnswer, q.CorrectAnswer)
			if rec.IsCorrect && !credited[q.ID] {
				credited[q.ID] = true
				res.CorrectCount++
			}
		}
		res.Answers = append(res.Answers, rec)
	}

	if res.TotalQuestions > 0 {
		res.ScorePercent = math.Round(float64(res.CorrectCount) / float64(res.TotalQuestions) * 100)
	}
	return res
}

func (e *Engine) equal(user, key string) bool {
	if e.normalized {
		return normalize(user) == normalize(key)
	}
	return user == key
}

// Passed applies a test's pass threshold to a score.
func Passed(scorePercent, passingPercentage float64) bool {
	return scorePercent >= passingPercentage
}
