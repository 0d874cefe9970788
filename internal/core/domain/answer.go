package domain

import "time"

// NoAnswerText is the sentinel returned when retrieval produced nothing
// usable. It is a normal answer, not an error.
const NoAnswerText = "Ответ не найден."

// PipelineAnswer is what a pipeline service returns for a question.
// Score is only set by variants that run a reranking stage.
type PipelineAnswer struct {
	Answer      string            `json:"answer"`
	Class1      string            `json:"class_1"`
	Class2      string            `json:"class_2"`
	Score       *float64          `json:"score,omitempty"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
}

// NoMatch reports whether the answer carries the no-answer sentinel.
func (a PipelineAnswer) NoMatch() bool {
	return a.Answer == NoAnswerText
}

// AnswerEnvelope is the gateway's response: a pipeline answer wrapped
// with a fresh opaque identifier so feedback can reference it later.
type AnswerEnvelope struct {
	ID          string            `json:"id"`
	Answer      string            `json:"answer"`
	Class1      string            `json:"class_1"`
	Class2      string            `json:"class_2"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
}

// AnswerRecord is one row of the answer/feedback log. Immutable after
// creation except for Feedback, which is overwritten in place.
type AnswerRecord struct {
	AnswerID   string
	Question   string
	Pipeline   string
	Answer     string
	Class1     string
	Class2     string
	AnsweredAt time.Time
	Feedback   int
}

// Feedback values stored on an answer record.
const (
	FeedbackNone    = 0
	FeedbackLike    = 1
	FeedbackDislike = -1
)
