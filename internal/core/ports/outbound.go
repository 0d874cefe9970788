package ports

import (
	"context"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// PipelineBackend answers a question over the pipeline's wire API.
type PipelineBackend interface {
	Answer(ctx context.Context, question string) (domain.PipelineAnswer, error)
}

// AnswerLog persists answer rows and feedback updates.
type AnswerLog interface {
	SaveAnswer(ctx context.Context, record domain.AnswerRecord) error
	SetFeedback(ctx context.Context, answerID string, feedback int) error
}

// EventPublisher emits answer/feedback events for downstream consumers.
type EventPublisher interface {
	PublishAnswerRecorded(ctx context.Context, record domain.AnswerRecord) error
	PublishFeedbackSet(ctx context.Context, answerID string, feedback int) error
}

// Embedder builds vectors for corpus entries and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs similarity search over the loaded corpus.
type VectorIndex interface {
	Search(queryVector []float32, limit int) []domain.Candidate
	Len() int
}

// Reranker rescoring an initial candidate set with a pairwise model,
// returning candidates sorted by descending score.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Candidate) ([]domain.Candidate, error)
}

// QuestionClassifier predicts one classifier label for a question.
type QuestionClassifier interface {
	Classify(ctx context.Context, question string) (string, error)
}

// InferencePool bounds concurrent blocking inference work; Run suspends
// the caller until the task completes or ctx is done.
type InferencePool interface {
	Run(ctx context.Context, task func(context.Context) error) error
}

// PreferenceStore persists per-chat preferences. Pipeline and verbosity
// are written independently.
type PreferenceStore interface {
	Get(ctx context.Context, chatID int64) (*domain.ChatPreference, error)
	SetPipeline(ctx context.Context, chatID int64, pipeline string) error
	SetVerbose(ctx context.Context, chatID int64, verbose bool) error
}

// QnAGateway is the chat backend's view of the gateway service.
type QnAGateway interface {
	Ask(ctx context.Context, question, pipeline string) (*domain.AnswerEnvelope, error)
	Like(ctx context.Context, answerID string) error
	Dislike(ctx context.Context, answerID string) error
}
