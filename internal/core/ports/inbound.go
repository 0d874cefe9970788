package ports

import (
	"context"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// AnswerService is the inbound contract of the gateway: route a question
// to a pipeline, log the result, record feedback by identifier.
type AnswerService interface {
	Answer(ctx context.Context, question, pipeline string) (*domain.AnswerEnvelope, error)
	Like(ctx context.Context, answerID string) error
	Dislike(ctx context.Context, answerID string) error
}

// QuestionAnswerer is the inbound contract of a pipeline service.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (domain.PipelineAnswer, error)
}

// ChatService is the inbound contract of the chat backend.
type ChatService interface {
	Ask(ctx context.Context, chatID int64, question string) (domain.ChatReply, error)
	Like(ctx context.Context, answerID string) (string, error)
	Dislike(ctx context.Context, answerID string) (string, error)
	Settings(ctx context.Context, chatID int64) (domain.ChatSettings, error)
	SetPipeline(ctx context.Context, chatID int64, pipeline string) (string, error)
	SetVerbose(ctx context.Context, chatID int64, verbose bool) (string, error)
}
