package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/core/ports"
)

// AnswerUseCase routes questions to the configured pipeline backends,
// logs every confirmed answer and records feedback by identifier.
type AnswerUseCase struct {
	routes          map[string]ports.PipelineBackend
	defaultPipeline string
	log             ports.AnswerLog
	events          ports.EventPublisher

	now   func() time.Time
	newID func() string
}

func NewAnswerUseCase(
	routes map[string]ports.PipelineBackend,
	defaultPipeline string,
	log ports.AnswerLog,
	events ports.EventPublisher,
) (*AnswerUseCase, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("no pipeline routes configured")
	}
	if _, ok := routes[defaultPipeline]; !ok {
		return nil, fmt.Errorf("default pipeline %q has no route", defaultPipeline)
	}
	return &AnswerUseCase{
		routes:          routes,
		defaultPipeline: defaultPipeline,
		log:             log,
		events:          events,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}, nil
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question, pipeline string) (*domain.AnswerEnvelope, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("question is empty"))
	}

	if pipeline == "" {
		pipeline = uc.defaultPipeline
	}
	backend, ok := uc.routes[pipeline]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnknownPipeline, "answer", fmt.Errorf("pipeline=%s", pipeline))
	}

	answer, err := backend.Answer(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipeline, err)
	}

	record := domain.AnswerRecord{
		AnswerID:   uc.newID(),
		Question:   question,
		Pipeline:   pipeline,
		Answer:     answer.Answer,
		Class1:     answer.Class1,
		Class2:     answer.Class2,
		AnsweredAt: uc.now(),
		Feedback:   domain.FeedbackNone,
	}
	// Persist only after confirmed pipeline success so the log never
	// holds incomplete entries.
	if err := uc.log.SaveAnswer(ctx, record); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	uc.publishAnswer(ctx, record)

	return &domain.AnswerEnvelope{
		ID:          record.AnswerID,
		Answer:      answer.Answer,
		Class1:      answer.Class1,
		Class2:      answer.Class2,
		ExtraFields: answer.ExtraFields,
	}, nil
}

func (uc *AnswerUseCase) Like(ctx context.Context, answerID string) error {
	return uc.setFeedback(ctx, answerID, domain.FeedbackLike)
}

func (uc *AnswerUseCase) Dislike(ctx context.Context, answerID string) error {
	return uc.setFeedback(ctx, answerID, domain.FeedbackDislike)
}

func (uc *AnswerUseCase) setFeedback(ctx context.Context, answerID string, feedback int) error {
	if strings.TrimSpace(answerID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "set feedback", fmt.Errorf("answer id is empty"))
	}
	// Overwrite, never increment: repeated votes are last-write-wins.
	if err := uc.log.SetFeedback(ctx, answerID, feedback); err != nil {
		return err
	}
	if uc.events != nil {
		if err := uc.events.PublishFeedbackSet(ctx, answerID, feedback); err != nil {
			slog.Warn("publish_feedback_event_failed", "answer_id", answerID, "error", err)
		}
	}
	return nil
}

func (uc *AnswerUseCase) publishAnswer(ctx context.Context, record domain.AnswerRecord) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishAnswerRecorded(ctx, record); err != nil {
		slog.Warn("publish_answer_event_failed", "answer_id", record.AnswerID, "error", err)
	}
}
