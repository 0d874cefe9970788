package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/infrastructure/resilience"
)

// Publisher emits answer and feedback events for downstream consumers
// (analytics, KB curation). The gateway treats publishing as best effort.
type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, subject string) (*Publisher, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("support-qna"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type answerRecordedEvent struct {
	Event      string    `json:"event"`
	AnswerID   string    `json:"answer_id"`
	Question   string    `json:"question"`
	Pipeline   string    `json:"pipeline"`
	Answer     string    `json:"answer"`
	Class1     string    `json:"class_1,omitempty"`
	Class2     string    `json:"class_2,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

type feedbackSetEvent struct {
	Event    string `json:"event"`
	AnswerID string `json:"answer_id"`
	Feedback int    `json:"feedback"`
}

func (p *Publisher) PublishAnswerRecorded(ctx context.Context, record domain.AnswerRecord) error {
	return p.publish(ctx, answerRecordedEvent{
		Event:      "answer_recorded",
		AnswerID:   record.AnswerID,
		Question:   record.Question,
		Pipeline:   record.Pipeline,
		Answer:     record.Answer,
		Class1:     record.Class1,
		Class2:     record.Class2,
		AnsweredAt: record.AnsweredAt,
	})
}

func (p *Publisher) PublishFeedbackSet(ctx context.Context, answerID string, feedback int) error {
	return p.publish(ctx, feedbackSetEvent{
		Event:    "feedback_set",
		AnswerID: answerID,
		Feedback: feedback,
	})
}

func (p *Publisher) publish(ctx context.Context, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}
