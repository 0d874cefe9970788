package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/airndlab/support-qna/internal/core/domain"
)

type gatewayFake struct {
	envelope *domain.AnswerEnvelope
	err      error

	lastPipeline string
	liked        []string
	disliked     []string
}

func (f *gatewayFake) Ask(_ context.Context, _, pipeline string) (*domain.AnswerEnvelope, error) {
	f.lastPipeline = pipeline
	if f.err != nil {
		return nil, f.err
	}
	return f.envelope, nil
}

func (f *gatewayFake) Like(_ context.Context, answerID string) error {
	f.liked = append(f.liked, answerID)
	return nil
}

func (f *gatewayFake) Dislike(_ context.Context, answerID string) error {
	f.disliked = append(f.disliked, answerID)
	return nil
}

type prefsFake struct {
	prefs map[int64]*domain.ChatPreference
}

func newPrefsFake() *prefsFake {
	return &prefsFake{prefs: map[int64]*domain.ChatPreference{}}
}

func (f *prefsFake) Get(_ context.Context, chatID int64) (*domain.ChatPreference, error) {
	return f.prefs[chatID], nil
}

func (f *prefsFake) SetPipeline(_ context.Context, chatID int64, pipeline string) error {
	pref := f.ensure(chatID)
	pref.Pipeline = &pipeline
	return nil
}

func (f *prefsFake) SetVerbose(_ context.Context, chatID int64, verbose bool) error {
	pref := f.ensure(chatID)
	pref.Verbose = &verbose
	return nil
}

func (f *prefsFake) ensure(chatID int64) *domain.ChatPreference {
	if f.prefs[chatID] == nil {
		f.prefs[chatID] = &domain.ChatPreference{ChatID: chatID}
	}
	return f.prefs[chatID]
}

var testMessages = map[string]string{
	"answer":           "{answer}\nКлассификаторы: {class_1} / {class_2} {other}",
	"answer-no":        "К сожалению, ответ не найден.",
	"like":             "Спасибо за оценку!",
	"dislike":          "Жаль, что не помогло.",
	"error":            "Что-то пошло не так. {exception}",
	"pipeline":         "Выбран пайплайн: {pipeline}",
	"verbose-select":   "Подробный режим: {status}",
	"verbose-enabled":  "включён",
	"verbose-disabled": "выключен",
}

var testTitles = map[string]string{
	"faq":       "Поиск по вопросам FAQ",
	"faq_cases": "Поиск по вопросам FAQ+Кейсы",
}

func newChatUseCase(gateway *gatewayFake, prefs *prefsFake) *ChatUseCase {
	return NewChatUseCase(gateway, prefs, testMessages, testTitles, "faq_cases", false)
}

func TestChatSettingsDefaults(t *testing.T) {
	uc := newChatUseCase(&gatewayFake{}, newPrefsFake())

	settings, err := uc.Settings(context.Background(), 42)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.Pipeline != "faq_cases" || settings.Verbose {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestChatAskUsesStoredPipeline(t *testing.T) {
	gateway := &gatewayFake{envelope: &domain.AnswerEnvelope{ID: "id-1", Answer: "ответ", Class1: "a", Class2: "b"}}
	prefs := newPrefsFake()
	uc := newChatUseCase(gateway, prefs)

	if _, err := uc.SetPipeline(context.Background(), 42, "faq"); err != nil {
		t.Fatalf("SetPipeline() error = %v", err)
	}
	reply, err := uc.Ask(context.Background(), 42, "вопрос")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if gateway.lastPipeline != "faq" {
		t.Fatalf("expected stored pipeline, got %q", gateway.lastPipeline)
	}
	if reply.AnswerID != "id-1" || reply.NoAnswer {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !strings.Contains(reply.Text, "ответ") {
		t.Fatalf("rendered text must contain the answer, got %q", reply.Text)
	}
}

func TestChatAskNoAnswerSentinel(t *testing.T) {
	gateway := &gatewayFake{envelope: &domain.AnswerEnvelope{ID: "id-2", Answer: domain.NoAnswerText}}
	uc := newChatUseCase(gateway, newPrefsFake())

	reply, err := uc.Ask(context.Background(), 1, "вопрос")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !reply.NoAnswer || reply.Text != testMessages["answer-no"] {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatAskErrorHidesDetailUnlessVerbose(t *testing.T) {
	gateway := &gatewayFake{err: errors.New("connection refused")}
	prefs := newPrefsFake()
	uc := newChatUseCase(gateway, prefs)

	reply, err := uc.Ask(context.Background(), 7, "вопрос")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if strings.Contains(reply.Text, "connection refused") {
		t.Fatalf("non-verbose chat must not see the raw error, got %q", reply.Text)
	}

	if _, err := uc.SetVerbose(context.Background(), 7, true); err != nil {
		t.Fatalf("SetVerbose() error = %v", err)
	}
	reply, err = uc.Ask(context.Background(), 7, "вопрос")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(reply.Text, "connection refused") {
		t.Fatalf("verbose chat must see the raw error, got %q", reply.Text)
	}
}

func TestChatVerboseShowsExtraFields(t *testing.T) {
	gateway := &gatewayFake{envelope: &domain.AnswerEnvelope{
		ID:          "id-3",
		Answer:      "ответ",
		ExtraFields: map[string]string{"score": "0.87"},
	}}
	prefs := newPrefsFake()
	uc := newChatUseCase(gateway, prefs)

	reply, _ := uc.Ask(context.Background(), 9, "вопрос")
	if strings.Contains(reply.Text, "score") {
		t.Fatalf("extra fields must be hidden by default, got %q", reply.Text)
	}

	if _, err := uc.SetVerbose(context.Background(), 9, true); err != nil {
		t.Fatalf("SetVerbose() error = %v", err)
	}
	reply, _ = uc.Ask(context.Background(), 9, "вопрос")
	if !strings.Contains(reply.Text, "score 0.87") {
		t.Fatalf("verbose reply must inline extra fields, got %q", reply.Text)
	}
}

func TestChatSetPipelineRejectsUnknown(t *testing.T) {
	uc := newChatUseCase(&gatewayFake{}, newPrefsFake())
	_, err := uc.SetPipeline(context.Background(), 1, "nope")
	if !domain.IsKind(err, domain.ErrUnknownPipeline) {
		t.Fatalf("expected ErrUnknownPipeline, got %v", err)
	}
}

func TestChatPipelineAndVerbosityUpsertIndependently(t *testing.T) {
	prefs := newPrefsFake()
	uc := newChatUseCase(&gatewayFake{}, prefs)

	if _, err := uc.SetPipeline(context.Background(), 5, "faq"); err != nil {
		t.Fatalf("SetPipeline() error = %v", err)
	}
	if _, err := uc.SetVerbose(context.Background(), 5, true); err != nil {
		t.Fatalf("SetVerbose() error = %v", err)
	}

	settings, err := uc.Settings(context.Background(), 5)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.Pipeline != "faq" || !settings.Verbose {
		t.Fatalf("both preferences must survive, got %+v", settings)
	}
}

func TestChatLikeRendersConfirmation(t *testing.T) {
	gateway := &gatewayFake{}
	uc := newChatUseCase(gateway, newPrefsFake())

	text, err := uc.Like(context.Background(), "id-9")
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if text != testMessages["like"] {
		t.Fatalf("unexpected confirmation %q", text)
	}
	if len(gateway.liked) != 1 || gateway.liked[0] != "id-9" {
		t.Fatalf("expected proxied like, got %+v", gateway.liked)
	}
}
