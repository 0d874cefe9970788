package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/core/ports"
)

// ChatUseCase is the conversation backend behind the chat front-end:
// it resolves per-chat preferences, asks the gateway and renders replies
// from the message catalog.
type ChatUseCase struct {
	gateway ports.QnAGateway
	prefs   ports.PreferenceStore
	msgs    map[string]string

	pipelineTitles  map[string]string
	defaultPipeline string
	defaultVerbose  bool
}

func NewChatUseCase(
	gateway ports.QnAGateway,
	prefs ports.PreferenceStore,
	msgs map[string]string,
	pipelineTitles map[string]string,
	defaultPipeline string,
	defaultVerbose bool,
) *ChatUseCase {
	return &ChatUseCase{
		gateway:         gateway,
		prefs:           prefs,
		msgs:            msgs,
		pipelineTitles:  pipelineTitles,
		defaultPipeline: defaultPipeline,
		defaultVerbose:  defaultVerbose,
	}
}

// Ask answers a chat question. Failures at this edge are rendered as the
// catalog's generic failure text; the raw error detail is shown only
// when the chat runs in verbose mode.
func (uc *ChatUseCase) Ask(ctx context.Context, chatID int64, question string) (domain.ChatReply, error) {
	settings, err := uc.Settings(ctx, chatID)
	if err != nil {
		return domain.ChatReply{}, err
	}

	envelope, err := uc.gateway.Ask(ctx, question, settings.Pipeline)
	if err != nil {
		slog.Warn("chat_question_failed", "chat_id", chatID, "pipeline", settings.Pipeline, "error", err)
		return domain.ChatReply{Text: uc.renderError(err, settings.Verbose), NoAnswer: true}, nil
	}

	if envelope.Answer == domain.NoAnswerText {
		return domain.ChatReply{AnswerID: envelope.ID, Text: uc.text("answer-no"), NoAnswer: true}, nil
	}

	return domain.ChatReply{
		AnswerID: envelope.ID,
		Text:     uc.renderAnswer(envelope, settings.Verbose),
	}, nil
}

func (uc *ChatUseCase) Like(ctx context.Context, answerID string) (string, error) {
	if err := uc.gateway.Like(ctx, answerID); err != nil {
		return "", fmt.Errorf("like answer %s: %w", answerID, err)
	}
	return uc.text("like"), nil
}

func (uc *ChatUseCase) Dislike(ctx context.Context, answerID string) (string, error) {
	if err := uc.gateway.Dislike(ctx, answerID); err != nil {
		return "", fmt.Errorf("dislike answer %s: %w", answerID, err)
	}
	return uc.text("dislike"), nil
}

// Settings returns the chat's effective preferences with process-wide
// defaults applied to unset fields.
func (uc *ChatUseCase) Settings(ctx context.Context, chatID int64) (domain.ChatSettings, error) {
	settings := domain.ChatSettings{
		Pipeline: uc.defaultPipeline,
		Verbose:  uc.defaultVerbose,
	}

	pref, err := uc.prefs.Get(ctx, chatID)
	if err != nil {
		return domain.ChatSettings{}, fmt.Errorf("load chat preference: %w", err)
	}
	if pref == nil {
		return settings, nil
	}
	if pref.Pipeline != nil && *pref.Pipeline != "" {
		settings.Pipeline = *pref.Pipeline
	}
	if pref.Verbose != nil {
		settings.Verbose = *pref.Verbose
	}
	return settings, nil
}

func (uc *ChatUseCase) SetPipeline(ctx context.Context, chatID int64, pipeline string) (string, error) {
	title, ok := uc.pipelineTitles[pipeline]
	if !ok {
		return "", domain.WrapError(domain.ErrUnknownPipeline, "set pipeline", fmt.Errorf("pipeline=%s", pipeline))
	}
	if err := uc.prefs.SetPipeline(ctx, chatID, pipeline); err != nil {
		return "", fmt.Errorf("store pipeline preference: %w", err)
	}
	return render(uc.text("pipeline"), map[string]string{"pipeline": title}), nil
}

func (uc *ChatUseCase) SetVerbose(ctx context.Context, chatID int64, verbose bool) (string, error) {
	if err := uc.prefs.SetVerbose(ctx, chatID, verbose); err != nil {
		return "", fmt.Errorf("store verbosity preference: %w", err)
	}
	return render(uc.text("verbose-select"), map[string]string{"status": uc.verboseStatus(verbose)}), nil
}

func (uc *ChatUseCase) renderAnswer(envelope *domain.AnswerEnvelope, verbose bool) string {
	other := ""
	if verbose {
		other = inlineExtraFields(envelope.ExtraFields)
	}
	return render(uc.text("answer"), map[string]string{
		"answer":  envelope.Answer,
		"class_1": envelope.Class1,
		"class_2": envelope.Class2,
		"other":   other,
	})
}

func (uc *ChatUseCase) renderError(err error, verbose bool) string {
	detail := ""
	if verbose {
		detail = err.Error()
	}
	return render(uc.text("error"), map[string]string{"exception": detail})
}

func (uc *ChatUseCase) verboseStatus(verbose bool) string {
	if verbose {
		return uc.text("verbose-enabled")
	}
	return uc.text("verbose-disabled")
}

func (uc *ChatUseCase) text(key string) string {
	return uc.msgs[key]
}

func inlineExtraFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fields[k])
	}
	return strings.Join(parts, " ")
}

func render(template string, values map[string]string) string {
	oldnew := make([]string, 0, len(values)*2)
	for k, v := range values {
		oldnew = append(oldnew, "{"+k+"}", v)
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}
