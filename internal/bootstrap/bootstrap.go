package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/airndlab/support-qna/internal/config"
	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/core/ports"
	"github.com/airndlab/support-qna/internal/core/usecase"
	"github.com/airndlab/support-qna/internal/infrastructure/index"
	"github.com/airndlab/support-qna/internal/infrastructure/inference"
	"github.com/airndlab/support-qna/internal/infrastructure/knowledge"
	"github.com/airndlab/support-qna/internal/infrastructure/messages"
	"github.com/airndlab/support-qna/internal/infrastructure/pipeline"
	"github.com/airndlab/support-qna/internal/infrastructure/qna"
	"github.com/airndlab/support-qna/internal/infrastructure/queue/nats"
	"github.com/airndlab/support-qna/internal/infrastructure/repository/postgres"
	"github.com/airndlab/support-qna/internal/infrastructure/repository/sqlite"
	"github.com/airndlab/support-qna/internal/infrastructure/resilience"
	"github.com/airndlab/support-qna/internal/infrastructure/workerpool"
)

// PipelineTitles maps variant names to the titles shown to chat users.
var PipelineTitles = map[string]string{
	"baseline":   "Базовый поиск",
	"faq":        "FAQ",
	"faq_cases":  "FAQ + кейсы",
	"rag_ranker": "RAG с реранжированием",
}

const pipelineCallTimeout = 120 * time.Second

// Gateway wires the question-routing service.
type Gateway struct {
	Config   config.Config
	AnswerUC *usecase.AnswerUseCase

	closeFn func()
}

func NewGateway(ctx context.Context, cfg config.Config) (*Gateway, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewAnswerRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	routes, err := pipeline.BuildRoutes(cfg.PipelineRoutes, pipelineCallTimeout)
	if err != nil {
		return nil, fmt.Errorf("build pipeline routes: %w", err)
	}

	var events ports.EventPublisher
	var publisher *nats.Publisher
	if cfg.NATSEnabled {
		publisher, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
	}

	answerUC, err := usecase.NewAnswerUseCase(routes, cfg.DefaultPipeline, repo, events)
	if err != nil {
		return nil, fmt.Errorf("init answer use case: %w", err)
	}

	return &Gateway{
		Config:   cfg,
		AnswerUC: answerUC,
		closeFn: func() {
			if publisher != nil {
				publisher.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (g *Gateway) Close() {
	if g.closeFn != nil {
		g.closeFn()
	}
}

// Pipeline wires one retrieval pipeline service: corpus, embeddings,
// vector index and the variant's decision logic.
type Pipeline struct {
	Config      config.Config
	RetrievalUC *usecase.RetrievalUseCase

	closeFn func()
}

func NewPipeline(ctx context.Context, cfg config.Config) (*Pipeline, error) {
	synonyms, err := knowledge.LoadSynonyms(cfg.SynonymsPath)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}
	normalizer := usecase.NewNormalizer(synonyms)

	entries, corpus, err := buildCorpus(cfg, normalizer)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	client := inference.New(cfg.InferenceURL, executor)
	embedder := inference.NewEmbedder(client, cfg.EmbedModel)

	texts := make([]string, len(corpus))
	for i, entry := range corpus {
		texts[i] = entry.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	memoryIndex, err := index.NewMemory(corpus, vectors)
	if err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}

	pool := workerpool.New(cfg.InferenceWorkers)

	var (
		reranker ports.Reranker
		class1   ports.QuestionClassifier
		class2   ports.QuestionClassifier
	)
	retrievalCfg := usecase.RetrievalConfig{TopK: 1}
	if cfg.PipelineVariant == "rag_ranker" {
		reranker = inference.NewReranker(client, cfg.RerankModel)
		class1 = inference.NewClassifier(client, cfg.Class1Model)
		class2 = inference.NewClassifier(client, cfg.Class2Model)
		retrievalCfg = usecase.RetrievalConfig{
			TopK:           cfg.RetrievalTopK,
			ScoreThreshold: cfg.ScoreThreshold,
		}
	}

	retrievalUC := usecase.NewRetrievalUseCase(
		normalizer,
		entries,
		corpus,
		embedder,
		memoryIndex,
		reranker,
		class1, class2,
		pool,
		retrievalCfg,
	)

	return &Pipeline{
		Config:      cfg,
		RetrievalUC: retrievalUC,
		closeFn:     pool.Close,
	}, nil
}

func (p *Pipeline) Close() {
	if p.closeFn != nil {
		p.closeFn()
	}
}

// buildCorpus assembles the searchable texts for the configured variant.
// Corpus texts go through the same normalization as incoming questions
// so both sides of the similarity match share one vocabulary.
func buildCorpus(cfg config.Config, normalizer *usecase.Normalizer) ([]domain.KnowledgeEntry, []domain.CorpusEntry, error) {
	entries, err := knowledge.LoadWorkbook(cfg.KnowledgeBasePath, knowledge.ColBaseQuestion)
	if err != nil {
		return nil, nil, fmt.Errorf("load knowledge base: %w", err)
	}

	// Case rows carry the user's phrasing of a question together with
	// the KB answer it resolved to, so they join the knowledge table as
	// rows of their own. Required for faq_cases, optional for rag_ranker.
	casesPath := cfg.CasesPath
	if casesPath == "" && cfg.PipelineVariant == "faq_cases" {
		casesPath = cfg.KnowledgeBasePath
	}
	if casesPath != "" && (cfg.PipelineVariant == "faq_cases" || cfg.PipelineVariant == "rag_ranker") {
		cases, err := knowledge.LoadWorkbook(casesPath, knowledge.ColCaseQuestion)
		if err != nil {
			return nil, nil, fmt.Errorf("load case corpus: %w", err)
		}
		entries = append(entries, cases...)
	}

	corpus := knowledge.QuestionCorpus(entries)
	if cfg.PipelineVariant == "rag_ranker" {
		corpus = knowledge.AppendAnswerTexts(corpus, entries, len(entries))
	}

	for i := range corpus {
		corpus[i].Text = normalizer.Normalize(corpus[i].Text)
	}
	return entries, corpus, nil
}

// Chat wires the chat backend: preference store, message catalog and the
// gateway client.
type Chat struct {
	Config config.Config
	ChatUC *usecase.ChatUseCase

	closeFn func()
}

func NewChat(ctx context.Context, cfg config.Config) (*Chat, error) {
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	prefs := sqlite.NewPreferenceRepository(db)
	if err := prefs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	catalog, err := messages.LoadCatalog(cfg.MessagesPath)
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	gateway := qna.NewClient(cfg.GatewayURL)

	chatUC := usecase.NewChatUseCase(
		gateway,
		prefs,
		catalog,
		PipelineTitles,
		cfg.BotDefaultPipeline,
		cfg.BotDefaultVerbose,
	)

	return &Chat{
		Config: cfg,
		ChatUC: chatUC,
		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (c *Chat) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}
