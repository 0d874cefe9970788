package usecase

import (
	"context"
	"fmt"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/core/ports"
)

// RetrievalConfig is the per-variant decision policy. Simple variants
// retrieve a single nearest neighbor and accept it unconditionally; a
// reranking variant retrieves a candidate set, reorders it with a
// cross-encoder and applies a score threshold.
type RetrievalConfig struct {
	TopK           int
	ScoreThreshold float64
}

// RetrievalUseCase maps a question to a knowledge-base answer plus two
// classifier labels. The corpus, its vectors and the knowledge table are
// built once at startup and never mutated per request; every inference
// call is dispatched through the bounded pool.
type RetrievalUseCase struct {
	normalizer *Normalizer
	knowledge  []domain.KnowledgeEntry
	rowByText  map[string]int

	embedder ports.Embedder
	index    ports.VectorIndex
	reranker ports.Reranker
	class1   ports.QuestionClassifier
	class2   ports.QuestionClassifier
	pool     ports.InferencePool

	cfg RetrievalConfig
}

// NewRetrievalUseCase builds the per-variant decision logic. reranker,
// class1 and class2 are nil for variants without a rerank stage.
func NewRetrievalUseCase(
	normalizer *Normalizer,
	knowledge []domain.KnowledgeEntry,
	corpus []domain.CorpusEntry,
	embedder ports.Embedder,
	index ports.VectorIndex,
	reranker ports.Reranker,
	class1, class2 ports.QuestionClassifier,
	pool ports.InferencePool,
	cfg RetrievalConfig,
) *RetrievalUseCase {
	if cfg.TopK <= 0 {
		cfg.TopK = 1
	}
	rowByText := make(map[string]int, len(corpus))
	for _, entry := range corpus {
		if _, ok := rowByText[entry.Text]; !ok {
			rowByText[entry.Text] = entry.Row
		}
	}
	return &RetrievalUseCase{
		normalizer: normalizer,
		knowledge:  knowledge,
		rowByText:  rowByText,
		embedder:   embedder,
		index:      index,
		reranker:   reranker,
		class1:     class1,
		class2:     class2,
		pool:       pool,
		cfg:        cfg,
	}
}

func (uc *RetrievalUseCase) Answer(ctx context.Context, question string) (domain.PipelineAnswer, error) {
	normalized := uc.normalizer.Normalize(question)

	candidates, err := uc.retrieve(ctx, normalized)
	if err != nil {
		return domain.PipelineAnswer{}, err
	}
	if len(candidates) == 0 {
		return noMatchAnswer(nil), nil
	}

	if uc.reranker == nil {
		// No threshold: the single nearest neighbor is always
		// accepted, however weak the match.
		return uc.resolve(candidates[0], nil), nil
	}

	reranked, err := uc.rerank(ctx, normalized, candidates)
	if err != nil {
		return domain.PipelineAnswer{}, err
	}
	if len(reranked) == 0 {
		return noMatchAnswer(nil), nil
	}

	best := reranked[0]
	if best.Score < uc.cfg.ScoreThreshold {
		return uc.classifyFallback(ctx, normalized, best.Score)
	}
	return uc.resolve(best, &best.Score), nil
}

func (uc *RetrievalUseCase) retrieve(ctx context.Context, normalized string) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	err := uc.pool.Run(ctx, func(ctx context.Context) error {
		vector, err := uc.embedder.EmbedQuery(ctx, normalized)
		if err != nil {
			return fmt.Errorf("embed question: %w", err)
		}
		candidates = uc.index.Search(vector, uc.cfg.TopK)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (uc *RetrievalUseCase) rerank(ctx context.Context, normalized string, candidates []domain.Candidate) ([]domain.Candidate, error) {
	var reranked []domain.Candidate
	err := uc.pool.Run(ctx, func(ctx context.Context) error {
		var err error
		reranked, err = uc.reranker.Rerank(ctx, normalized, candidates)
		if err != nil {
			return fmt.Errorf("rerank candidates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reranked, nil
}

// classifyFallback keeps the no-answer sentinel for the answer field but
// still labels the question with both fallback classifiers.
func (uc *RetrievalUseCase) classifyFallback(ctx context.Context, normalized string, score float64) (domain.PipelineAnswer, error) {
	answer := noMatchAnswer(&score)
	err := uc.pool.Run(ctx, func(ctx context.Context) error {
		label1, err := uc.class1.Classify(ctx, normalized)
		if err != nil {
			return fmt.Errorf("classify level 1: %w", err)
		}
		label2, err := uc.class2.Classify(ctx, normalized)
		if err != nil {
			return fmt.Errorf("classify level 2: %w", err)
		}
		answer.Class1 = label1
		answer.Class2 = label2
		return nil
	})
	if err != nil {
		return domain.PipelineAnswer{}, err
	}
	return answer, nil
}

// resolve maps the candidate's corpus text back to its source row. A
// lookup miss degrades to the no-match sentinel, never to a fault.
func (uc *RetrievalUseCase) resolve(candidate domain.Candidate, score *float64) domain.PipelineAnswer {
	row, ok := uc.rowByText[candidate.Entry.Text]
	if !ok || row < 0 || row >= len(uc.knowledge) {
		return noMatchAnswer(score)
	}
	entry := uc.knowledge[row]
	return domain.PipelineAnswer{
		Answer: entry.Answer,
		Class1: entry.Class1,
		Class2: entry.Class2,
		Score:  score,
	}
}

func noMatchAnswer(score *float64) domain.PipelineAnswer {
	return domain.PipelineAnswer{
		Answer: domain.NoAnswerText,
		Score:  score,
	}
}
