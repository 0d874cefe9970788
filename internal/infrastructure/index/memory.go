package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// Memory is an in-process vector index over the corpus embeddings built
// at startup. It is read-only after construction, so Search needs no
// locking.
type Memory struct {
	entries []domain.CorpusEntry
	vectors [][]float32
	norms   []float64
}

func NewMemory(entries []domain.CorpusEntry, vectors [][]float32) (*Memory, error) {
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("entries/vectors mismatch: %d vs %d", len(entries), len(vectors))
	}
	norms := make([]float64, len(vectors))
	for i, vector := range vectors {
		norms[i] = norm(vector)
	}
	return &Memory{entries: entries, vectors: vectors, norms: norms}, nil
}

func (m *Memory) Len() int {
	return len(m.entries)
}

// Search returns up to limit corpus entries ordered by descending cosine
// similarity to the query vector.
func (m *Memory) Search(queryVector []float32, limit int) []domain.Candidate {
	if limit <= 0 || len(m.entries) == 0 || len(queryVector) == 0 {
		return nil
	}

	queryNorm := norm(queryVector)
	if queryNorm == 0 {
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(m.entries))
	for i, vector := range m.vectors {
		if len(vector) != len(queryVector) || m.norms[i] == 0 {
			continue
		}
		score := dot(queryVector, vector) / (queryNorm * m.norms[i])
		candidates = append(candidates, domain.Candidate{Entry: m.entries[i], Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Entry.Row < candidates[j].Entry.Row
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(vector []float32) float64 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
