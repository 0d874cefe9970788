package knowledge

import "github.com/airndlab/support-qna/internal/core/domain"

// QuestionCorpus turns knowledge entries into searchable texts, each
// mapped to its own row.
func QuestionCorpus(entries []domain.KnowledgeEntry) []domain.CorpusEntry {
	out := make([]domain.CorpusEntry, 0, len(entries))
	for row, entry := range entries {
		out = append(out, domain.CorpusEntry{Text: entry.Question, Row: row})
	}
	return out
}

// AppendAnswerTexts extends a corpus with the stored answer texts of the
// given rows, so the reranked variant can match a question against an
// answer body and still resolve back to the same row.
func AppendAnswerTexts(corpus []domain.CorpusEntry, entries []domain.KnowledgeEntry, rows int) []domain.CorpusEntry {
	if rows > len(entries) {
		rows = len(entries)
	}
	for row := 0; row < rows; row++ {
		corpus = append(corpus, domain.CorpusEntry{Text: entries[row].Answer, Row: row})
	}
	return corpus
}
