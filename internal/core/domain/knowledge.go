package domain

// KnowledgeEntry is one ground-truth row: a known question text with its
// stored answer and two classifier labels. Case-derived variants share
// the answer/classifiers of their parent row.
type KnowledgeEntry struct {
	Question string
	Answer   string
	Class1   string
	Class2   string
}

// CorpusEntry is one searchable text in a pipeline's corpus. Row indexes
// into the knowledge table the entry resolves back to.
type CorpusEntry struct {
	Text string
	Row  int
}

// Candidate is a corpus entry retrieved for a query, with its
// similarity (or rerank) score.
type Candidate struct {
	Entry CorpusEntry
	Score float64
}
