package usecase

import (
	"strings"
	"unicode"
)

// Normalizer applies the shared question-normalization policy: lower-case,
// strip punctuation except internal hyphens, tokenize on whitespace, then
// substitute each token whose lemma appears in the synonym table.
// Transliterated brand terms are stored in canonical Latin script, so an
// inflected «рутубе» and «рутубу» both normalize to "rutube".
type Normalizer struct {
	synonyms map[string]string
}

func NewNormalizer(synonyms map[string]string) *Normalizer {
	if synonyms == nil {
		synonyms = map[string]string{}
	}
	return &Normalizer{synonyms: synonyms}
}

func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = stripPunctuation(text)

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	out := make([]string, 0, len(words))
	for _, word := range words {
		// Substitution keys off the lemma, not the surface form;
		// a token with no table entry passes through unchanged.
		if replacement, ok := n.synonyms[normalForm(word)]; ok {
			out = append(out, replacement)
			continue
		}
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

// stripPunctuation drops everything except letters, digits, whitespace
// and hyphens. Hyphens survive only between word characters.
func stripPunctuation(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '-':
			if i > 0 && i < len(runes)-1 && isWordRune(runes[i-1]) && isWordRune(runes[i+1]) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
