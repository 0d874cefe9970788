package usecase

import "strings"

// Inflectional endings ordered longest-first so the most specific form
// wins. Covers the noun/adjective/verb paradigms that matter for keying
// the synonym table; anything unmatched is returned as-is.
var flatEndings = []string{
	"иями", "ями", "ами", "ого", "его", "ому", "ему", "ыми", "ими", "ешь",
	"ишь", "ете", "ите", "ала", "ила", "ыла", "ена", "ють", "ают", "яют",
	"ует", "ять", "ыть", "ить", "ать", "еть", "ях", "ям", "ах", "ам", "ом",
	"ем", "ей", "ов", "ев", "ий", "ый", "ой", "ая", "яя", "ое", "ее", "ые",
	"ие", "ью", "ия", "ии", "ию", "у", "ю", "а", "я", "о", "е", "ы", "и", "ь",
}

const minStemRunes = 3

// normalForm reduces an inflected Cyrillic token to a dictionary-like
// stem by stripping its longest known ending. Latin and numeric tokens
// have no inflection and come back untouched.
func normalForm(word string) string {
	if !hasCyrillic(word) {
		return word
	}
	runes := []rune(word)
	for _, ending := range flatEndings {
		suffix := []rune(ending)
		if len(runes)-len(suffix) < minStemRunes {
			continue
		}
		if strings.HasSuffix(word, ending) {
			return string(runes[:len(runes)-len(suffix)])
		}
	}
	return word
}

func hasCyrillic(word string) bool {
	for _, r := range word {
		if r >= 'а' && r <= 'я' || r == 'ё' {
			return true
		}
	}
	return false
}
