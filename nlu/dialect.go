// Package nlu derives conversational signals from raw message text using
// pure, pattern-based heuristics: Tanglish register detection and user-name
// capture. The heuristics are deliberately simple and occasionally
// imprecise (short lexicon tokens can match unintended words); they are
// preserved as documented behavior, not tuned.
package nlu

import (
	"regexp"
	"strings"
)

// strongTanglishPhrases are idiomatic enough to classify a message on a
// single substring occurrence.
var strongTanglishPhrases = []string{
	"vanakkam", "epdi iruka", "enna da", "sollu da", "naan", "unakku",
	"enakku", "pannuren", "iruku", "iruken", "venum", "illa da", "aama da",
	"seri da", "romba", "konjam", "ippo", "innaiku", "enga", "amma", "appa",
	"thambi",
}

// tanglishWords are short or common tokens that would false-positive heavily
// as substrings, so they only count as bounded whole-word matches and at
// least two distinct words are required.
var tanglishWords = []string{
	"da", "dei", "bro", "macha", "epdi", "enna", "sollu", "seri", "aama",
	"illa", "aiyo", "super", "semma", "kandippa", "parava", "panna", "pannu",
	"la", "ah", "pa", "ma", "ku", "na",
}

var tanglishWordPatterns = compileWordPatterns(tanglishWords)

func compileWordPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, word := range words {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return patterns
}

// IsTanglish reports whether a message is in the Tanglish colloquial
// register: either one strong idiomatic phrase appears as a substring, or
// at least two lexicon words match as whole words.
func IsTanglish(message string) bool {
	lower := strings.ToLower(message)

	for _, phrase := range strongTanglishPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	count := 0
	for _, pattern := range tanglishWordPatterns {
		if pattern.MatchString(lower) {
			count++
			if count >= 2 {
				return true
			}
		}
	}

	return false
}
