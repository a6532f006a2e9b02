// Package quality classifies finished assistant answers. Everything here is
// a pure function over its input: no remote calls, no config lookups.
package quality

import "strings"

// MinAnswerLength is the floor below which an answer is treated as unusable.
const MinAnswerLength = 25

// placeholderPhrases are known stalling/template fragments the assistant
// emits instead of an answer. Matching is case-insensitive substring.
var placeholderPhrases = []string{
	"let me think",
	"looking into that",
	"i'll get back to you",
	"give me a moment",
	"one moment please",
	"i am processing",
	"as an ai language model",
	"i cannot answer that",
}

// IsLowQuality reports whether text is empty, too short, or matches a known
// placeholder phrase.
func IsLowQuality(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if len(trimmed) < MinAnswerLength {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
