package assistant

import (
	"encoding/json"
	"strings"
)

// Shape classifies raw assistant output so each case has one handler instead
// of nested parse attempts.
type Shape int

const (
	// ShapeProse is plain conversational text, returned as-is.
	ShapeProse Shape = iota
	// ShapeWrappedEnvelope is a JSON object carrying the real answer inside
	// a message field; the payload is the unwrapped answer.
	ShapeWrappedEnvelope
	// ShapeLeakedCriteria is an extraction-shaped JSON object surfacing in
	// an answer context; it must never reach the end user.
	ShapeLeakedCriteria
	// ShapeUnparseable looks structured but could not be decoded; returned
	// as-is.
	ShapeUnparseable
)

// leakPlaceholder replaces answers that leak structured extraction data.
const leakPlaceholder = "I found some details about that but had trouble putting them into words. Could you rephrase your question?"

// envelope fields the remote agent wraps answers in, checked in order.
var envelopeFields = []string{"message", "response", "answer", "content"}

// criteriaFields are the JSON keys of an extraction result; an object made
// mostly of these is leaked extraction output, not an answer.
var criteriaFields = map[string]struct{}{
	"game_name":    {},
	"min_players":  {},
	"max_players":  {},
	"min_playtime": {},
	"max_playtime": {},
	"mechanics":    {},
	"categories":   {},
	"max_weight":   {},
	"min_rating":   {},
	"min_age":      {},
}

// Classify inspects raw text and returns its shape plus the payload to use:
// the unwrapped message for envelopes, the original text otherwise.
func Classify(raw string) (Shape, string) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return ShapeProse, raw
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return ShapeUnparseable, raw
	}
	for _, field := range envelopeFields {
		rawVal, ok := obj[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(rawVal, &s); err == nil && strings.TrimSpace(s) != "" {
			return ShapeWrappedEnvelope, s
		}
	}
	if len(obj) > 0 {
		matched := 0
		for key := range obj {
			if _, ok := criteriaFields[key]; ok {
				matched++
			}
		}
		if matched*2 >= len(obj) {
			return ShapeLeakedCriteria, raw
		}
	}
	return ShapeUnparseable, raw
}

// Normalize maps raw assistant output to user-facing text.
func Normalize(raw string) string {
	shape, payload := Classify(raw)
	switch shape {
	case ShapeWrappedEnvelope:
		return payload
	case ShapeLeakedCriteria:
		return leakPlaceholder
	default:
		return raw
	}
}
