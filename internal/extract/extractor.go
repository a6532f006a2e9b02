// Package extract turns a free-text question into structured catalog
// criteria by running the remote agent in a constrained extraction mode.
package extract

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/shelfside/shelfside/internal/assistant"
	"github.com/shelfside/shelfside/internal/catalog"
)

// TurnRunner is the slice of the assistant runner the extractor needs.
type TurnRunner interface {
	Run(ctx context.Context, externalID string, messages []assistant.Message) (assistant.Result, error)
}

const extractionPrompt = `You are a board game query extractor. Read the user's message and extract search criteria as JSON with exactly these fields, omitting any you cannot determine:

{"game_name": string, "min_players": int, "max_players": int, "min_playtime": int, "max_playtime": int, "mechanics": [string], "categories": [string], "max_weight": float, "min_rating": float, "min_age": int}

Rules:
- Player or playtime ranges collapse to min/max; a single value sets both bounds.
- Playtime is in minutes.
- Ratings are on a 1-10 scale, complexity weight on a 1-5 scale; normalize if the user uses another scale.
- If the user names a specific game, set game_name in Title Case.
- Respond with the JSON object only, no prose.`

type Extractor struct {
	runner TurnRunner
	logger *log.Logger
}

func NewExtractor(runner TurnRunner) *Extractor {
	return &Extractor{
		runner: runner,
		logger: log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags),
	}
}

// Extract never fails the request: agent errors, parse failures and
// envelope-wrapped payloads all degrade to empty criteria. It never retries.
func (e *Extractor) Extract(ctx context.Context, userText, conversationHint string) catalog.Criteria {
	messages := []assistant.Message{
		{Role: assistant.RoleSystem, Content: extractionPrompt},
		{Role: assistant.RoleUser, Content: userText},
	}
	result, err := e.runner.Run(ctx, conversationHint, messages)
	if err != nil {
		e.logger.Printf("extraction run failed, continuing without criteria: %v", err)
		return catalog.Criteria{}
	}
	return parseCriteria(result.Raw, e.logger)
}

// parseCriteria decodes the agent's raw output, unwrapping a message
// envelope if the JSON arrives inside one.
func parseCriteria(raw string, logger *log.Logger) catalog.Criteria {
	text := strings.TrimSpace(raw)
	if text == "" {
		return catalog.Criteria{}
	}
	// Strip a markdown fence if the agent added one
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	var c catalog.Criteria
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		logger.Printf("unparseable extraction output, continuing without criteria: %.120s", text)
		return catalog.Criteria{}
	}
	if !c.IsEmpty() {
		return c
	}
	// Valid JSON but no recognized fields: the agent may have wrapped the
	// criteria object in a message envelope.
	if shape, payload := assistant.Classify(text); shape == assistant.ShapeWrappedEnvelope {
		var inner catalog.Criteria
		if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &inner); err == nil {
			return inner
		}
	}
	return c
}
