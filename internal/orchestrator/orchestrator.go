// Package orchestrator coordinates one user question end to end: criteria
// extraction, optional grounding lookup, quality-gated answer generation
// with bounded retry, and a deterministic fallback. It always returns a
// non-empty answer.
package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shelfside/shelfside/internal/assistant"
	"github.com/shelfside/shelfside/internal/catalog"
	"github.com/shelfside/shelfside/internal/quality"
	"github.com/shelfside/shelfside/internal/telemetry"
)

// CriteriaExtractor turns free text into catalog criteria.
type CriteriaExtractor interface {
	Extract(ctx context.Context, userText, conversationHint string) catalog.Criteria
}

// Grounder builds the grounding block for non-empty criteria.
type Grounder interface {
	Build(ctx context.Context, c catalog.Criteria) (block string, matched int, err error)
}

// TurnRunner runs one agent turn against a (possibly reused) thread.
type TurnRunner interface {
	Run(ctx context.Context, externalID string, messages []assistant.Message) (assistant.Result, error)
}

// DefaultsSource supplies top-rated games for the fallback answer. Optional.
type DefaultsSource interface {
	TopRated(ctx context.Context, limit int) ([]catalog.Game, error)
}

// Request is one user question.
type Request struct {
	Query          string
	ConversationID string
	UserID         string
}

// Result is the orchestrator's answer. Text is non-empty on every path.
type Result struct {
	Text         string
	ThreadID     string
	MatchedGames int
}

const groundingSystemPrompt = "You are a friendly board game expert. Use the following game data to answer the user's question. Prefer concrete recommendations with game names over generalities."

const reinforcementPrompt = "Your previous response was too generic. Be concrete: include at least one specific game title or one actionable tip the player can apply."

const apologyText = "Sorry, I'm having trouble answering that right now. Please try again in a moment."

// Orchestrator wires the pipeline components together.
type Orchestrator struct {
	extractor    CriteriaExtractor
	grounder     Grounder
	runner       TurnRunner
	defaults     DefaultsSource
	telemetry    *telemetry.Telemetry
	maxRetries   int
	gateDisabled bool
	logger       *log.Logger
}

func New(extractor CriteriaExtractor, grounder Grounder, runner TurnRunner, defaults DefaultsSource, tele *telemetry.Telemetry, maxRetries int, gateDisabled bool) *Orchestrator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Orchestrator{
		extractor:    extractor,
		grounder:     grounder,
		runner:       runner,
		defaults:     defaults,
		telemetry:    tele,
		maxRetries:   maxRetries,
		gateDisabled: gateDisabled,
		logger:       log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
	}
}

// Answer processes one question. It never returns an error: every failure
// mode degrades to a non-empty answer, because a chat assistant must never
// show a raw error to the person asking.
func (o *Orchestrator) Answer(ctx context.Context, req Request) Result {
	evt := telemetry.RequestEvent{
		ID:        uuid.NewString(),
		Query:     req.Query,
		StartTime: time.Now(),
	}
	res, err := o.answer(ctx, req, &evt)
	evt.EndTime = time.Now()
	if err != nil {
		o.logger.Printf("request %s failed, degrading to apology: %v", evt.ID, err)
		evt.Success = false
		evt.Error = err.Error()
		o.telemetry.RecordRequest(evt)
		return Result{Text: apologyText}
	}
	evt.Success = true
	evt.MatchedGames = res.MatchedGames
	o.telemetry.RecordRequest(evt)
	return res
}

func (o *Orchestrator) answer(ctx context.Context, req Request, evt *telemetry.RequestEvent) (Result, error) {
	criteria := o.extractor.Extract(ctx, req.Query, req.ConversationID)

	var (
		messages []assistant.Message
		matched  int
	)
	if criteria.IsEmpty() {
		o.telemetry.RecordGrounding(false)
		messages = []assistant.Message{
			{Role: assistant.RoleUser, Content: req.Query},
		}
	} else {
		o.telemetry.RecordGrounding(true)
		evt.UsedGrounding = true
		block, n, err := o.grounder.Build(ctx, criteria)
		if err != nil {
			return Result{}, err
		}
		matched = n
		messages = []assistant.Message{
			{Role: assistant.RoleSystem, Content: groundingSystemPrompt},
			{Role: assistant.RoleUser, Content: block},
			{Role: assistant.RoleUser, Content: req.Query},
		}
	}

	var threadID string
	attempts := o.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		turn := messages
		if attempt > 0 {
			// Reinforce against the original set, not the previous one, so
			// reinforcement text never compounds.
			turn = append([]assistant.Message{{Role: assistant.RoleSystem, Content: reinforcementPrompt}}, messages...)
		}
		result, err := o.runner.Run(ctx, req.ConversationID, turn)
		if err != nil {
			return Result{}, err
		}
		threadID = result.ThreadID
		evt.Attempts = attempt + 1

		if o.gateDisabled || !quality.IsLowQuality(result.Text) {
			return Result{Text: result.Text, ThreadID: threadID, MatchedGames: matched}, nil
		}
		o.logger.Printf("attempt %d/%d judged low quality, retrying", attempt+1, attempts)
		o.telemetry.RecordRetry()
	}

	evt.UsedFallback = true
	return Result{Text: o.fallback(ctx, req.Query), ThreadID: threadID, MatchedGames: matched}, nil
}

// fallback builds the deterministic answer used when every attempt failed
// the gate. It never calls the remote agent.
func (o *Orchestrator) fallback(ctx context.Context, query string) string {
	var defaults []catalog.Game
	if o.defaults != nil {
		games, err := o.defaults.TopRated(ctx, 3)
		if err != nil {
			o.logger.Printf("top-rated defaults unavailable, using staples: %v", err)
		} else {
			defaults = games
		}
	}
	return buildFallback(query, defaults)
}
