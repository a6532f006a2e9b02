package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shelfside/shelfside/internal/assistant"
	"github.com/shelfside/shelfside/internal/catalog"
	"github.com/shelfside/shelfside/internal/quality"
)

type fakeExtractor struct {
	criteria catalog.Criteria
}

func (f *fakeExtractor) Extract(ctx context.Context, userText, conversationHint string) catalog.Criteria {
	return f.criteria
}

type fakeGrounder struct {
	block   string
	matched int
	err     error
	calls   int
}

func (f *fakeGrounder) Build(ctx context.Context, c catalog.Criteria) (string, int, error) {
	f.calls++
	return f.block, f.matched, f.err
}

type fakeRunner struct {
	responses []string
	err       error
	calls     int
	turns     [][]assistant.Message
}

func (f *fakeRunner) Run(ctx context.Context, externalID string, messages []assistant.Message) (assistant.Result, error) {
	f.calls++
	f.turns = append(f.turns, messages)
	if f.err != nil {
		return assistant.Result{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return assistant.Result{Text: f.responses[idx], Raw: f.responses[idx], ThreadID: "thread-1"}, nil
}

type fakeDefaults struct {
	games []catalog.Game
	err   error
}

func (f *fakeDefaults) TopRated(ctx context.Context, limit int) ([]catalog.Game, error) {
	return f.games, f.err
}

func newTestOrchestrator(ex *fakeExtractor, gr *fakeGrounder, run *fakeRunner, maxRetries int) *Orchestrator {
	return New(ex, gr, run, &fakeDefaults{}, nil, maxRetries, false)
}

func TestAnswerRetriesOncePastPlaceholder(t *testing.T) {
	runner := &fakeRunner{responses: []string{
		"Looking into that for you!",
		"Ticket to Ride is a classic fun gateway game that almost any group enjoys.",
	}}
	o := newTestOrchestrator(&fakeExtractor{}, &fakeGrounder{}, runner, 2)

	res := o.Answer(context.Background(), Request{Query: "fun game"})
	if runner.calls != 2 {
		t.Fatalf("expected exactly 2 agent calls, got %d", runner.calls)
	}
	if res.Text != runner.responses[1] {
		t.Fatalf("expected the second response, got %q", res.Text)
	}
	// reinforcement goes ahead of the original set, not cumulatively
	if len(runner.turns[1]) != len(runner.turns[0])+1 {
		t.Fatalf("expected one prepended message on retry, first=%d second=%d", len(runner.turns[0]), len(runner.turns[1]))
	}
	if runner.turns[1][0].Role != assistant.RoleSystem {
		t.Fatalf("expected prepended system reinforcement, got %+v", runner.turns[1][0])
	}
}

func TestAnswerGroundedMessageSet(t *testing.T) {
	gr := &fakeGrounder{block: "Showing 1 of 1 games:\n- Catan: Trade and build. (players: 3-4, playtime: 60-120 min, weight: 2.3/5, rating: 7.1/10)", matched: 1}
	runner := &fakeRunner{responses: []string{"Catan is a trading and settlement game for three to four players."}}
	o := newTestOrchestrator(&fakeExtractor{criteria: catalog.Criteria{GameName: "Catan"}}, gr, runner, 2)

	res := o.Answer(context.Background(), Request{Query: "Tell me about Catan"})
	if gr.calls != 1 {
		t.Fatalf("expected one grounding lookup, got %d", gr.calls)
	}
	if res.MatchedGames != 1 {
		t.Fatalf("expected 1 matched game, got %d", res.MatchedGames)
	}
	turn := runner.turns[0]
	if len(turn) != 3 {
		t.Fatalf("expected system+grounding+user messages, got %d", len(turn))
	}
	if turn[0].Role != assistant.RoleSystem || !strings.Contains(turn[1].Content, "Catan") || turn[2].Content != "Tell me about Catan" {
		t.Fatalf("unexpected message set: %+v", turn)
	}
}

func TestAnswerEmptyCriteriaSkipsGrounding(t *testing.T) {
	gr := &fakeGrounder{}
	runner := &fakeRunner{responses: []string{"Plenty of good options depending on your group size and patience."}}
	o := newTestOrchestrator(&fakeExtractor{}, gr, runner, 2)

	o.Answer(context.Background(), Request{Query: "what should we play"})
	if gr.calls != 0 {
		t.Fatalf("grounding must be skipped for empty criteria, got %d calls", gr.calls)
	}
	if len(runner.turns[0]) != 1 {
		t.Fatalf("expected a bare user message set, got %d messages", len(runner.turns[0]))
	}
}

func TestAnswerBoundedRetriesThenFallback(t *testing.T) {
	runner := &fakeRunner{responses: []string{"Looking into that for you!"}}
	o := newTestOrchestrator(&fakeExtractor{}, &fakeGrounder{}, runner, 2)

	res := o.Answer(context.Background(), Request{Query: "fun game"})
	if runner.calls != 3 {
		t.Fatalf("expected K+1=3 agent calls, got %d", runner.calls)
	}
	if res.Text == "" {
		t.Fatalf("fallback answer must be non-empty")
	}
	if quality.IsLowQuality(res.Text) {
		t.Fatalf("fallback answer classified low quality: %q", res.Text)
	}
}

func TestAnswerZeroRetriesSingleAttempt(t *testing.T) {
	runner := &fakeRunner{responses: []string{"Looking into that for you!"}}
	o := newTestOrchestrator(&fakeExtractor{}, &fakeGrounder{}, runner, 0)

	o.Answer(context.Background(), Request{Query: "fun game"})
	if runner.calls != 1 {
		t.Fatalf("expected a single attempt with zero retries, got %d", runner.calls)
	}
}

func TestAnswerAgentFailureYieldsApology(t *testing.T) {
	runner := &fakeRunner{err: errors.New("agent call failed: connection refused")}
	o := newTestOrchestrator(&fakeExtractor{}, &fakeGrounder{}, runner, 2)

	res := o.Answer(context.Background(), Request{Query: "fun game"})
	if res.Text == "" {
		t.Fatalf("apology answer must be non-empty")
	}
	if res.ThreadID != "" {
		t.Fatalf("failed request must not report a thread id, got %q", res.ThreadID)
	}
	if res.MatchedGames != 0 {
		t.Fatalf("failed request must report zero matches, got %d", res.MatchedGames)
	}
}

func TestAnswerGroundingFailureYieldsApology(t *testing.T) {
	gr := &fakeGrounder{err: errors.New("grounding lookup: connection refused")}
	runner := &fakeRunner{responses: []string{"unused"}}
	o := newTestOrchestrator(&fakeExtractor{criteria: catalog.Criteria{GameName: "Catan"}}, gr, runner, 2)

	res := o.Answer(context.Background(), Request{Query: "Tell me about Catan"})
	if res.Text == "" || res.ThreadID != "" {
		t.Fatalf("expected apology with no thread id, got %+v", res)
	}
	if runner.calls != 0 {
		t.Fatalf("answer step must not run after grounding failure, got %d calls", runner.calls)
	}
}

func TestAnswerQualityGateDisabledAcceptsAnything(t *testing.T) {
	runner := &fakeRunner{responses: []string{"Looking into that for you!"}}
	o := New(&fakeExtractor{}, &fakeGrounder{}, runner, &fakeDefaults{}, nil, 2, true)

	res := o.Answer(context.Background(), Request{Query: "fun game"})
	if runner.calls != 1 {
		t.Fatalf("disabled gate must accept the first attempt, got %d calls", runner.calls)
	}
	if res.Text != runner.responses[0] {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestFallbackUsesTopRatedDefaults(t *testing.T) {
	runner := &fakeRunner{responses: []string{"Looking into that for you!"}}
	defaults := &fakeDefaults{games: []catalog.Game{{Name: "Brass: Birmingham"}, {Name: "Gloomhaven"}, {Name: "Spirit Island"}}}
	o := New(&fakeExtractor{}, &fakeGrounder{}, runner, defaults, nil, 0, false)

	res := o.Answer(context.Background(), Request{Query: "fun game"})
	if !strings.Contains(res.Text, "Brass: Birmingham") {
		t.Fatalf("expected top-rated defaults in fallback, got %q", res.Text)
	}
}

func TestFallbackStrategyTip(t *testing.T) {
	text := buildFallback("how to win at catan?", nil)
	if !strings.Contains(strings.ToLower(text), "catan") || !strings.Contains(text, "ore") {
		t.Fatalf("expected the Catan tip, got %q", text)
	}
	if quality.IsLowQuality(text) {
		t.Fatalf("fallback must never be low quality: %q", text)
	}
}

func TestFallbackGenericTip(t *testing.T) {
	text := buildFallback("what should I play tonight", nil)
	if !strings.Contains(text, genericTip) {
		t.Fatalf("expected the generic tip, got %q", text)
	}
	for _, n := range shelfStaples {
		if !strings.Contains(text, n) {
			t.Fatalf("expected staple %q in fallback, got %q", n, text)
		}
	}
}
