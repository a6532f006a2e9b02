package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfside/shelfside/internal/assistant"
)

type fakeRunner struct {
	raw      string
	err      error
	messages []assistant.Message
	external string
}

func (f *fakeRunner) Run(ctx context.Context, externalID string, messages []assistant.Message) (assistant.Result, error) {
	f.external = externalID
	f.messages = messages
	if f.err != nil {
		return assistant.Result{}, f.err
	}
	return assistant.Result{Raw: f.raw, Text: f.raw, ThreadID: "thread-1"}, nil
}

func TestExtractParsesCriteria(t *testing.T) {
	runner := &fakeRunner{raw: `{"game_name": "Catan", "min_players": 3, "max_players": 4}`}
	e := NewExtractor(runner)

	c := e.Extract(context.Background(), "can 3 of us play catan?", "conv-1")
	if c.GameName != "Catan" || c.MinPlayers != 3 || c.MaxPlayers != 4 {
		t.Fatalf("unexpected criteria: %+v", c)
	}
	if runner.external != "conv-1" {
		t.Fatalf("expected conversation hint to reach the runner, got %q", runner.external)
	}
	if len(runner.messages) != 2 || runner.messages[0].Role != assistant.RoleSystem {
		t.Fatalf("expected system+user message set, got %+v", runner.messages)
	}
}

func TestExtractUnwrapsEnvelope(t *testing.T) {
	runner := &fakeRunner{raw: `{"message": "{\"min_players\": 2, \"max_playtime\": 60}"}`}
	e := NewExtractor(runner)

	c := e.Extract(context.Background(), "something quick for two", "")
	if c.MinPlayers != 2 || c.MaxPlaytime != 60 {
		t.Fatalf("unexpected criteria: %+v", c)
	}
}

func TestExtractStripsMarkdownFence(t *testing.T) {
	runner := &fakeRunner{raw: "```json\n{\"min_rating\": 7.5}\n```"}
	e := NewExtractor(runner)

	c := e.Extract(context.Background(), "only well rated games", "")
	if c.MinRating != 7.5 {
		t.Fatalf("unexpected criteria: %+v", c)
	}
}

func TestExtractDegradesOnGarbage(t *testing.T) {
	runner := &fakeRunner{raw: "I could not find any criteria, sorry!"}
	e := NewExtractor(runner)

	if c := e.Extract(context.Background(), "hello there", ""); !c.IsEmpty() {
		t.Fatalf("expected empty criteria, got %+v", c)
	}
}

func TestExtractDegradesOnRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("agent call failed")}
	e := NewExtractor(runner)

	if c := e.Extract(context.Background(), "hello there", ""); !c.IsEmpty() {
		t.Fatalf("expected empty criteria on runner error, got %+v", c)
	}
}

func TestExtractEmptyObjectIsEmptyCriteria(t *testing.T) {
	runner := &fakeRunner{raw: `{}`}
	e := NewExtractor(runner)

	if c := e.Extract(context.Background(), "just chatting", ""); !c.IsEmpty() {
		t.Fatalf("expected empty criteria, got %+v", c)
	}
}
