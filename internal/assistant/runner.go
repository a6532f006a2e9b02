package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shelfside/shelfside/internal/conversation"
)

// API is the operation set the runner needs from the remote service. *Client
// satisfies it; tests substitute fakes.
type API interface {
	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID, role, text string) error
	CreateRun(ctx context.Context, threadID string) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (string, error)
	ListMessages(ctx context.Context, threadID, order string) ([]ThreadMessage, error)
}

// oversizePrompt replaces a message set that exceeds the remote service's
// content-length ceiling. Degrading the turn beats failing the request.
const oversizePrompt = "The conversation context was too large to send. Please summarize what you know so far and answer the user's last question concisely."

// Runner posts a message set to a (possibly reused) remote thread, starts a
// run, polls it to a terminal status and extracts the newest message text.
type Runner struct {
	api          API
	registry     conversation.Registry
	pollInterval time.Duration
	pollLimit    int
	maxBodyBytes int
	logger       *log.Logger
}

func NewRunner(api API, registry conversation.Registry, pollInterval time.Duration, pollLimit, maxBodyBytes int) *Runner {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if pollLimit <= 0 {
		pollLimit = 60
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 31500
	}
	return &Runner{
		api:          api,
		registry:     registry,
		pollInterval: pollInterval,
		pollLimit:    pollLimit,
		maxBodyBytes: maxBodyBytes,
		logger:       log.New(log.Writer(), "[ASSISTANT] ", log.LstdFlags),
	}
}

// Run executes one turn. externalID may be empty, meaning a throwaway
// thread. Transport failures creating the thread, messages or run are the
// only fatal path; a run that never completes still returns whatever text
// the thread holds.
func (r *Runner) Run(ctx context.Context, externalID string, messages []Message) (Result, error) {
	threadID, reused := "", false
	if externalID != "" {
		threadID, reused = r.registry.Resolve(ctx, externalID)
	}
	if !reused {
		id, err := r.api.CreateThread(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("agent call failed: %w", err)
		}
		threadID = id
		if externalID != "" {
			r.registry.Bind(ctx, externalID, threadID)
		}
	}

	messages = r.capMessages(messages)
	for _, m := range messages {
		if err := r.api.CreateMessage(ctx, threadID, m.Role, m.Content); err != nil {
			return Result{}, fmt.Errorf("agent call failed: %w", err)
		}
	}

	runID, err := r.api.CreateRun(ctx, threadID)
	if err != nil {
		return Result{}, fmt.Errorf("agent call failed: %w", err)
	}

	r.awaitRun(ctx, threadID, runID)

	raw := r.latestText(ctx, threadID)
	return Result{Text: Normalize(raw), Raw: raw, ThreadID: threadID}, nil
}

// capMessages swaps in the fixed degrade prompt when the serialized message
// set would blow the remote content-length ceiling.
func (r *Runner) capMessages(messages []Message) []Message {
	payload, err := json.Marshal(messages)
	if err != nil || len(payload) <= r.maxBodyBytes {
		return messages
	}
	r.logger.Printf("message set of %d bytes exceeds cap %d, degrading to summary prompt", len(payload), r.maxBodyBytes)
	return []Message{{Role: RoleUser, Content: oversizePrompt}}
}

// awaitRun polls until the run reaches a terminal status or the iteration
// cap runs out. Neither a timeout nor a poll error is fatal here.
func (r *Runner) awaitRun(ctx context.Context, threadID, runID string) {
	for i := 0; i < r.pollLimit; i++ {
		select {
		case <-ctx.Done():
			r.logger.Printf("run %s: context done while polling: %v", runID, ctx.Err())
			return
		case <-time.After(r.pollInterval):
		}
		status, err := r.api.GetRun(ctx, threadID, runID)
		if err != nil {
			r.logger.Printf("run %s: poll error: %v", runID, err)
			continue
		}
		if isTerminalStatus(status) {
			if status != RunStatusCompleted {
				r.logger.Printf("run %s: finished with status %s", runID, status)
			}
			return
		}
	}
	r.logger.Printf("run %s: poll limit reached, using whatever the thread holds", runID)
}

// latestText reads the newest assistant message from the thread.
func (r *Runner) latestText(ctx context.Context, threadID string) string {
	msgs, err := r.api.ListMessages(ctx, threadID, "desc")
	if err != nil {
		r.logger.Printf("thread %s: list messages: %v", threadID, err)
		return ""
	}
	for _, m := range msgs {
		if m.Role == RoleUser || m.Role == RoleSystem {
			continue
		}
		return m.Text()
	}
	return ""
}
