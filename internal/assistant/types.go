// Package assistant talks to the remote conversational agent service: it
// owns threads, posts message sets, runs them to completion and extracts the
// resulting text.
package assistant

// Message roles accepted by the remote service.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged block of an agent turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Run statuses reported by the remote service.
const (
	RunStatusQueued     = "queued"
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCancelled  = "cancelled"
	RunStatusExpired    = "expired"
)

func isTerminalStatus(status string) bool {
	switch status {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// ThreadMessage is one entry of a thread's message history.
type ThreadMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text struct {
			Value string `json:"value"`
		} `json:"text"`
	} `json:"content"`
}

// Text flattens the message's text blocks into one string.
func (m ThreadMessage) Text() string {
	var out string
	for _, c := range m.Content {
		if c.Type != "text" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += c.Text.Value
	}
	return out
}

// Result is what a finished (or timed-out) run yields. Text is empty when
// the run produced nothing; callers treat that the same as a low-quality
// answer. Raw keeps the unnormalized text for callers that expect
// structured output, such as criteria extraction.
type Result struct {
	Text     string
	Raw      string
	ThreadID string
}
