package server

// AskRequest is the front-door payload for one question.
type AskRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// AskResponse is the synchronous answer.
type AskResponse struct {
	ResponseText       string `json:"response_text"`
	ThreadID           string `json:"thread_id,omitempty"`
	MatchingGamesCount int    `json:"matching_games_count"`
}

// AuthSignupRequest creates a new account.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest exchanges credentials for a token.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the issued JWT.
type TokenResponse struct {
	Token string `json:"token"`
}

// HTTPError is the unified error body.
type HTTPError struct {
	Error string `json:"error"`
}
