package models

// OpenSessionRequest is the payload for opening an assistant session.
// SeedMessage, when present, is sent as a hidden first user turn so the first
// visible reply is contextual (e.g. "ask about this specific task").
type OpenSessionRequest struct {
	Snapshot    ProfileSnapshot `json:"snapshot"`
	SeedMessage string          `json:"seed_message,omitempty"`
}

// Validate checks the open-session payload.
func (r *OpenSessionRequest) Validate() error {
	if r.Snapshot.UserID == "" {
		return ErrEmptyUserID
	}
	if len(r.SeedMessage) > MaxChatMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// SendMessageRequest is the payload for sending a user message to a session.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// Validate checks the send-message payload.
func (r *SendMessageRequest) Validate() error {
	if r.Text == "" {
		return ErrEmptyMessage
	}
	if len(r.Text) > MaxChatMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ChatUpdate carries the messages appended by one operation plus the latest
// quota cache. The quota fields are a read-only cache of the store's answer;
// the UI must never use them to pre-emptively block sending.
type ChatUpdate struct {
	Messages           []ChatMessage `json:"messages"`
	RemainingQuestions int           `json:"remaining_questions"`
	DailyLimit         int           `json:"daily_limit"`
}

// SessionView is the full transcript and quota cache for an open session.
type SessionView struct {
	SessionID          string        `json:"session_id"`
	Messages           []ChatMessage `json:"messages"`
	RemainingQuestions int           `json:"remaining_questions"`
	DailyLimit         int           `json:"daily_limit"`
}
