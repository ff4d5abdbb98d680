// Package chat manages quota-protected assistant sessions for the growth coach.
//
// A session is the in-memory transcript behind one open assistant panel. It is
// append-only, never persisted, and carries a read-only cache of the quota
// ledger's last answer. The ledger stays authoritative; the cache is only for
// display and must never gate sending.
package chat

import (
	"sync"
	"time"

	"github.com/localspark/growthcoach/internal/models"
)

// Session holds the state of one open assistant panel.
//
// Two views of the conversation are kept: messages is what the UI renders;
// turns is what the assistant backend sees. A seeded opening question lives
// only in turns (hidden), while quota notices live only in messages.
type Session struct {
	ID     string
	UserID string

	mu         sync.Mutex
	snapshot   models.ProfileSnapshot
	stage      models.Stage
	messages   []models.ChatMessage
	turns      []models.ChatMessage
	remaining  int
	limit      int
	disposed   bool
	lastActive time.Time
}

// View returns a copy of the visible transcript and quota cache.
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return models.SessionView{
		SessionID:          s.ID,
		Messages:           msgs,
		RemainingQuestions: s.remaining,
		DailyLimit:         s.limit,
	}
}

// appendExchange adds a message to both the visible transcript and the
// backend turns. Returns false without appending when the session has been
// disposed, so an in-flight reply is dropped rather than written into dead
// state.
func (s *Session) appendExchange(now time.Time, msgs ...models.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.messages = append(s.messages, msgs...)
	s.turns = append(s.turns, msgs...)
	s.lastActive = now
	return true
}

// appendNotice adds a supplemental UI-only message (greeting, quota notice,
// retry notice). Notices are never replayed to the backend.
func (s *Session) appendNotice(now time.Time, msgs ...models.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.messages = append(s.messages, msgs...)
	s.lastActive = now
	return true
}

// appendHiddenSeed records the seed question as a backend-only turn, placed
// before the reply the seed produced.
func (s *Session) appendHiddenSeed(now time.Time, seedTurn models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.turns = append([]models.ChatMessage{seedTurn}, s.turns...)
	s.lastActive = now
}

// updateQuota refreshes the cached quota fields from a ledger answer.
func (s *Session) updateQuota(remaining, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.remaining = remaining
	s.limit = limit
}

// visibleMessages returns a copy of the rendered transcript.
func (s *Session) visibleMessages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// backendTurns returns a copy of the conversation as the backend sees it.
func (s *Session) backendTurns() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]models.ChatMessage, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// dispose marks the session dead. Any response still in flight is dropped
// when it tries to append.
func (s *Session) dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
