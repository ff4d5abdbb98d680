package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localspark/growthcoach/internal/coach"
	"github.com/localspark/growthcoach/internal/genai"
	"github.com/localspark/growthcoach/internal/metrics"
	"github.com/localspark/growthcoach/internal/models"
	"github.com/localspark/growthcoach/internal/store"
	"github.com/localspark/growthcoach/internal/util"
	"github.com/openai/openai-go"
)

// Defaults for manager configuration.
const (
	// DefaultDailyLimit is the per-day question cap when none is configured.
	DefaultDailyLimit = 10
	// DefaultIdleTTL is how long an untouched session survives before the
	// sweeper removes it.
	DefaultIdleTTL = 30 * time.Minute
)

// lowQuotaThreshold triggers the supplemental "questions left" warning.
const lowQuotaThreshold = 2

// defaultSystemPrompt is used when no prompt file is configured.
const defaultSystemPrompt = "You are a friendly marketing growth coach for a local business. " +
	"Give short, concrete, actionable advice grounded in the business context provided. " +
	"Stay encouraging and avoid jargon."

// Canned message texts.
const (
	retryMessage        = "I couldn't reach your coach just now. Please try again shortly."
	limitReachedMessage = "You've used all of your coaching questions for today. Your questions reset tomorrow."
)

// Opts holds manager configuration.
type Opts struct {
	DailyLimit   int
	SystemPrompt string
	IdleTTL      time.Duration
}

// Option configures the Manager.
type Option func(*Opts)

// WithDailyLimit sets the per-day question cap.
func WithDailyLimit(n int) Option {
	return func(o *Opts) { o.DailyLimit = n }
}

// WithSystemPrompt overrides the default coaching system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Opts) { o.SystemPrompt = prompt }
}

// WithIdleTTL sets how long idle sessions are kept.
func WithIdleTTL(d time.Duration) Option {
	return func(o *Opts) { o.IdleTTL = d }
}

// Manager owns all open assistant sessions and the request cycle against the
// assistant backend and quota ledger.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store        store.Store
	genaiClient  genai.ClientInterface
	resolver     *coach.StageResolver
	builder      *coach.ContextBuilder
	dailyLimit   int
	systemPrompt string
	idleTTL      time.Duration
	now          func() time.Time
}

// NewManager creates a session manager with its collaborators.
func NewManager(st store.Store, client genai.ClientInterface, resolver *coach.StageResolver, builder *coach.ContextBuilder, opts ...Option) *Manager {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = DefaultDailyLimit
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	slog.Debug("chat.NewManager: creating session manager", "dailyLimit", cfg.DailyLimit, "idleTTL", cfg.IdleTTL)
	return &Manager{
		sessions:     make(map[string]*Session),
		store:        st,
		genaiClient:  client,
		resolver:     resolver,
		builder:      builder,
		dailyLimit:   cfg.DailyLimit,
		systemPrompt: cfg.SystemPrompt,
		idleTTL:      cfg.IdleTTL,
		now:          time.Now,
	}
}

// Open creates a session for the user. With a seed message, the seed is sent
// immediately as a hidden user turn so the first visible reply is contextual.
// Without one, a static greeting is shown and no backend call is made.
func (m *Manager) Open(ctx context.Context, req models.OpenSessionRequest) (models.SessionView, error) {
	resolved := m.resolver.Resolve(req.Snapshot)
	now := m.now()

	s := &Session{
		ID:         uuid.NewString(),
		UserID:     req.Snapshot.UserID,
		snapshot:   req.Snapshot,
		stage:      resolved.Stage,
		remaining:  m.dailyLimit,
		limit:      m.dailyLimit,
		lastActive: now,
	}

	// Seed the quota cache from the ledger so a reopened panel shows the
	// day's real remaining count.
	if rec, err := m.store.GetQuota(s.UserID, models.QuotaDate(now)); err != nil {
		slog.Warn("Manager.Open: quota peek failed, using defaults", "error", err, "userID", s.UserID)
	} else if rec != nil {
		s.remaining = rec.Remaining()
		s.limit = rec.Limit
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.SessionsOpened.Inc()
	slog.Info("Manager.Open: session opened", "sessionID", s.ID, "userID", s.UserID, "stage", s.stage, "seeded", req.SeedMessage != "")

	if req.SeedMessage != "" {
		m.askAssistant(ctx, s, req.SeedMessage, nil, nil)
		s.appendHiddenSeed(m.now(), m.newMessage(models.RoleUser, req.SeedMessage))
	} else {
		s.appendNotice(m.now(), m.newMessage(models.RoleAssistant, greeting(req.Snapshot.BusinessName)))
	}

	return s.View(), nil
}

// Send appends a visible user message and runs the quota-protected request
// cycle. The returned update carries only the messages this call appended.
func (m *Manager) Send(ctx context.Context, sessionID, text string) (models.ChatUpdate, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return models.ChatUpdate{}, err
	}

	// Capture both transcripts before appending so the new text is neither
	// trimmed into the context window nor replayed as a prior turn.
	history := m.recentHistory(s)
	priorTurns := s.backendTurns()
	userMsg := m.newMessage(models.RoleUser, text)
	if !s.appendExchange(m.now(), userMsg) {
		return models.ChatUpdate{}, models.ErrSessionDisposed
	}

	appended := m.askAssistant(ctx, s, text, history, priorTurns)

	view := s.View()
	return models.ChatUpdate{
		Messages:           append([]models.ChatMessage{userMsg}, appended...),
		RemainingQuestions: view.RemainingQuestions,
		DailyLimit:         view.DailyLimit,
	}, nil
}

// Get returns the session view.
func (m *Manager) Get(sessionID string) (models.SessionView, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	return s.View(), nil
}

// Dispose removes the session. Any in-flight assistant reply is silently
// dropped when it completes.
func (m *Manager) Dispose(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return models.ErrSessionNotFound
	}
	s.dispose()
	slog.Info("Manager.Dispose: session disposed", "sessionID", sessionID)
	return nil
}

// SweepIdle disposes sessions untouched for longer than the idle TTL and
// returns how many were removed.
func (m *Manager) SweepIdle() int {
	cutoff := m.now().Add(-m.idleTTL)
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.dispose()
	}
	if len(stale) > 0 {
		slog.Info("Manager.SweepIdle: removed idle sessions", "count", len(stale))
	}
	return len(stale)
}

func (m *Manager) lookup(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// recentHistory captures the visible transcript before a new user message is
// appended; the context builder trims it to its own window.
func (m *Manager) recentHistory(s *Session) []models.ChatMessage {
	return s.visibleMessages()
}

// askAssistant runs one quota-protected request cycle: reserve a question,
// call the backend, append the reply plus any quota notices. On backend
// failure the reservation is released, a canned retry message is appended,
// and the cached quota is left untouched. Returns the appended messages, or
// nil if the session was disposed while the request was in flight.
func (m *Manager) askAssistant(ctx context.Context, s *Session, text string, history, priorTurns []models.ChatMessage) []models.ChatMessage {
	date := models.QuotaDate(m.now())

	rec, consumed, err := m.store.ConsumeQuestion(s.UserID, date, m.dailyLimit)
	if err != nil {
		slog.Error("Manager.askAssistant: quota reservation failed", "error", err, "sessionID", s.ID, "userID", s.UserID)
		metrics.AssistantFailures.Inc()
		return m.appendRetryNotice(s)
	}
	if !consumed {
		slog.Info("Manager.askAssistant: daily limit exhausted", "sessionID", s.ID, "userID", s.UserID, "used", rec.Used, "limit", rec.Limit)
		metrics.QuestionsDenied.Inc()
		notice := m.newMessage(models.RoleAssistant, limitReachedMessage)
		if !s.appendNotice(m.now(), notice) {
			return nil
		}
		s.updateQuota(0, rec.Limit)
		return []models.ChatMessage{notice}
	}

	coachCtx := m.builder.Build(s.snapshot, s.stage, history)
	messages := m.buildBackendMessages(coachCtx, priorTurns, text)

	reply, err := m.genaiClient.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Error("Manager.askAssistant: assistant backend failed", "error", err, "sessionID", s.ID)
		metrics.AssistantFailures.Inc()
		if relErr := m.store.ReleaseQuestion(s.UserID, date); relErr != nil {
			slog.Error("Manager.askAssistant: failed to release reserved question", "error", relErr, "userID", s.UserID)
		}
		return m.appendRetryNotice(s)
	}
	metrics.QuestionsConsumed.Inc()

	remaining := rec.Remaining()
	appended := []models.ChatMessage{m.newMessage(models.RoleAssistant, reply)}
	if !s.appendExchange(m.now(), appended[0]) {
		slog.Debug("Manager.askAssistant: session disposed mid-flight, dropping reply", "sessionID", s.ID)
		return nil
	}

	var notices []models.ChatMessage
	if remaining > 0 && remaining <= lowQuotaThreshold {
		notices = append(notices, m.newMessage(models.RoleAssistant, lowQuotaWarning(remaining)))
	}
	if remaining == 0 && !mentionsExhaustion(reply) {
		notices = append(notices, m.newMessage(models.RoleAssistant, limitReachedMessage))
	}
	if len(notices) > 0 {
		if !s.appendNotice(m.now(), notices...) {
			return nil
		}
		appended = append(appended, notices...)
	}

	s.updateQuota(remaining, rec.Limit)
	slog.Debug("Manager.askAssistant: reply appended", "sessionID", s.ID, "remaining", remaining, "notices", len(notices))
	return appended
}

// buildBackendMessages assembles the OpenAI message list: system prompt,
// business context, prior turns (hidden seed included), then the new text.
func (m *Manager) buildBackendMessages(coachCtx coach.CoachContext, priorTurns []models.ChatMessage, text string) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(m.systemPrompt),
		openai.SystemMessage(renderContext(coachCtx)),
	}
	for _, turn := range priorTurns {
		if turn.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(text))
	return messages
}

func (m *Manager) appendRetryNotice(s *Session) []models.ChatMessage {
	notice := m.newMessage(models.RoleAssistant, retryMessage)
	if !s.appendNotice(m.now(), notice) {
		return nil
	}
	return []models.ChatMessage{notice}
}

func (m *Manager) newMessage(role, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        util.GenerateMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	}
}

// renderContext serializes the coach context for the backend system message.
func renderContext(c coach.CoachContext) string {
	data, err := json.Marshal(c)
	if err != nil {
		return "Business context unavailable."
	}
	return "Business context: " + string(data)
}

func greeting(businessName string) string {
	if businessName == "" {
		return "Hi! I'm your growth coach. Ask me anything about growing your business."
	}
	return fmt.Sprintf("Hi! I'm your growth coach. Ask me anything about growing %s.", businessName)
}

func lowQuotaWarning(remaining int) string {
	if remaining == 1 {
		return "Heads up: you have 1 coaching question left today."
	}
	return fmt.Sprintf("Heads up: you have %d coaching questions left today.", remaining)
}

// mentionsExhaustion reports whether the reply already communicates that the
// daily limit was hit, so the supplemental notice isn't duplicated.
func mentionsExhaustion(reply string) bool {
	lower := strings.ToLower(reply)
	return strings.Contains(lower, "daily limit") || strings.Contains(lower, "last question") ||
		(strings.Contains(lower, "limit") && strings.Contains(lower, "tomorrow"))
}
