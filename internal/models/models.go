// Package models defines the core data structures for the growth coaching engine.
//
// It includes the profile snapshot supplied by the dashboard host, the derived
// coaching state, chat messages, and quota records shared across modules.
package models

import (
	"errors"
	"time"
)

// Stage identifies the phase of the guided-onboarding journey shown to the user.
type Stage string

const (
	// StageBusinessDetails means the business profile is missing required fields.
	StageBusinessDetails Stage = "business_details"
	// StageAuditA means the first (website) audit has not been run yet.
	StageAuditA Stage = "audit_a"
	// StageAuditB means the second (visibility) audit has not been run yet.
	StageAuditB Stage = "audit_b"
	// StageGrowthPlan means the growth plan still has pending tasks.
	StageGrowthPlan Stage = "growth_plan"
	// StageDailyTools means onboarding is done and daily execution tools are recommended.
	StageDailyTools Stage = "daily_tools"
)

// IsValidStage checks if the given stage is supported.
func IsValidStage(s Stage) bool {
	switch s {
	case StageBusinessDetails, StageAuditA, StageAuditB, StageGrowthPlan, StageDailyTools:
		return true
	default:
		return false
	}
}

// TaskStatus represents the lifecycle state of a growth-plan task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not been completed yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted indicates the task was completed. Transitions are
	// only ever pending -> completed, driven by the host dashboard.
	TaskStatusCompleted TaskStatus = "completed"
)

// GrowthTask is a single actionable item on the user's growth plan.
type GrowthTask struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	SourceModule   string     `json:"source_module,omitempty"` // tool id that created the task
	Effort         string     `json:"effort,omitempty"`        // e.g. "quick", "medium"
	CreatedAt      time.Time  `json:"created_at,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// ProfileSnapshot is the read-only view of a customer's progress supplied by
// the host dashboard. Missing fields are treated as incomplete, never as an
// error.
type ProfileSnapshot struct {
	UserID          string         `json:"user_id"`
	BusinessName    string         `json:"business_name,omitempty"`
	Website         string         `json:"website,omitempty"`
	Category        string         `json:"category,omitempty"`
	Industry        string         `json:"industry,omitempty"`
	AuditADone      bool           `json:"audit_a_done"`
	AuditBDone      bool           `json:"audit_b_done"`
	BrandApproved   bool           `json:"brand_approved"`
	ListingVerified bool           `json:"listing_verified"`
	Tasks           []GrowthTask   `json:"tasks,omitempty"`
	NewReviewsCount int            `json:"new_reviews_count"`
	ToolUsage       map[string]int `json:"tool_usage,omitempty"`
}

// ProfileComplete reports whether all required business-profile fields are present.
func (p *ProfileSnapshot) ProfileComplete() bool {
	return p.BusinessName != "" && p.Website != "" && p.Category != ""
}

// CallToAction is a single button the UI renders for the current coaching message.
type CallToAction struct {
	Label  string `json:"label"`
	Action string `json:"action"` // navigation target (tool id or view id)
}

// CoachingState is the derived, ephemeral output of stage resolution. It is
// recomputed on every relevant snapshot change and never persisted.
type CoachingState struct {
	Stage        Stage         `json:"stage"`
	Message      string        `json:"message"`
	IntroMessage string        `json:"intro_message,omitempty"`
	CTA          *CallToAction `json:"cta,omitempty"`
	Milestones   []string      `json:"milestones,omitempty"`
	TodaysTasks  []GrowthTask  `json:"todays_tasks,omitempty"`
	// RecommendedTools lists execution tool ids, lowest usage first, when the
	// stage is daily_tools.
	RecommendedTools []string `json:"recommended_tools,omitempty"`
	Upsell           bool     `json:"upsell"`
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single visible turn in an assistant session. Append-only.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// QuotaRecord is the authoritative per-day question counter, keyed by user and
// calendar date. It is owned by the service's store; clients only ever see a
// stale read of it.
type QuotaRecord struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Used   int    `json:"used"`
	Limit  int    `json:"limit"`
}

// Remaining returns how many questions are left for the day, never negative.
func (q QuotaRecord) Remaining() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// QuotaDate formats t as the calendar-date key used for quota records.
func QuotaDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Error variables for better error handling and testability
var (
	ErrEmptyUserID     = errors.New("user id cannot be empty")
	ErrEmptyMessage    = errors.New("message text cannot be empty")
	ErrMessageTooLong  = errors.New("message text exceeds maximum length")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionDisposed = errors.New("chat session has been disposed")
)

// MaxChatMessageLength defines the maximum allowed length for a user chat message.
const MaxChatMessageLength = 4096

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
