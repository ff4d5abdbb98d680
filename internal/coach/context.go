package coach

import (
	"fmt"
	"log/slog"

	"github.com/localspark/growthcoach/internal/models"
)

// HistoryWindow is how many recent visible messages are replayed to the
// assistant as conversational grounding.
const HistoryWindow = 6

// Growth score credit constants. The estimate is presentation-only and never
// written back to the profile.
const (
	profileCreditPoints  = 20
	brandCreditPoints    = 15
	listingCreditPoints  = 14
	taskCreditPoints     = 5
	maxTaskCreditPoints  = 50
	maxGrowthScorePoints = 99
)

// CoachContext is the bounded business and conversational context attached to
// a single assistant request. It is rebuilt per request and never persisted.
type CoachContext struct {
	BusinessName        string   `json:"business_name"`
	Industry            string   `json:"industry"`
	Stage               string   `json:"stage"`
	CompletedAudits     []string `json:"completed_audits,omitempty"`
	PendingTaskCount    int      `json:"pending_task_count"`
	NewReviewCount      int      `json:"new_review_count"`
	GrowthScoreEstimate int      `json:"growth_score_estimate"`
	RecentHistory       []string `json:"recent_history,omitempty"`
}

// ContextBuilder assembles CoachContext values from snapshots and transcripts.
type ContextBuilder struct{}

// NewContextBuilder creates a ContextBuilder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// Build assembles the assistant context for one request. History is the full
// visible transcript; only the last HistoryWindow messages are included,
// oldest first, each rendered as a role-labeled line.
func (b *ContextBuilder) Build(snap models.ProfileSnapshot, stage models.Stage, history []models.ChatMessage) CoachContext {
	ctx := CoachContext{
		BusinessName:        snap.BusinessName,
		Industry:            snap.Industry,
		Stage:               string(stage),
		PendingTaskCount:    countTasks(snap.Tasks, models.TaskStatusPending),
		NewReviewCount:      snap.NewReviewsCount,
		GrowthScoreEstimate: GrowthScore(snap),
	}
	if snap.AuditADone {
		ctx.CompletedAudits = append(ctx.CompletedAudits, "Website Audit")
	}
	if snap.AuditBDone {
		ctx.CompletedAudits = append(ctx.CompletedAudits, "Visibility Audit")
	}

	start := 0
	if len(history) > HistoryWindow {
		start = len(history) - HistoryWindow
	}
	for _, msg := range history[start:] {
		label := "User"
		if msg.Role == models.RoleAssistant {
			label = "Coach"
		}
		ctx.RecentHistory = append(ctx.RecentHistory, fmt.Sprintf("%s: %s", label, msg.Content))
	}

	slog.Debug("ContextBuilder.Build: assembled context", "stage", stage, "historyLines", len(ctx.RecentHistory), "growthScore", ctx.GrowthScoreEstimate)
	return ctx
}

// GrowthScore estimates overall marketing progress on a 0-99 scale:
// fixed-point credits for profile completeness, brand approval and a verified
// listing, plus 5 points per completed task capped at 50 from that source.
func GrowthScore(snap models.ProfileSnapshot) int {
	score := 0
	if snap.ProfileComplete() {
		score += profileCreditPoints
	}
	if snap.BrandApproved {
		score += brandCreditPoints
	}
	if snap.ListingVerified {
		score += listingCreditPoints
	}
	taskPoints := countTasks(snap.Tasks, models.TaskStatusCompleted) * taskCreditPoints
	if taskPoints > maxTaskCreditPoints {
		taskPoints = maxTaskCreditPoints
	}
	score += taskPoints
	if score > maxGrowthScorePoints {
		score = maxGrowthScorePoints
	}
	return score
}
