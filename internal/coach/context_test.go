package coach

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/localspark/growthcoach/internal/models"
)

func historyOf(n int) []models.ChatMessage {
	var msgs []models.ChatMessage
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		msgs = append(msgs, models.ChatMessage{
			ID:        fmt.Sprintf("m%d", i),
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: time.Now(),
		})
	}
	return msgs
}

func TestBuild_HistoryWindowOldestFirst(t *testing.T) {
	b := NewContextBuilder()
	ctx := b.Build(completeSnapshot(), models.StageDailyTools, historyOf(10))
	if len(ctx.RecentHistory) != HistoryWindow {
		t.Fatalf("expected %d history lines, got %d", HistoryWindow, len(ctx.RecentHistory))
	}
	if !strings.HasSuffix(ctx.RecentHistory[0], "message 4") {
		t.Errorf("expected window to start at message 4, got %q", ctx.RecentHistory[0])
	}
	if !strings.HasSuffix(ctx.RecentHistory[5], "message 9") {
		t.Errorf("expected window to end at message 9, got %q", ctx.RecentHistory[5])
	}
}

func TestBuild_RoleLabels(t *testing.T) {
	b := NewContextBuilder()
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "how do I get more reviews?"},
		{Role: models.RoleAssistant, Content: "ask happy customers right after a sale."},
	}
	ctx := b.Build(completeSnapshot(), models.StageDailyTools, history)
	if !strings.HasPrefix(ctx.RecentHistory[0], "User: ") {
		t.Errorf("expected user label, got %q", ctx.RecentHistory[0])
	}
	if !strings.HasPrefix(ctx.RecentHistory[1], "Coach: ") {
		t.Errorf("expected coach label, got %q", ctx.RecentHistory[1])
	}
}

func TestBuild_ShortHistoryKeptWhole(t *testing.T) {
	b := NewContextBuilder()
	ctx := b.Build(completeSnapshot(), models.StageGrowthPlan, historyOf(2))
	if len(ctx.RecentHistory) != 2 {
		t.Errorf("expected 2 history lines, got %d", len(ctx.RecentHistory))
	}
}

func TestBuild_CompletedAudits(t *testing.T) {
	b := NewContextBuilder()
	snap := completeSnapshot()
	snap.AuditBDone = false
	ctx := b.Build(snap, models.StageAuditB, nil)
	if len(ctx.CompletedAudits) != 1 || ctx.CompletedAudits[0] != "Website Audit" {
		t.Errorf("expected only the website audit, got %v", ctx.CompletedAudits)
	}
}

func TestGrowthScore(t *testing.T) {
	cases := []struct {
		name string
		snap models.ProfileSnapshot
		want int
	}{
		{"empty snapshot", models.ProfileSnapshot{}, 0},
		{"profile only", completeSnapshot(), 20},
		{
			"profile brand listing",
			func() models.ProfileSnapshot {
				s := completeSnapshot()
				s.BrandApproved = true
				s.ListingVerified = true
				return s
			}(),
			49,
		},
		{
			"task credit capped",
			func() models.ProfileSnapshot {
				s := completeSnapshot()
				for i := 0; i < 20; i++ {
					s.Tasks = append(s.Tasks, completedTask(fmt.Sprintf("t%d", i)))
				}
				return s
			}(),
			70, // 20 profile + 50 capped task credit
		},
		{
			"clamped below one hundred",
			func() models.ProfileSnapshot {
				s := completeSnapshot()
				s.BrandApproved = true
				s.ListingVerified = true
				for i := 0; i < 20; i++ {
					s.Tasks = append(s.Tasks, completedTask(fmt.Sprintf("t%d", i)))
				}
				return s
			}(),
			99,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := GrowthScore(c.snap); got != c.want {
				t.Errorf("expected score %d, got %d", c.want, got)
			}
		})
	}
}
