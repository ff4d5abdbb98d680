package coach

import (
	"reflect"
	"testing"

	"github.com/localspark/growthcoach/internal/catalog"
	"github.com/localspark/growthcoach/internal/models"
)

func newTestResolver() *StageResolver {
	return NewStageResolver(NewUpsellAdvisor())
}

func completeSnapshot() models.ProfileSnapshot {
	return models.ProfileSnapshot{
		UserID:       "u1",
		BusinessName: "Blue Door Bakery",
		Website:      "https://bluedoorbakery.example",
		Category:     "Bakery",
		AuditADone:   true,
		AuditBDone:   true,
	}
}

func pendingTask(id string) models.GrowthTask {
	return models.GrowthTask{ID: id, Title: "Task " + id, Status: models.TaskStatusPending}
}

func completedTask(id string) models.GrowthTask {
	return models.GrowthTask{ID: id, Title: "Task " + id, Status: models.TaskStatusCompleted}
}

func TestResolve_MissingBusinessName(t *testing.T) {
	snap := completeSnapshot()
	snap.BusinessName = ""
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageBusinessDetails {
		t.Errorf("expected stage %s, got %s", models.StageBusinessDetails, state.Stage)
	}
	if state.CTA == nil {
		t.Fatal("expected a call to action")
	}
	if state.CTA.Action != catalog.BusinessProfileViewID {
		t.Errorf("expected CTA action %s, got %s", catalog.BusinessProfileViewID, state.CTA.Action)
	}
}

func TestResolve_ZeroValueSnapshotDoesNotPanic(t *testing.T) {
	state := newTestResolver().Resolve(models.ProfileSnapshot{})
	if state.Stage != models.StageBusinessDetails {
		t.Errorf("expected business_details for empty snapshot, got %s", state.Stage)
	}
}

func TestResolve_AuditOrdering(t *testing.T) {
	snap := completeSnapshot()
	snap.AuditADone = false
	snap.AuditBDone = false
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageAuditA {
		t.Errorf("expected first audit stage, got %s", state.Stage)
	}

	snap.AuditADone = true
	state = newTestResolver().Resolve(snap)
	if state.Stage != models.StageAuditB {
		t.Errorf("expected second audit stage, got %s", state.Stage)
	}
}

func TestResolve_GrowthPlanJustStarting(t *testing.T) {
	snap := completeSnapshot()
	for _, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
		snap.Tasks = append(snap.Tasks, pendingTask(id))
	}
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageGrowthPlan {
		t.Fatalf("expected growth_plan, got %s", state.Stage)
	}
	if len(state.TodaysTasks) != MaxTodaysTasks {
		t.Errorf("expected %d today's tasks, got %d", MaxTodaysTasks, len(state.TodaysTasks))
	}
	// List order must be preserved.
	if state.TodaysTasks[0].ID != "t1" || state.TodaysTasks[2].ID != "t3" {
		t.Errorf("expected first three pending tasks in order, got %v", state.TodaysTasks)
	}
	if state.Message != planNarrative(0, 5) {
		t.Errorf("expected the just-starting narrative, got %q", state.Message)
	}
}

func TestResolve_GrowthPlanHalfwayBand(t *testing.T) {
	snap := completeSnapshot()
	for i := 0; i < 6; i++ {
		snap.Tasks = append(snap.Tasks, completedTask("c"+string(rune('0'+i))))
	}
	for i := 0; i < 4; i++ {
		snap.Tasks = append(snap.Tasks, pendingTask("p"+string(rune('0'+i))))
	}
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageGrowthPlan {
		t.Fatalf("expected growth_plan, got %s", state.Stage)
	}
	// 6 of 10 completed lands in the halfway-or-more band.
	if state.Message != planNarrative(6, 10) {
		t.Errorf("unexpected narrative %q", state.Message)
	}
	if state.Message == planNarrative(1, 10) {
		t.Error("60% completion must not use the early-progress narrative")
	}
}

func TestPlanNarrative_Bands(t *testing.T) {
	cases := []struct {
		completed, total int
		wantSame         [2]int // inputs expected to share a band
	}{
		{0, 5, [2]int{0, 8}},
		{1, 10, [2]int{4, 10}},
		{5, 10, [2]int{9, 10}},
		{10, 10, [2]int{3, 3}},
	}
	for _, c := range cases {
		got := planNarrative(c.completed, c.total)
		same := planNarrative(c.wantSame[0], c.wantSame[1])
		if got != same {
			t.Errorf("planNarrative(%d,%d)=%q and planNarrative(%d,%d)=%q expected in same band",
				c.completed, c.total, got, c.wantSame[0], c.wantSame[1], same)
		}
	}
	if planNarrative(0, 10) == planNarrative(5, 10) {
		t.Error("0%% and 50%% bands must differ")
	}
	if planNarrative(4, 10) == planNarrative(5, 10) {
		t.Error("40%% and 50%% must fall in different bands")
	}
}

func TestResolve_UpsellFlag(t *testing.T) {
	snap := completeSnapshot()
	snap.Tasks = []models.GrowthTask{
		{ID: "t1", Title: "Improve your SEO ranking", Status: models.TaskStatusPending},
	}
	state := newTestResolver().Resolve(snap)
	if !state.Upsell {
		t.Error("expected upsell flag for SEO task")
	}

	snap.Tasks = []models.GrowthTask{
		{ID: "t1", Title: "Print new menus", Status: models.TaskStatusPending},
	}
	state = newTestResolver().Resolve(snap)
	if state.Upsell {
		t.Error("did not expect upsell flag for unrelated task")
	}
}

func TestResolve_UpsellIgnoresUnselectedTasks(t *testing.T) {
	snap := completeSnapshot()
	// The keyword task sits fourth; only the first three are selected.
	snap.Tasks = []models.GrowthTask{
		pendingTask("t1"), pendingTask("t2"), pendingTask("t3"),
		{ID: "t4", Title: "Fix website speed", Status: models.TaskStatusPending},
	}
	state := newTestResolver().Resolve(snap)
	if state.Upsell {
		t.Error("upsell must only consider the selected tasks")
	}
}

func TestResolve_DailyToolsRecommendation(t *testing.T) {
	snap := completeSnapshot()
	snap.ToolUsage = map[string]int{
		"content_writer":  0,
		"social_posts":    5,
		"review_responder": 2,
		"ad_designer":     7,
		"email_campaigns": 9,
	}
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageDailyTools {
		t.Fatalf("expected daily_tools, got %s", state.Stage)
	}
	want := []string{"content_writer", "review_responder", "social_posts"}
	if !reflect.DeepEqual(state.RecommendedTools, want) {
		t.Errorf("expected recommendations %v, got %v", want, state.RecommendedTools)
	}
}

func TestResolve_DailyToolsTieBreakByCatalogOrder(t *testing.T) {
	snap := completeSnapshot()
	// All usage counts equal: catalog order decides.
	state := newTestResolver().Resolve(snap)
	execution := catalog.ExecutionTools()
	for i := 0; i < MaxRecommendedTools; i++ {
		if state.RecommendedTools[i] != execution[i].ID {
			t.Errorf("expected catalog order tie-break at %d: want %s, got %s", i, execution[i].ID, state.RecommendedTools[i])
		}
	}
}

func TestResolve_ReviewsAlertDominates(t *testing.T) {
	snap := completeSnapshot()
	snap.BusinessName = "" // underlying stage is business_details
	snap.NewReviewsCount = 2
	state := newTestResolver().Resolve(snap)
	if state.Stage != models.StageBusinessDetails {
		t.Errorf("underlying stage must survive the reviews alert, got %s", state.Stage)
	}
	if state.CTA == nil || state.CTA.Action != catalog.ReviewResponderID {
		t.Errorf("expected review-reply CTA, got %+v", state.CTA)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	snap := completeSnapshot()
	snap.Tasks = []models.GrowthTask{pendingTask("t1"), completedTask("t2")}
	snap.NewReviewsCount = 1
	r := newTestResolver()
	first := r.Resolve(snap)
	second := r.Resolve(snap)
	if !reflect.DeepEqual(first, second) {
		t.Error("Resolve must be deterministic for identical input")
	}
}

func TestResolve_Milestones(t *testing.T) {
	snap := completeSnapshot()
	snap.Tasks = []models.GrowthTask{completedTask("t1")}
	state := newTestResolver().Resolve(snap)
	want := []string{
		"Business profile completed",
		"Website audit completed",
		"Visibility audit completed",
		"Growth plan completed",
	}
	if !reflect.DeepEqual(state.Milestones, want) {
		t.Errorf("expected milestones %v, got %v", want, state.Milestones)
	}
}
