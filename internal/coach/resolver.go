// Package coach implements the growth coaching engine: stage resolution,
// task routing, upsell detection, and assistant context assembly.
//
// Stage resolution is a pure, ordered priority list over the profile
// snapshot. The first matching rule wins, with one exception: a new-reviews
// alert overrides the message and call-to-action while the stage tag is still
// derived from the remaining rules, so handling reviews drops the user back
// into the right place.
package coach

import (
	"log/slog"
	"sort"

	"github.com/localspark/growthcoach/internal/catalog"
	"github.com/localspark/growthcoach/internal/models"
)

// MaxTodaysTasks caps how many pending tasks are surfaced as "today's tasks".
const MaxTodaysTasks = 3

// MaxRecommendedTools caps how many execution tools are recommended in the
// daily_tools stage.
const MaxRecommendedTools = 3

// StageResolver turns a profile snapshot into a coaching state. It is pure:
// no network, no clock, no stored state. Time-of-day greeting wording is a
// presentation concern handled outside this type.
type StageResolver struct {
	advisor *UpsellAdvisor
}

// NewStageResolver creates a StageResolver with its upsell advisor.
func NewStageResolver(advisor *UpsellAdvisor) *StageResolver {
	return &StageResolver{advisor: advisor}
}

// Resolve computes the coaching state for a snapshot. Missing or partial
// profile data reads as incomplete; Resolve never panics on it.
func (r *StageResolver) Resolve(snap models.ProfileSnapshot) models.CoachingState {
	stage := underlyingStage(snap)
	slog.Debug("StageResolver.Resolve: resolved underlying stage", "userID", snap.UserID, "stage", stage, "newReviews", snap.NewReviewsCount)

	state := models.CoachingState{
		Stage:      stage,
		Milestones: milestones(snap),
	}

	switch stage {
	case models.StageBusinessDetails:
		state.Message = "Let's start with the basics. Fill in your business name, website and category so every tool knows who you are."
		state.IntroMessage = "Welcome! Your growth journey starts with a complete business profile."
		state.CTA = &models.CallToAction{Label: "Complete your profile", Action: catalog.BusinessProfileViewID}
	case models.StageAuditA:
		state.Message = "Your profile is set. Next, run the website audit to find out what's holding your site back."
		state.IntroMessage = "Nice work on the profile. Time to see how your website is doing."
		state.CTA = &models.CallToAction{Label: "Run website audit", Action: catalog.WebsiteAuditID}
	case models.StageAuditB:
		state.Message = "One audit down. Run the visibility audit to see how customers find you across search and directories."
		state.IntroMessage = "Halfway through your audits. Let's check your local visibility next."
		state.CTA = &models.CallToAction{Label: "Run visibility audit", Action: catalog.VisibilityAuditID}
	case models.StageGrowthPlan:
		r.fillGrowthPlan(snap, &state)
	case models.StageDailyTools:
		r.fillDailyTools(snap, &state)
	}

	// A reviews alert dominates messaging regardless of underlying progress.
	if snap.NewReviewsCount > 0 {
		state.Message = reviewAlertMessage(snap.NewReviewsCount)
		state.IntroMessage = "Customers are talking about you. Responding quickly builds trust."
		state.CTA = &models.CallToAction{Label: "Reply to reviews", Action: catalog.ReviewResponderID}
	}

	return state
}

// underlyingStage evaluates the ordered stage rules, ignoring the reviews alert.
func underlyingStage(snap models.ProfileSnapshot) models.Stage {
	if !snap.ProfileComplete() {
		return models.StageBusinessDetails
	}
	if !snap.AuditADone {
		return models.StageAuditA
	}
	if !snap.AuditBDone {
		return models.StageAuditB
	}
	if countTasks(snap.Tasks, models.TaskStatusPending) > 0 {
		return models.StageGrowthPlan
	}
	// A plan with no tasks ever assigned lands here too; see DESIGN.md.
	return models.StageDailyTools
}

// fillGrowthPlan selects today's tasks, picks the narrative band for the
// completion ratio, and sets the upsell flag.
func (r *StageResolver) fillGrowthPlan(snap models.ProfileSnapshot, state *models.CoachingState) {
	completed := countTasks(snap.Tasks, models.TaskStatusCompleted)
	pending := countTasks(snap.Tasks, models.TaskStatusPending)

	var todays []models.GrowthTask
	for _, task := range snap.Tasks {
		if task.Status != models.TaskStatusPending {
			continue
		}
		todays = append(todays, task)
		if len(todays) == MaxTodaysTasks {
			break
		}
	}
	state.TodaysTasks = todays
	state.Message = planNarrative(completed, completed+pending)
	state.IntroMessage = "Here's your growth plan. Small steps, done consistently, move the needle."
	state.CTA = &models.CallToAction{Label: "Open growth plan", Action: catalog.GrowthPlanViewID}

	for _, task := range todays {
		if r.advisor.ShouldUpsell(task) {
			state.Upsell = true
			break
		}
	}
	slog.Debug("StageResolver.fillGrowthPlan: selected today's tasks", "count", len(todays), "completed", completed, "pending", pending, "upsell", state.Upsell)
}

// fillDailyTools recommends the execution tools with the lowest usage counts,
// ties broken by catalog order.
func (r *StageResolver) fillDailyTools(snap models.ProfileSnapshot, state *models.CoachingState) {
	execution := catalog.ExecutionTools()
	sort.SliceStable(execution, func(i, j int) bool {
		return snap.ToolUsage[execution[i].ID] < snap.ToolUsage[execution[j].ID]
	})

	var recommended []string
	for _, tool := range execution {
		recommended = append(recommended, tool.ID)
		if len(recommended) == MaxRecommendedTools {
			break
		}
	}
	state.RecommendedTools = recommended

	if len(snap.Tasks) > 0 {
		// Every assigned task is completed; use the plan-complete narrative.
		state.Message = planNarrative(len(snap.Tasks), len(snap.Tasks))
	} else {
		state.Message = "You're all set up. Keep the momentum going with your daily marketing tools."
	}
	state.IntroMessage = "Onboarding complete! From here on it's all about consistent execution."
	slog.Debug("StageResolver.fillDailyTools: recommended tools", "tools", recommended)
}

// planNarrative picks one of four canned templates based on the completion
// ratio: exactly 0%, under half, half or more, and fully complete.
func planNarrative(completed, total int) string {
	switch {
	case total == 0 || completed == 0:
		return "Your growth plan is ready. Pick the first task and get an easy win on the board today."
	case completed >= total:
		return "Growth plan complete — every task is done. Time to put your daily tools to work."
	case completed*2 >= total:
		return "You're over halfway through your growth plan. The finish line is in sight — keep going."
	default:
		return "You've made a start on your growth plan. Knock out a couple more tasks to build momentum."
	}
}

func reviewAlertMessage(count int) string {
	if count == 1 {
		return "You have a new customer review. A quick, thoughtful reply shows everyone you're paying attention."
	}
	return "You have new customer reviews waiting. Replying promptly shows customers you care."
}

// milestones lists human-readable labels for the steps already completed.
func milestones(snap models.ProfileSnapshot) []string {
	var out []string
	if snap.ProfileComplete() {
		out = append(out, "Business profile completed")
	}
	if snap.AuditADone {
		out = append(out, "Website audit completed")
	}
	if snap.AuditBDone {
		out = append(out, "Visibility audit completed")
	}
	if len(snap.Tasks) > 0 && countTasks(snap.Tasks, models.TaskStatusPending) == 0 {
		out = append(out, "Growth plan completed")
	}
	return out
}

func countTasks(tasks []models.GrowthTask, status models.TaskStatus) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}
