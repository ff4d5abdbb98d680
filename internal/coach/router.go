package coach

import (
	"log/slog"

	"github.com/localspark/growthcoach/internal/catalog"
	"github.com/localspark/growthcoach/internal/models"
)

// TaskRouter maps a growth-plan task to the navigation target the UI should
// open when the user acts on it.
type TaskRouter struct{}

// NewTaskRouter creates a TaskRouter.
func NewTaskRouter() *TaskRouter {
	return &TaskRouter{}
}

// Route returns the tool id to navigate to for a task. Foundation tools are
// one-shot audits the user does not re-run per task, so their tasks route to
// the growth-plan detail view instead. Absent or unrecognized source modules
// also fall back to the growth-plan view. Never returns an empty string.
func (r *TaskRouter) Route(task models.GrowthTask) string {
	if task.SourceModule == "" {
		slog.Debug("TaskRouter.Route: task has no source module, routing to growth plan", "taskID", task.ID)
		return catalog.GrowthPlanViewID
	}
	tool, ok := catalog.Lookup(task.SourceModule)
	if !ok {
		slog.Debug("TaskRouter.Route: unrecognized source module, routing to growth plan", "taskID", task.ID, "sourceModule", task.SourceModule)
		return catalog.GrowthPlanViewID
	}
	if tool.Foundation {
		slog.Debug("TaskRouter.Route: foundation tool task, routing to growth plan", "taskID", task.ID, "sourceModule", task.SourceModule)
		return catalog.GrowthPlanViewID
	}
	return task.SourceModule
}
