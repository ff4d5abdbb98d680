// Package catalog holds the static tool catalog for the dashboard.
//
// It lists every tool id the coaching engine can route to, which tools are
// one-shot "foundation" tools, and which belong to the daily execution subset
// recommended once onboarding is complete. Display metadata lives with the
// host UI; the engine only needs ids and ordering.
package catalog

// Well-known navigation targets.
const (
	// GrowthPlanViewID is the growth-plan detail view. It doubles as the safe
	// routing fallback for tasks with an absent or unrecognized source module.
	GrowthPlanViewID = "growth_plan"
	// BusinessProfileViewID is the profile completion form.
	BusinessProfileViewID = "business_profile"
	// ReviewResponderID handles replying to new customer reviews.
	ReviewResponderID = "review_responder"
	// WebsiteAuditID is the one-shot website audit tool.
	WebsiteAuditID = "website_audit"
	// VisibilityAuditID is the one-shot local-visibility audit tool.
	VisibilityAuditID = "visibility_audit"
)

// Tool describes a catalog entry.
type Tool struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Foundation bool   `json:"foundation"` // one-shot audit-style tool
	Execution  bool   `json:"execution"`  // daily execution tool, eligible for recommendations
}

// tools is the fixed catalog in display order. Recommendation tie-breaking
// follows this order.
var tools = []Tool{
	{ID: WebsiteAuditID, Name: "Website Audit", Foundation: true},
	{ID: VisibilityAuditID, Name: "Visibility Audit", Foundation: true},
	{ID: "brand_kit", Name: "Brand Kit", Foundation: true},
	{ID: "content_writer", Name: "Content Writer", Execution: true},
	{ID: "social_posts", Name: "Social Posts", Execution: true},
	{ID: "ad_designer", Name: "Ad Designer", Execution: true},
	{ID: ReviewResponderID, Name: "Review Responder", Execution: true},
	{ID: "email_campaigns", Name: "Email Campaigns", Execution: true},
}

// All returns the catalog in display order.
func All() []Tool {
	out := make([]Tool, len(tools))
	copy(out, tools)
	return out
}

// Lookup finds a tool by id.
func Lookup(id string) (Tool, bool) {
	for _, t := range tools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// IsFoundation reports whether the id belongs to the foundation set.
func IsFoundation(id string) bool {
	t, ok := Lookup(id)
	return ok && t.Foundation
}

// ExecutionTools returns the daily execution subset in catalog order.
func ExecutionTools() []Tool {
	var out []Tool
	for _, t := range tools {
		if t.Execution {
			out = append(out, t)
		}
	}
	return out
}
