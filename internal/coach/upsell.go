package coach

import (
	"strings"

	"github.com/localspark/growthcoach/internal/models"
)

// upsellKeywords groups the cross-promotion keyword taxonomy by theme. A task
// whose title or description mentions any keyword is considered sell-worthy
// for the partner-services panel.
var upsellKeywords = map[string][]string{
	"site_performance": {
		"website speed", "page speed", "slow site", "site performance",
		"core web vitals", "mobile friendly", "redesign",
	},
	"search_optimization": {
		"seo", "search ranking", "search engine", "keyword", "organic traffic",
		"meta description",
	},
	"directory_citation": {
		"directory", "citation", "business listing", "local listing",
		"google business", "yelp",
	},
	"automation_integration": {
		"automation", "automate", "integration", "crm", "booking system",
		"appointment scheduling",
	},
}

// UpsellAdvisor flags tasks that warrant showing the partner-services panel.
// It never affects task ordering or routing.
type UpsellAdvisor struct{}

// NewUpsellAdvisor creates an UpsellAdvisor.
func NewUpsellAdvisor() *UpsellAdvisor {
	return &UpsellAdvisor{}
}

// ShouldUpsell reports whether the task text matches the keyword taxonomy.
// Matching is a case-insensitive substring search over title and description.
// A task without a title is never sell-worthy.
func (a *UpsellAdvisor) ShouldUpsell(task models.GrowthTask) bool {
	if task.Title == "" {
		return false
	}
	haystack := strings.ToLower(task.Title + " " + task.Description)
	for _, group := range upsellKeywords {
		for _, keyword := range group {
			if strings.Contains(haystack, keyword) {
				return true
			}
		}
	}
	return false
}
