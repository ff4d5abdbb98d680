// Package metrics exposes Prometheus counters for the coaching engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageResolutions counts coaching-state resolutions by resolved stage.
	StageResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growthcoach_stage_resolutions_total",
		Help: "Number of coaching state resolutions, by stage.",
	}, []string{"stage"})

	// SessionsOpened counts assistant sessions opened.
	SessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthcoach_chat_sessions_opened_total",
		Help: "Number of assistant sessions opened.",
	})

	// QuestionsConsumed counts questions accepted against the daily quota.
	QuestionsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthcoach_chat_questions_consumed_total",
		Help: "Number of assistant questions consumed from the daily quota.",
	})

	// QuestionsDenied counts questions refused because the quota was exhausted.
	QuestionsDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthcoach_chat_questions_denied_total",
		Help: "Number of assistant questions denied by the daily quota.",
	})

	// AssistantFailures counts assistant backend failures surfaced to users.
	AssistantFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthcoach_chat_assistant_failures_total",
		Help: "Number of assistant backend failures.",
	})
)
