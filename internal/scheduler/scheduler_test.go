package scheduler

import "testing"

func TestAddJob_InvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("not a cron expr", func() {}); err == nil {
		t.Error("expected error for invalid cron expression, got nil")
	}
}

func TestAddJob_ValidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("*/5 * * * *", func() {}); err != nil {
		t.Errorf("unexpected error for valid cron expression: %v", err)
	}
}
