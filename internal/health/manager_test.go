package health

import (
	"context"
	"testing"
	"time"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").
				WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestNewManager(t *testing.T) {
	manager := NewManager()

	if manager.timeout != 10*time.Second {
		t.Errorf("timeout = %v, want %v", manager.timeout, 10*time.Second)
	}
	if len(manager.checkers) != 0 {
		t.Errorf("checkers should be empty, got %d", len(manager.checkers))
	}
}

func TestWithTimeout(t *testing.T) {
	manager := NewManager()

	if returned := manager.WithTimeout(time.Second); returned != manager {
		t.Error("WithTimeout should return same manager for chaining")
	}
	if manager.timeout != time.Second {
		t.Errorf("timeout = %v, want %v", manager.timeout, time.Second)
	}
}

func TestRun_KeepsRegistrationOrder(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "slow", result: Healthy("ok"), delay: 20 * time.Millisecond})
	manager.AddChecker(&mockChecker{name: "fast", result: Degraded("meh")})

	report := manager.Run(context.Background())

	if len(report.Checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(report.Checks))
	}
	if report.Checks[0].Name != "slow" || report.Checks[1].Name != "fast" {
		t.Errorf("checks out of order: %s, %s", report.Checks[0].Name, report.Checks[1].Name)
	}
	if report.Status != StatusDegraded {
		t.Errorf("Status = %v, want %v", report.Status, StatusDegraded)
	}
	if report.Checks[0].Latency == 0 {
		t.Error("latency should be recorded")
	}
}

func TestRun_Timeout(t *testing.T) {
	manager := NewManager().WithTimeout(10 * time.Millisecond)
	manager.AddChecker(&mockChecker{name: "hang", result: Healthy("never"), delay: time.Second})

	start := time.Now()
	report := manager.Run(context.Background())

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Run took %v, the timeout was not applied", elapsed)
	}
	if report.Checks[0].Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", report.Checks[0].Status, StatusUnhealthy)
	}
}

func TestRun_NilResult(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "broken"})

	report := manager.Run(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", report.Status, StatusUnhealthy)
	}
	if failed := report.Failed(); len(failed) != 1 || failed[0].Name != "broken" {
		t.Errorf("Failed() = %v, want the broken check", failed)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checks []Check
			for _, s := range tt.statuses {
				checks = append(checks, Check{Name: string(s), Result: NewResult(s, "")})
			}
			if got := OverallStatus(checks); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckNames(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "backend"})
	manager.AddChecker(&mockChecker{name: "session"})

	names := manager.CheckNames()
	if len(names) != 2 || names[0] != "backend" || names[1] != "session" {
		t.Errorf("CheckNames() = %v", names)
	}
}
