// Package health runs the diagnostics behind psc doctor.
//
// Each Checker verifies one thing the client depends on and reports a
// Result:
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewBackendChecker(client))
//	manager.AddChecker(health.NewCredentialsChecker(file, time.Now))
//
//	report := manager.Run(ctx)
//	for _, c := range report.Checks {
//	    log.Info("health check", "name", c.Name, "status", c.Status)
//	}
package health

import (
	"context"
	"time"
)

// Checker verifies a single dependency of the client.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "backend" or "stored-credentials".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome class of a check.
type Status string

const (
	StatusHealthy Status = "healthy"

	// StatusDegraded means psc works with reduced functionality, for
	// example while signed out.
	StatusDegraded Status = "degraded"

	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result is what a checker found.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns the result for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
