package health

import (
	"encoding/json"
	"testing"
	"time"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		result *Result
		want   Status
	}{
		{Healthy("ok"), StatusHealthy},
		{Degraded("ok"), StatusDegraded},
		{Unhealthy("ok"), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if tt.result.Status != tt.want {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.want)
			}
			if tt.result.Details == nil {
				t.Error("Details should be initialized")
			}
		})
	}
}

func TestResultChaining(t *testing.T) {
	result := Healthy("test").
		WithDetail("path", "/tmp/credentials.enc").
		WithDetail("user_id", 7).
		WithLatency(50 * time.Millisecond)

	if result.Latency != 50*time.Millisecond {
		t.Errorf("Latency = %v, want %v", result.Latency, 50*time.Millisecond)
	}
	if val, ok := result.Details["user_id"].(int); !ok || val != 7 {
		t.Errorf("Details[user_id] = %v, want 7", result.Details["user_id"])
	}
}

func TestCheckJSON(t *testing.T) {
	c := Check{Name: "backend", Result: Degraded("signed out")}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != "backend" || got["status"] != "degraded" || got["message"] != "signed out" {
		t.Errorf("unexpected JSON: %s", data)
	}
}
