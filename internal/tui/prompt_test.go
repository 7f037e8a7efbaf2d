package tui

import (
	"testing"
)

func clearPromptEnv(t *testing.T) {
	t.Helper()
	for _, name := range noPromptEnv {
		t.Setenv(name, "")
	}
}

func TestPromptsDisabled(t *testing.T) {
	clearPromptEnv(t)
	if promptsDisabled() {
		t.Fatal("prompts disabled with a clean environment")
	}

	for _, name := range noPromptEnv {
		t.Run(name, func(t *testing.T) {
			clearPromptEnv(t)
			t.Setenv(name, "1")
			if !promptsDisabled() {
				t.Errorf("%s=1 should disable prompts", name)
			}
			if ShouldPrompt() {
				t.Errorf("ShouldPrompt() = true with %s set", name)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"a@b.com", false},
		{"  a@b.com  ", false},
		{"", true},
		{"no-at-sign", true},
		{"@b.com", true},
		{"a@", true},
	}

	for _, tt := range tests {
		if err := validateEmail(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateEmail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestRequired(t *testing.T) {
	check := required("password")
	if err := check(""); err == nil || err.Error() != "password is required" {
		t.Errorf("unexpected error %v", err)
	}
	if err := check("x"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
