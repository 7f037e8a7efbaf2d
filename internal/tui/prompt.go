// Package tui holds the interactive terminal pieces of psc: huh prompts
// and a bubbletea table viewer.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Credentials are what the login prompt collects.
type Credentials struct {
	Email    string
	Password string
}

// PromptForCredentials asks for an email and password. email pre-fills the
// first field. askPassword false skips the password, for dev logins.
func PromptForCredentials(email string, askPassword bool) (Credentials, error) {
	creds := Credentials{Email: email}

	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&creds.Email).
			Validate(validateEmail),
	}
	if askPassword {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&creds.Password).
			Validate(required("password")))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return Credentials{}, fmt.Errorf("prompt failed: %w", err)
	}

	creds.Email = strings.TrimSpace(creds.Email)
	return creds, nil
}

// PromptForString displays an interactive prompt and returns the user's input
func PromptForString(message, placeholder string, secret bool) (string, error) {
	var value string

	input := huh.NewInput().
		Title(message).
		Placeholder(placeholder).
		Value(&value).
		Validate(required(strings.ToLower(message)))
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return value, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("%q is not an email address", s)
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// noPromptEnv lists variables whose presence disables prompts: the common CI
// markers and PSC_NO_PROMPT.
var noPromptEnv = []string{
	"PSC_NO_PROMPT",
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
}

// ShouldPrompt reports whether psc may ask questions on the terminal.
func ShouldPrompt() bool {
	return !promptsDisabled() && IsInteractive()
}

func promptsDisabled() bool {
	for _, name := range noPromptEnv {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
