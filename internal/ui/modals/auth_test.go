package modals

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/errors"
)

func TestNewLoginState_PrefillsEmail(t *testing.T) {
	s := NewLoginState("alice@example.com")
	if got := s.Values().Email; got != "alice@example.com" {
		t.Errorf("expected prefilled email, got %q", got)
	}
	if s.Busy() {
		t.Error("new form should be idle")
	}
}

func TestLoginState_Validate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{"empty email", "", "pw", "email is required"},
		{"bad email", "alice", "pw", "email must be a valid email address"},
		{"empty password", "alice@example.com", "", "password is required"},
		{"ok", " alice@example.com ", "pw", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLoginState("")
			s.email = tt.email
			s.password = tt.password
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, errors.KindInvalid) {
				t.Errorf("expected KindInvalid, got %v", errors.GetKind(err))
			}
			if got := errors.Message(err); got != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, got)
			}
		})
	}
}

func TestRegisterState_Validate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"ok", "alice", "secret1", false},
		{"short username", "al", "secret1", true},
		{"username with space", "al ice", "secret1", true},
		{"short password", "alice", "123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRegisterState()
			s.email = "alice@example.com"
			s.username = tt.username
			s.password = tt.password
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthForm_Lifecycle(t *testing.T) {
	s := NewLoginState("alice@example.com")

	s.SetSubmitting()
	if !s.Busy() {
		t.Error("submitting form should be busy")
	}
	if !strings.Contains(s.Render(), "Sign in…") {
		t.Error("submit line should show progress")
	}

	s.Fail("Invalid credentials")
	if s.Busy() {
		t.Error("failed form should accept input again")
	}
	if !s.IsShaking() {
		t.Error("failure should start the shake")
	}
	if s.ErrorText() != "Invalid credentials" {
		t.Errorf("unexpected error text %q", s.ErrorText())
	}
	if !strings.Contains(s.Render(), "Invalid credentials") {
		t.Error("error should render")
	}

	s.StopShake()
	if s.IsShaking() {
		t.Error("StopShake should end the shake")
	}

	s.SetConfirmed("Welcome back, alice")
	if !s.Busy() {
		t.Error("confirmed form should ignore input")
	}
	if s.ErrorText() != "" {
		t.Error("confirmation clears the error")
	}
	if !strings.Contains(s.Render(), "Welcome back, alice") {
		t.Error("confirmation should render")
	}
}

func TestAuthForm_BusyIgnoresInput(t *testing.T) {
	s := NewLoginState("a@b.co")
	s.SetSubmitting()

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if cmd != nil {
		t.Error("busy form should not produce commands")
	}
	if s.Values().Email != "a@b.co" {
		t.Error("busy form should not change values")
	}
}

func TestAuthForm_Notice(t *testing.T) {
	s := NewLoginState("")
	s.SetNotice("Your session expired")
	if !strings.Contains(s.Render(), "Your session expired") {
		t.Error("notice should render above the form")
	}
}
