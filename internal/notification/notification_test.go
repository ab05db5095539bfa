package notification

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// mockNotification records calls to the notification function
type mockNotification struct {
	calls []struct {
		title   string
		message string
	}
	err error
}

func (m *mockNotification) notify(title, message string, icon any) error {
	m.calls = append(m.calls, struct {
		title   string
		message string
	}{title, message})
	return m.err
}

func TestSend(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		message     string
		mockErr     error
		expectError bool
	}{
		{
			name:    "successful notification",
			title:   "Test Title",
			message: "Test Message",
		},
		{
			name:        "notification error",
			title:       "Test Title",
			message:     "Test Message",
			mockErr:     errors.New("notification failed"),
			expectError: true,
		},
		{
			name:    "empty message",
			title:   "Title",
			message: "",
		},
		{
			name:    "unicode content",
			title:   "通知",
			message: "🎉 hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockNotification{err: tt.mockErr}
			SetNotifier(mock.notify)
			defer ResetNotifier()

			err := Send(tt.title, tt.message)

			if tt.expectError && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if len(mock.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(mock.calls))
			}
			if mock.calls[0].title != tt.title {
				t.Errorf("title = %q, want %q", mock.calls[0].title, tt.title)
			}
			if mock.calls[0].message != tt.message {
				t.Errorf("message = %q, want %q", mock.calls[0].message, tt.message)
			}
		})
	}
}

func TestNewMessage_Format(t *testing.T) {
	mock := &mockNotification{}
	SetNotifier(mock.notify)
	defer ResetNotifier()

	sent, err := NewMessage("team", "alice", "lunch?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sent {
		t.Fatal("expected notification to be sent")
	}
	if got := mock.calls[0].title; got != "messly · team" {
		t.Errorf("title = %q", got)
	}
	if got := mock.calls[0].message; got != "alice: lunch?" {
		t.Errorf("message = %q", got)
	}
}

func TestNewMessage_Throttled(t *testing.T) {
	mock := &mockNotification{}
	SetNotifier(mock.notify)
	defer ResetNotifier()
	SetLimit(time.Hour, 2)

	var sent int
	for i := 0; i < 5; i++ {
		ok, err := NewMessage("team", "bob", "spam")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			sent++
		}
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(mock.calls) != 2 {
		t.Errorf("notifier calls = %d, want 2", len(mock.calls))
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := preview(long)
	if n := len([]rune(got)); n != previewLimit {
		t.Errorf("preview length = %d, want %d", n, previewLimit)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("preview should end with an ellipsis: %q", got)
	}
	if preview("short") != "short" {
		t.Error("short content should be unchanged")
	}
}
