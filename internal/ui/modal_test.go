package ui

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/ui/modals"
)

func TestNewModal(t *testing.T) {
	modal := NewModal()

	if modal == nil {
		t.Fatal("NewModal() returned nil")
	}
	if modal.IsVisible() {
		t.Error("New modal should not be visible")
	}
	if modal.State != nil {
		t.Error("New modal should have nil state")
	}
}

func TestModal_ShowHide(t *testing.T) {
	modal := NewModal()

	modal.Show(modals.NewConfirmState(modals.ConfirmLogout, 0, "", "Log out of messly?"))

	if !modal.IsVisible() {
		t.Error("Modal should be visible after Show")
	}
	if modal.State == nil {
		t.Error("Modal state should not be nil after Show")
	}

	modal.Hide()

	if modal.IsVisible() {
		t.Error("Modal should not be visible after Hide")
	}
	if modal.State != nil {
		t.Error("Modal state should be nil after Hide")
	}
}

func TestModal_Error(t *testing.T) {
	modal := NewModal()

	if modal.GetError() != "" {
		t.Error("New modal should have no error")
	}

	modal.SetError("Something went wrong")
	if modal.GetError() != "Something went wrong" {
		t.Errorf("Expected error message, got %q", modal.GetError())
	}

	// Show clears error
	modal.Show(modals.NewRenameChatState(1, "Team"))
	if modal.GetError() != "" {
		t.Error("Show should clear error")
	}

	modal.SetError("New error")

	// Hide clears error
	modal.Hide()
	if modal.GetError() != "" {
		t.Error("Hide should clear error")
	}
}

func TestModal_View(t *testing.T) {
	modal := NewModal()

	if view := modal.View(80, 24); view != "" {
		t.Error("View should return empty string when not visible")
	}

	modal.Show(modals.NewConfirmState(modals.ConfirmDeleteChat, 3, "Team", "Delete Team for everyone?"))
	view := modal.View(80, 24)
	if !strings.Contains(view, "Delete Team for everyone?") {
		t.Error("View should render the state")
	}

	modal.SetError("Test error")
	view = modal.View(80, 24)
	if !strings.Contains(view, "Test error") {
		t.Error("View should render the error")
	}
}

func TestModal_View_TitleRenderedOnce(t *testing.T) {
	modal := NewModal()
	modal.Show(modals.NewConfirmState(modals.ConfirmLeaveChat, 3, "Team", "Leave Team?"))

	view := modal.View(80, 24)
	if n := strings.Count(view, "Leave Chat?"); n != 1 {
		t.Errorf("title should render once, got %d", n)
	}
}

func TestModal_View_WidthClamping(t *testing.T) {
	modal := NewModal()

	// Chat info prefers the wide layout
	state := modals.NewChatInfoState(5, api.KindGroup, "Team", "alice", true, []api.Member{
		{ID: 1, Username: "alice", Status: api.MemberOnline},
		{ID: 2, Username: "bob"},
	})
	modal.Show(state)

	if view := modal.View(200, 40); view == "" {
		t.Error("View should render with wide screen")
	}

	for _, screen := range []int{100, 60} {
		view := modal.View(screen, 40)
		if view == "" {
			t.Errorf("View should render at width %d", screen)
		}
		for i, line := range strings.Split(view, "\n") {
			if w := lipgloss.Width(line); w > screen {
				t.Errorf("line %d exceeds screen width: visual width %d > screen width %d", i, w, screen)
			}
		}
	}
}

func TestRefreshModalStyles(t *testing.T) {
	RefreshModalStyles()
	if modals.ModalWidth != ModalWidth || modals.ModalWidthWide != ModalWidthWide {
		t.Error("modal widths should be pushed into the modals package")
	}
}
