package modals

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ConfirmAction names what a confirmation dialog guards.
type ConfirmAction int

const (
	ConfirmDeleteChat ConfirmAction = iota
	ConfirmClearHistory
	ConfirmLeaveChat
	ConfirmRemoveMember
	ConfirmDeleteUser
	ConfirmLogout
)

// =============================================================================
// ConfirmState - yes/no confirmation for destructive actions
// =============================================================================

type ConfirmState struct {
	Action   ConfirmAction
	TargetID int
	Target   string
	Message  string
}

func (*ConfirmState) modalState() {}

func (s *ConfirmState) Title() string {
	switch s.Action {
	case ConfirmDeleteChat:
		return "Delete Chat?"
	case ConfirmClearHistory:
		return "Clear History?"
	case ConfirmLeaveChat:
		return "Leave Chat?"
	case ConfirmRemoveMember:
		return "Remove Member?"
	case ConfirmDeleteUser:
		return "Delete User?"
	case ConfirmLogout:
		return "Log Out?"
	}
	return "Are you sure?"
}

func (s *ConfirmState) Help() string { return "y/Enter: confirm  n/Esc: cancel" }

func (s *ConfirmState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	msg := lipgloss.NewStyle().Foreground(ColorText).Render(s.Message)
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, msg, help)
}

func (s *ConfirmState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewConfirmState creates a confirmation for action on the target with the
// given id and name.
func NewConfirmState(action ConfirmAction, targetID int, target, message string) *ConfirmState {
	return &ConfirmState{
		Action:   action,
		TargetID: targetID,
		Target:   target,
		Message:  message,
	}
}
