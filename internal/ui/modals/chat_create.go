package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
)

// =============================================================================
// CreateChatState - start a personal chat or create a group
// =============================================================================

type CreateChatState struct {
	kind  string
	value string
	form  *huh.Form
}

func (*CreateChatState) modalState() {}

func (s *CreateChatState) Title() string { return "New Chat" }

func (s *CreateChatState) Help() string {
	return "Tab: next field  Enter: create  Esc: cancel"
}

func (s *CreateChatState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *CreateChatState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Kind returns the selected conversation kind.
func (s *CreateChatState) Kind() api.ChatKind {
	return api.ChatKind(s.kind)
}

// Value returns the trimmed group name or peer username.
func (s *CreateChatState) Value() string {
	return strings.TrimSpace(s.value)
}

// Validate requires a name for groups and a username for personal chats.
func (s *CreateChatState) Validate() error {
	if s.Value() != "" {
		return nil
	}
	if s.Kind() == api.KindGroup {
		return errors.ValidationFailed("group name", "is required")
	}
	return errors.ValidationFailed("username", "is required")
}

// NewCreateChatState creates the new-chat form. kind preselects the tab the
// user was on.
func NewCreateChatState(kind api.ChatKind) *CreateChatState {
	if kind == "" {
		kind = api.KindPersonal
	}
	s := &CreateChatState{kind: string(kind)}
	s.form = newModalForm(ModalInputWidth,
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Personal chat", string(api.KindPersonal)),
					huh.NewOption("Group", string(api.KindGroup)),
				).
				Value(&s.kind),
			huh.NewInput().
				Title("Name").
				Description("Username for a personal chat, group name for a group").
				CharLimit(ModalInputCharLimit).
				Value(&s.value),
		),
	)
	return s
}

// =============================================================================
// RenameChatState - rename a group
// =============================================================================

type RenameChatState struct {
	ChatID int
	name   string
	form   *huh.Form
}

func (*RenameChatState) modalState() {}

func (s *RenameChatState) Title() string { return "Rename Chat" }

func (s *RenameChatState) Help() string { return "Enter: save  Esc: cancel" }

func (s *RenameChatState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *RenameChatState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Name returns the trimmed new name.
func (s *RenameChatState) Name() string {
	return strings.TrimSpace(s.name)
}

// Validate requires a non-empty name.
func (s *RenameChatState) Validate() error {
	if s.Name() == "" {
		return errors.ValidationFailed("name", "is required")
	}
	return nil
}

// NewRenameChatState creates the rename form pre-filled with the current name.
func NewRenameChatState(chatID int, current string) *RenameChatState {
	s := &RenameChatState{ChatID: chatID, name: current}
	s.form = newModalForm(ModalInputWidth,
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				CharLimit(ModalInputCharLimit).
				Value(&s.name),
		),
	)
	return s
}
