package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/keys"
)

// ChatAction is a moderation or membership action offered by the chat popup.
type ChatAction int

const (
	ActionNone ChatAction = iota
	ActionRename
	ActionPhoto
	ActionAddMember
	ActionRemoveMember
	ActionClearHistory
	ActionDeleteChat
	ActionLeaveChat
	ActionViewMember
)

// chatActionKeys maps popup keys to actions.
var chatActionKeys = map[string]ChatAction{
	"r":        ActionRename,
	"p":        ActionPhoto,
	"a":        ActionAddMember,
	"x":        ActionRemoveMember,
	"c":        ActionClearHistory,
	"D":        ActionDeleteChat,
	"L":        ActionLeaveChat,
	keys.Enter: ActionViewMember,
}

// =============================================================================
// ChatInfoState - the chat popup: name, photo, members and admin actions
// =============================================================================

type ChatInfoState struct {
	ChatID        int
	Kind          api.ChatKind
	Name          string
	PhotoURL      string
	Members       []api.Member
	IsAdmin       bool
	Me            string
	SelectedIndex int
}

func (*ChatInfoState) modalState() {}

func (s *ChatInfoState) Title() string {
	if s.Name == "" {
		return "Chat"
	}
	return s.Name
}

func (s *ChatInfoState) Help() string {
	var parts []string
	parts = append(parts, "up/down: members", "Enter: profile")
	if s.IsAdmin {
		if s.Kind == api.KindGroup {
			parts = append(parts, "r: rename", "p: photo", "a: add", "x: remove")
		}
		parts = append(parts, "c: clear history", "D: delete chat")
	} else if s.Kind == api.KindGroup {
		parts = append(parts, "L: leave")
	}
	parts = append(parts, "Esc: close")
	return strings.Join(parts, "  ")
}

func (s *ChatInfoState) PreferredWidth() int { return ModalWidthWide }

func (s *ChatInfoState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	parts := []string{title}
	if s.PhotoURL != "" {
		parts = append(parts, mutedStyle().Render("Photo: ")+s.PhotoURL)
	}
	role := "member"
	if s.IsAdmin {
		role = "admin"
	}
	parts = append(parts, mutedStyle().Render("Your role: ")+role, "")

	parts = append(parts, labelStyle().Render("Members ("+itoa(len(s.Members))+")"))
	if len(s.Members) == 0 {
		parts = append(parts, mutedStyle().Italic(true).Render("Loading members..."))
	} else {
		parts = append(parts, s.renderMembers())
	}

	parts = append(parts, ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *ChatInfoState) renderMembers() string {
	start, end := visibleWindow(len(s.Members), s.SelectedIndex, MemberListMaxVisible)
	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, s.renderMember(i))
	}
	return strings.Join(lines, "\n")
}

func (s *ChatInfoState) renderMember(i int) string {
	m := s.Members[i]
	dot := lipgloss.NewStyle().Foreground(ColorTextMuted).Render("○")
	if m.Online() {
		dot = lipgloss.NewStyle().Foreground(ColorOnline).Render("●")
	}
	name := m.Username
	if name == s.Me {
		name += " (you)"
	}

	style := SidebarItemStyle
	prefix := "  "
	if i == s.SelectedIndex {
		style = SidebarSelectedStyle
		prefix = "> "
	}
	return style.Render(prefix+dot+" "+TruncateString(name, ModalWidthWide-10))
}

func (s *ChatInfoState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Up, "k":
			if s.SelectedIndex > 0 {
				s.SelectedIndex--
			}
		case keys.Down, "j":
			if s.SelectedIndex < len(s.Members)-1 {
				s.SelectedIndex++
			}
		}
	}
	return s, nil
}

// SetInfo applies a refreshed chat info response.
func (s *ChatInfoState) SetInfo(info api.ChatInfo, photoURL string) {
	if info.Name != "" {
		s.Name = info.Name
	}
	s.PhotoURL = photoURL
	if info.Members != nil {
		s.SetMembers(info.Members)
	}
}

// SetMembers replaces the member list, keeping the selection in range.
func (s *ChatInfoState) SetMembers(members []api.Member) {
	s.Members = members
	if s.SelectedIndex >= len(members) {
		s.SelectedIndex = max(0, len(members)-1)
	}
}

// SelectedMember returns the highlighted member.
func (s *ChatInfoState) SelectedMember() (api.Member, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Members) {
		return api.Member{}, false
	}
	return s.Members[s.SelectedIndex], true
}

// ActionFor returns the action bound to key, or ActionNone when the key is
// unbound or the action is not allowed for this user and chat.
func (s *ChatInfoState) ActionFor(key string) ChatAction {
	action, ok := chatActionKeys[key]
	if !ok {
		return ActionNone
	}
	group := s.Kind == api.KindGroup
	switch action {
	case ActionRename, ActionPhoto, ActionAddMember:
		if s.IsAdmin && group {
			return action
		}
	case ActionRemoveMember:
		if m, ok := s.SelectedMember(); s.IsAdmin && group && ok && m.Username != s.Me {
			return action
		}
	case ActionClearHistory, ActionDeleteChat:
		if s.IsAdmin {
			return action
		}
	case ActionLeaveChat:
		if !s.IsAdmin && group {
			return action
		}
	case ActionViewMember:
		if _, ok := s.SelectedMember(); ok {
			return action
		}
	}
	return ActionNone
}

// NewChatInfoState creates the chat popup. Members and photo arrive later via
// SetInfo and SetMembers when not yet loaded.
func NewChatInfoState(chatID int, kind api.ChatKind, name, me string, isAdmin bool, members []api.Member) *ChatInfoState {
	return &ChatInfoState{
		ChatID:  chatID,
		Kind:    kind,
		Name:    name,
		Me:      me,
		IsAdmin: isAdmin,
		Members: members,
	}
}
