package modals

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/keys"
)

// =============================================================================
// AddMemberState - search users and add one to a group
// =============================================================================

type AddMemberState struct {
	ChatID        int
	Input         textinput.Model
	Results       []api.UserSummary
	SelectedIndex int

	// existing members are hidden from results
	existing map[string]bool
	// resultsFor is the query the current results answer
	resultsFor string
	lastQuery  string
}

func (*AddMemberState) modalState() {}

func (s *AddMemberState) Title() string { return "Add Member" }

func (s *AddMemberState) Help() string {
	return "type to search  up/down: select  Enter: add  Esc: cancel"
}

func (s *AddMemberState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	parts := []string{title, s.Input.View(), ""}

	switch {
	case s.Query() == "":
		parts = append(parts, mutedStyle().Italic(true).Render("Start typing a username"))
	case s.resultsFor != s.Query():
		parts = append(parts, mutedStyle().Italic(true).Render("Searching..."))
	case len(s.Results) == 0:
		parts = append(parts, mutedStyle().Italic(true).Render("No users found"))
	default:
		start, end := visibleWindow(len(s.Results), s.SelectedIndex, SearchResultsMaxShown)
		names := make([]string, 0, end-start)
		for _, u := range s.Results[start:end] {
			names = append(names, u.Username)
		}
		parts = append(parts, strings.TrimRight(RenderSelectableList(names, s.SelectedIndex-start), "\n"))
	}

	parts = append(parts, ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *AddMemberState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Up:
			if s.SelectedIndex > 0 {
				s.SelectedIndex--
			}
			return s, nil
		case keys.Down:
			if s.SelectedIndex < len(s.Results)-1 {
				s.SelectedIndex++
			}
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// Query returns the trimmed search text.
func (s *AddMemberState) Query() string {
	return strings.TrimSpace(s.Input.Value())
}

// QueryChanged reports whether the query differs from the last call, so the
// app searches once per edit.
func (s *AddMemberState) QueryChanged() bool {
	q := s.Query()
	if q == s.lastQuery {
		return false
	}
	s.lastQuery = q
	return true
}

// SetResults applies search results for query. Results for any other query
// are stale and dropped.
func (s *AddMemberState) SetResults(query string, results []api.UserSummary) {
	if query != s.Query() {
		return
	}
	s.resultsFor = query
	s.Results = s.Results[:0]
	for _, u := range results {
		if !s.existing[u.Username] {
			s.Results = append(s.Results, u)
		}
	}
	s.SelectedIndex = 0
}

// Selected returns the highlighted user, falling back to the typed query.
func (s *AddMemberState) Selected() string {
	if s.resultsFor == s.Query() && s.SelectedIndex < len(s.Results) {
		return s.Results[s.SelectedIndex].Username
	}
	return s.Query()
}

// NewAddMemberState creates the add member search for a group.
func NewAddMemberState(chatID int, members []api.Member) *AddMemberState {
	ti := newTextInput("username")
	ti.Focus()

	existing := make(map[string]bool, len(members))
	for _, m := range members {
		existing[m.Username] = true
	}
	return &AddMemberState{
		ChatID:   chatID,
		Input:    ti,
		existing: existing,
	}
}
