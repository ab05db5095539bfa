package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/session"
)

// =============================================================================
// EditUserState - admin edit of a user's username, email and role
// =============================================================================

type EditUserState struct {
	UserID   int
	username string
	email    string
	role     string
	form     *huh.Form
}

func (*EditUserState) modalState() {}

func (s *EditUserState) Title() string { return "Edit User #" + itoa(s.UserID) }

func (s *EditUserState) Help() string {
	return "Tab: next field  Enter: save  Esc: cancel"
}

func (s *EditUserState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *EditUserState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Values returns the edited user fields.
func (s *EditUserState) Values() api.UserUpdate {
	return api.UserUpdate{
		Username: strings.TrimSpace(s.username),
		Email:    strings.TrimSpace(s.email),
		Role:     s.role,
	}
}

// Validate checks the edited fields.
func (s *EditUserState) Validate() error {
	v := s.Values()
	return validateForm(UserEditForm{Username: v.Username, Email: v.Email, Role: v.Role})
}

// NewEditUserState creates the editor pre-filled with the user's current values.
func NewEditUserState(u api.AdminUser) *EditUserState {
	role := u.Role
	if role != session.RoleAdmin {
		role = session.RoleUser
	}
	s := &EditUserState{
		UserID:   u.ID,
		username: u.Username,
		email:    u.Email,
		role:     role,
	}
	s.form = newModalForm(ModalInputWidth,
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(50).
				Value(&s.username),
			huh.NewInput().
				Title("Email").
				CharLimit(ModalInputCharLimit).
				Value(&s.email),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("User", session.RoleUser),
					huh.NewOption("Admin", session.RoleAdmin),
				).
				Value(&s.role),
		),
	)
	return s
}
