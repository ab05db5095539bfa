package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// =============================================================================
// ProfileState - the current user's profile panel
// =============================================================================

type ProfileState struct {
	Email      string
	Role       string
	PictureURL string

	origUsername    string
	origDescription string
	username        string
	description     string
	form            *huh.Form
}

func (*ProfileState) modalState() {}

func (s *ProfileState) Title() string { return "Your Profile" }

func (s *ProfileState) Help() string {
	return "Enter: save  ctrl+a: change picture  ctrl+l: log out  Esc: close"
}

func (s *ProfileState) PreferredWidth() int { return ModalWidthWide }

func (s *ProfileState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	info := lipgloss.JoinVertical(lipgloss.Left,
		mutedStyle().Render("Email:   ")+orDash(s.Email),
		mutedStyle().Render("Role:    ")+orDash(s.Role),
		mutedStyle().Render("Picture: ")+orDash(s.PictureURL),
	)
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, info, "", s.form.View(), help)
}

func (s *ProfileState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// Username returns the trimmed edited username.
func (s *ProfileState) Username() string {
	return strings.TrimSpace(s.username)
}

// Description returns the trimmed edited description.
func (s *ProfileState) Description() string {
	return strings.TrimSpace(s.description)
}

// UsernameChanged reports whether the username was edited.
func (s *ProfileState) UsernameChanged() bool {
	return s.Username() != s.origUsername
}

// DescriptionChanged reports whether the description was edited.
func (s *ProfileState) DescriptionChanged() bool {
	return s.Description() != s.origDescription
}

// Validate checks the edited username.
func (s *ProfileState) Validate() error {
	if !s.UsernameChanged() {
		return nil
	}
	n := len([]rune(s.Username()))
	if n < 3 || n > 50 {
		return errors.ValidationFailed("username", "must be 3 to 50 characters")
	}
	return nil
}

// Saved records the current values as the saved baseline.
func (s *ProfileState) Saved(username, description string) {
	s.origUsername = username
	s.origDescription = description
}

// SetPictureURL updates the displayed picture after an upload.
func (s *ProfileState) SetPictureURL(url string) {
	s.PictureURL = url
}

// NewProfileState creates the profile panel from the current session.
func NewProfileState(sess *session.Session, pictureURL string) *ProfileState {
	s := &ProfileState{
		Email:           sess.Email,
		Role:            sess.Role,
		PictureURL:      pictureURL,
		origUsername:    sess.Username,
		origDescription: sess.Description,
		username:        sess.Username,
		description:     sess.Description,
	}
	s.form = newModalForm(ModalWidthWide-10,
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(50).
				Value(&s.username),
			huh.NewText().
				Title("About").
				CharLimit(500).
				Lines(3).
				Value(&s.description),
		),
	)
	return s
}
