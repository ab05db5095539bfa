package modals

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/api"
)

// =============================================================================
// UserProfileState - another user's public card
// =============================================================================

type UserProfileState struct {
	Username   string
	Profile    *api.Profile
	PictureURL string
	Failed     bool
}

func (*UserProfileState) modalState() {}

func (s *UserProfileState) Title() string { return s.Username }

func (s *UserProfileState) Help() string { return "Esc: close" }

func (s *UserProfileState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	var body string
	switch {
	case s.Failed:
		body = StatusErrorStyle.Render("Could not load profile")
	case s.Profile == nil:
		body = mutedStyle().Italic(true).Render("Loading profile...")
	default:
		status := lipgloss.NewStyle().Foreground(ColorTextMuted).Render("○ offline")
		if s.Profile.Status == api.MemberOnline {
			status = lipgloss.NewStyle().Foreground(ColorOnline).Render("● online")
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			status,
			"",
			labelStyle().Render("About"),
			orDash(s.Profile.Description),
			"",
			mutedStyle().Render("Picture: ")+orDash(s.PictureURL),
		)
	}

	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, body, help)
}

func (s *UserProfileState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// SetProfile fills in the fetched profile.
func (s *UserProfileState) SetProfile(p *api.Profile, pictureURL string) {
	s.Profile = p
	s.PictureURL = pictureURL
	s.Failed = false
}

// SetFailed marks the fetch as failed.
func (s *UserProfileState) SetFailed() {
	s.Failed = true
}

// NewUserProfileState creates the popup in its loading state.
func NewUserProfileState(username string) *UserProfileState {
	return &UserProfileState{Username: username}
}
