package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/errors"
)

// authStatus is what the submit line of an auth form shows.
type authStatus int

const (
	authIdle authStatus = iota
	authSubmitting
	authConfirmed
)

// authForm is the part shared by the login and register forms: the huh form,
// the submit line and the failure shake.
type authForm struct {
	form    *huh.Form
	status  authStatus
	message string // confirmation or error text
	failed  bool
	shaking bool
	notice  string
}

// Busy reports whether a submission is in flight or confirmed, during which
// input is ignored.
func (a *authForm) Busy() bool {
	return a.status != authIdle
}

// SetSubmitting marks the form as waiting for the backend.
func (a *authForm) SetSubmitting() {
	a.status = authSubmitting
	a.message = ""
	a.failed = false
}

// SetConfirmed shows a success message while the app waits to navigate.
func (a *authForm) SetConfirmed(msg string) {
	a.status = authConfirmed
	a.message = msg
	a.failed = false
}

// Fail shows an error and starts the shake. The form accepts input again.
func (a *authForm) Fail(msg string) {
	a.status = authIdle
	a.message = msg
	a.failed = true
	a.shaking = true
}

// StopShake ends the shake started by Fail.
func (a *authForm) StopShake() {
	a.shaking = false
}

// IsShaking reports whether the submit line is shaking.
func (a *authForm) IsShaking() bool {
	return a.shaking
}

// SetNotice shows a line above the form, such as why the session ended.
func (a *authForm) SetNotice(notice string) {
	a.notice = notice
}

// ErrorText returns the current error text, if the last submission failed.
func (a *authForm) ErrorText() string {
	if !a.failed {
		return ""
	}
	return a.message
}

func (a *authForm) update(msg tea.Msg) tea.Cmd {
	if a.Busy() {
		return nil
	}
	var cmd tea.Cmd
	a.form, cmd = huhFormUpdate(a.form, msg)
	return cmd
}

func (a *authForm) render(title, submit, help string) string {
	parts := []string{ModalTitleStyle.Render(title)}
	if a.notice != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorWarning).Render(a.notice))
	}
	parts = append(parts, a.form.View())

	button := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(ColorTextInverse).
		Background(ColorPrimary).
		Bold(true)
	line := submit
	switch a.status {
	case authSubmitting:
		line = submit + "…"
		button = button.Background(ColorTextMuted)
	case authConfirmed:
		line = "✓ " + a.message
		button = button.Background(ColorSuccess)
	}
	rendered := button.Render(line)
	if a.shaking {
		rendered = lipgloss.NewStyle().MarginLeft(2).Render(
			button.Background(ColorWarning).Render(line))
	}
	parts = append(parts, "", rendered)

	if a.failed && a.message != "" {
		parts = append(parts, StatusErrorStyle.Render(a.message))
	}

	parts = append(parts, ModalHelpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// LoginState - the sign in form
// =============================================================================

type LoginState struct {
	authForm
	email    string
	password string
}

func (*LoginState) modalState() {}

func (s *LoginState) Title() string { return "Sign in to messly" }

func (s *LoginState) Help() string {
	return "Tab: next field  Enter: sign in  ctrl+r: create account"
}

func (s *LoginState) Render() string {
	return s.render(s.Title(), "Sign in", s.Help())
}

func (s *LoginState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, s.update(msg)
}

func (s *LoginState) PreferredWidth() int { return ModalWidth }

// Values returns the trimmed email and the password as typed.
func (s *LoginState) Values() LoginForm {
	return LoginForm{Email: strings.TrimSpace(s.email), Password: s.password}
}

// Validate checks the form before any request is made.
func (s *LoginState) Validate() error {
	return validateForm(s.Values())
}

// NewLoginState creates the sign in form, optionally with the email pre-filled.
func NewLoginState(email string) *LoginState {
	s := &LoginState{email: email}
	s.form = newModalForm(ModalInputWidth,
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(ModalInputCharLimit).
				Value(&s.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(ModalInputCharLimit).
				Value(&s.password),
		),
	)
	return s
}

// =============================================================================
// RegisterState - the create account form
// =============================================================================

type RegisterState struct {
	authForm
	email    string
	username string
	password string
}

func (*RegisterState) modalState() {}

func (s *RegisterState) Title() string { return "Create a messly account" }

func (s *RegisterState) Help() string {
	return "Tab: next field  Enter: sign up  ctrl+r: back to sign in"
}

func (s *RegisterState) Render() string {
	return s.render(s.Title(), "Sign up", s.Help())
}

func (s *RegisterState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, s.update(msg)
}

func (s *RegisterState) PreferredWidth() int { return ModalWidth }

// Values returns the trimmed email and username and the password as typed.
func (s *RegisterState) Values() RegisterForm {
	return RegisterForm{
		Email:    strings.TrimSpace(s.email),
		Username: strings.TrimSpace(s.username),
		Password: s.password,
	}
}

// Validate checks the form before any request is made.
func (s *RegisterState) Validate() error {
	v := s.Values()
	if err := validateForm(v); err != nil {
		return err
	}
	if strings.ContainsAny(v.Username, " \t") {
		return errors.ValidationFailed("username", "must not contain spaces")
	}
	return nil
}

// NewRegisterState creates the registration form.
func NewRegisterState() *RegisterState {
	s := &RegisterState{}
	s.form = newModalForm(ModalInputWidth,
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(ModalInputCharLimit).
				Value(&s.email),
			huh.NewInput().
				Title("Username").
				CharLimit(50).
				Value(&s.username),
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				CharLimit(ModalInputCharLimit).
				Value(&s.password),
		),
	)
	return s
}
