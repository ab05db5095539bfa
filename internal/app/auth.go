package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/ui/modals"
)

// Auth form timings.
const (
	loginConfirmDelay    = 1300 * time.Millisecond
	registerConfirmDelay = 1800 * time.Millisecond
	registerRedirectWait = 1200 * time.Millisecond
	shakeDuration        = 800 * time.Millisecond
)

// AuthPhase is the state of the auth form's submission.
type AuthPhase int

const (
	AuthIdle AuthPhase = iota
	AuthSubmitting
	AuthConfirmed
	AuthNavigated
)

// String returns a human-readable name for the phase
func (p AuthPhase) String() string {
	switch p {
	case AuthIdle:
		return "Idle"
	case AuthSubmitting:
		return "Submitting"
	case AuthConfirmed:
		return "Confirmed"
	case AuthNavigated:
		return "Navigated"
	default:
		return "Unknown"
	}
}

type authStep int

const (
	stepLoginNavigate authStep = iota
	stepRegisterRedirect
	stepRegisterShowLogin
	stepShakeDone
)

// authMachine tracks the submission of the visible auth form. gen
// increments whenever a form is shown or submitted so that timers from an
// earlier form are ignored.
type authMachine struct {
	phase AuthPhase
	gen   int
	email string // registered email waiting to pre-fill the login form
}

// AuthPhase returns the current auth phase.
func (m *Model) AuthPhase() AuthPhase {
	return m.auth.phase
}

func (m *Model) setAuthPhase(p AuthPhase) {
	if m.auth.phase != p {
		m.log.Debug("auth transition", "from", m.auth.phase, "to", p)
	}
	m.auth.phase = p
}

func (m *Model) authTimer(d time.Duration, step authStep) tea.Cmd {
	gen := m.auth.gen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return AuthTimerMsg{Gen: gen, Step: step}
	})
}

// showLogin shows the sign in form with an optional notice above it.
func (m *Model) showLogin(notice string) tea.Cmd {
	m.auth.gen++
	m.setAuthPhase(AuthIdle)
	m.setRoute(RouteLogin)

	email := m.config.GetLastEmail()
	if m.auth.email != "" {
		email = m.auth.email
		m.auth.email = ""
	}
	state := modals.NewLoginState(email)
	state.SetNotice(notice)
	m.modal.Show(state)
	return nil
}

// showRegister shows the create account form.
func (m *Model) showRegister() {
	m.auth.gen++
	m.setAuthPhase(AuthIdle)
	m.setRoute(RouteRegister)
	m.modal.Show(modals.NewRegisterState())
}

// failAuth shows err on the visible auth form, starts the shake and
// returns the form to idle.
func (m *Model) failAuth(text string) tea.Cmd {
	m.auth.gen++
	m.setAuthPhase(AuthIdle)
	switch s := m.modal.State.(type) {
	case *modals.LoginState:
		s.Fail(text)
	case *modals.RegisterState:
		s.Fail(text)
	default:
		return nil
	}
	return m.authTimer(shakeDuration, stepShakeDone)
}

// handleAuthKey drives the login and register forms.
func (m *Model) handleAuthKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch s := m.modal.State.(type) {
	case *modals.LoginState:
		switch key {
		case "enter":
			if s.Busy() {
				return m, nil
			}
			return m, m.submitLogin(s)
		case "ctrl+r":
			if s.Busy() {
				return m, nil
			}
			return m, m.navigate(RouteRegister)
		}
	case *modals.RegisterState:
		switch key {
		case "enter":
			if s.Busy() {
				return m, nil
			}
			return m, m.submitRegister(s)
		case "ctrl+r":
			if s.Busy() {
				return m, nil
			}
			return m, m.navigate(RouteLogin)
		}
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// submitLogin validates the form, clears the stored session and posts the
// credentials.
func (m *Model) submitLogin(s *modals.LoginState) tea.Cmd {
	form := s.Values()
	if err := s.Validate(); err != nil {
		return m.failAuth(errors.Message(err))
	}

	// A new login never reuses the previous token
	if m.session.Valid() {
		m.purgeSession()
	} else if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.log.Warn("failed to clear stored session", "error", err)
		}
	}

	m.auth.gen++
	m.setAuthPhase(AuthSubmitting)
	s.SetSubmitting()
	m.log.Info("signing in", "email", form.Email)

	gen := m.auth.gen
	backend := m.backend
	return func() tea.Msg {
		res, err := backend.Login(context.Background(), form.Email, form.Password)
		return LoginResultMsg{Gen: gen, Email: form.Email, Result: res, Err: err}
	}
}

// handleLoginResult stores the new token and confirms it with /me.
func (m *Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.auth.gen || m.auth.phase != AuthSubmitting {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("login failed", "error", msg.Err)
		return m, m.failAuth(errors.Message(msg.Err))
	}

	m.session = &session.Session{Token: msg.Result.AccessToken, Username: msg.Result.Username}
	m.sessionGen++
	m.saveSession()

	m.config.SetLastEmail(msg.Email)
	return m, tea.Batch(m.fetchIdentity(identityLogin), m.saveConfigOrFlash())
}

// confirmLogin shows the success line and waits before navigating.
func (m *Model) confirmLogin() tea.Cmd {
	if m.auth.phase != AuthSubmitting {
		return nil
	}
	s, ok := m.modal.State.(*modals.LoginState)
	if !ok {
		return nil
	}
	m.setAuthPhase(AuthConfirmed)
	s.SetConfirmed("Signed in as " + m.session.Username)
	return m.authTimer(loginConfirmDelay, stepLoginNavigate)
}

// submitRegister validates the form and posts the new account.
func (m *Model) submitRegister(s *modals.RegisterState) tea.Cmd {
	form := s.Values()
	if err := s.Validate(); err != nil {
		return m.failAuth(errors.Message(err))
	}

	m.auth.gen++
	m.setAuthPhase(AuthSubmitting)
	s.SetSubmitting()
	m.log.Info("registering", "email", form.Email, "username", form.Username)

	gen := m.auth.gen
	backend := m.backend
	return func() tea.Msg {
		err := backend.Register(context.Background(), form.Email, form.Username, form.Password)
		return RegisterResultMsg{Gen: gen, Email: form.Email, Err: err}
	}
}

// handleRegisterResult confirms the account and schedules the switch to the
// login form.
func (m *Model) handleRegisterResult(msg RegisterResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.auth.gen || m.auth.phase != AuthSubmitting {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("registration failed", "error", msg.Err)
		return m, m.failAuth(errors.Message(msg.Err))
	}

	s, ok := m.modal.State.(*modals.RegisterState)
	if !ok {
		return m, nil
	}
	m.setAuthPhase(AuthConfirmed)
	m.auth.email = msg.Email
	s.SetConfirmed("Account created")
	return m, m.authTimer(registerConfirmDelay, stepRegisterRedirect)
}

// handleAuthTimer advances the auth state machine.
func (m *Model) handleAuthTimer(msg AuthTimerMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.auth.gen {
		return m, nil
	}

	switch msg.Step {
	case stepShakeDone:
		switch s := m.modal.State.(type) {
		case *modals.LoginState:
			s.StopShake()
		case *modals.RegisterState:
			s.StopShake()
		}
	case stepLoginNavigate:
		if m.auth.phase != AuthConfirmed {
			return m, nil
		}
		m.setAuthPhase(AuthNavigated)
		return m, m.navigate(RouteChats)
	case stepRegisterRedirect:
		if s, ok := m.modal.State.(*modals.RegisterState); ok && m.auth.phase == AuthConfirmed {
			s.SetConfirmed("Redirecting to sign in")
			return m, m.authTimer(registerRedirectWait, stepRegisterShowLogin)
		}
	case stepRegisterShowLogin:
		if m.auth.phase != AuthConfirmed {
			return m, nil
		}
		m.setAuthPhase(AuthNavigated)
		return m, m.navigate(RouteLogin)
	}
	return m, nil
}
