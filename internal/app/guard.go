package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

// Route is a top-level screen.
type Route int

const (
	RouteLogin Route = iota
	RouteRegister
	RouteChats
	RouteAdmin
)

// String returns a human-readable name for the route
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "Login"
	case RouteRegister:
		return "Register"
	case RouteChats:
		return "Chats"
	case RouteAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// IsAuth reports whether the route is one of the auth forms.
func (r Route) IsAuth() bool {
	return r == RouteLogin || r == RouteRegister
}

// Resolve decides where a request for a route lands given the session.
// Without a session only the auth forms are reachable. Admins always land
// on the admin panel; everyone else is kept away from it and from the auth
// forms.
func Resolve(requested Route, s *session.Session) Route {
	if !s.Valid() {
		if requested == RouteRegister {
			return RouteRegister
		}
		return RouteLogin
	}
	if s.IsAdmin() {
		return RouteAdmin
	}
	return RouteChats
}

// fetchIdentity confirms the token with GET /me.
func (m *Model) fetchIdentity(purpose identityPurpose) tea.Cmd {
	sess := m.session
	backend := m.backend
	return func() tea.Msg {
		me, err := backend.Me(context.Background(), sess)
		return IdentityMsg{Token: sess.Token, Me: me, Err: err, Purpose: purpose}
	}
}

// handleIdentityMsg caches a confirmed identity or ends the session.
func (m *Model) handleIdentityMsg(msg IdentityMsg) (tea.Model, tea.Cmd) {
	// The token changed while the request was in flight
	if !m.session.Valid() || m.session.Token != msg.Token {
		m.log.Debug("dropping identity for a replaced token")
		return m, nil
	}

	if msg.Err != nil {
		m.log.Warn("identity check failed", "purpose", msg.Purpose, "error", msg.Err)
		switch msg.Purpose {
		case identityLogin:
			m.purgeSession()
			return m, m.failAuth(errors.Message(msg.Err))
		case identityRefresh:
			if errors.Is(msg.Err, errors.KindAuth) {
				return m, m.forceReload(noticeSessionExpired)
			}
			return m, nil
		default:
			return m, m.forceReload(noticeSessionExpired)
		}
	}

	m.confirmIdentity(msg.Me)

	switch msg.Purpose {
	case identityStartup:
		m.verifying = false
		return m, m.navigate(RouteChats)
	case identityLogin:
		return m, m.confirmLogin()
	}
	return m, nil
}

// confirmIdentity caches /me in the session and persists it.
func (m *Model) confirmIdentity(me *api.Me) {
	if me == nil {
		return
	}
	m.session.Confirm(session.Identity{
		Username:       me.Username,
		Email:          me.Email,
		Role:           me.Role,
		ProfilePicture: me.ProfilePicture,
		Description:    me.Description,
	})
	m.saveSession()
	m.applyIdentity()
}

// applyIdentity pushes the session's username into the components.
func (m *Model) applyIdentity() {
	name := ""
	admin := false
	if m.session.Valid() {
		name = m.session.Username
		admin = m.session.IsAdmin()
	}
	m.header.SetUser(name, admin)
	m.sidebar.SetIdentity(name)
	m.chat.SetIdentity(name)
}
