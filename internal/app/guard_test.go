package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
)

func TestResolve(t *testing.T) {
	user := userSession()
	admin := adminSession()

	tests := []struct {
		name      string
		requested Route
		session   *session.Session
		want      Route
	}{
		{"signed out chats", RouteChats, nil, RouteLogin},
		{"signed out admin", RouteAdmin, nil, RouteLogin},
		{"signed out login", RouteLogin, nil, RouteLogin},
		{"signed out register", RouteRegister, nil, RouteRegister},
		{"empty token", RouteChats, &session.Session{}, RouteLogin},
		{"user chats", RouteChats, user, RouteChats},
		{"user admin", RouteAdmin, user, RouteChats},
		{"user login", RouteLogin, user, RouteChats},
		{"user register", RouteRegister, user, RouteChats},
		{"admin chats", RouteChats, admin, RouteAdmin},
		{"admin login", RouteLogin, admin, RouteAdmin},
		{"admin admin", RouteAdmin, admin, RouteAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.requested, tt.session))
		})
	}
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, "Login", RouteLogin.String())
	assert.Equal(t, "Admin", RouteAdmin.String())
	assert.Equal(t, "Unknown", Route(99).String())
	assert.True(t, RouteRegister.IsAuth())
	assert.False(t, RouteChats.IsAuth())
}

func TestInit_WithoutSessionShowsLogin(t *testing.T) {
	m, _ := testModelWithSize(t, nil, 120, 40)

	m.Init()

	assert.Equal(t, RouteLogin, m.Route())
	assert.False(t, m.verifying)
	require.True(t, m.modal.IsVisible())
}

func TestInit_StoredSessionIsVerified(t *testing.T) {
	m, env := testModelWithSize(t, userSession(), 120, 40)
	env.backend.On("Me", "tok-alice").Return(&api.Me{Username: "alice", Email: "alice@example.com", Role: session.RoleUser}, nil)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.True(t, m.verifying)
	assert.Contains(t, m.RenderToString(), "Checking session")

	// Keys are ignored while verifying
	sendKey(m, "n")
	assert.False(t, m.modal.IsVisible())

	m.Update(cmd())

	assert.False(t, m.verifying)
	assert.Equal(t, RouteChats, m.Route())
	assert.True(t, m.Session().Confirmed)
	env.backend.AssertExpectations(t)
}

func TestInit_StoredAdminLandsOnAdmin(t *testing.T) {
	m, env := testModelWithSize(t, adminSession(), 120, 40)
	env.backend.On("Me", "tok-root").Return(&api.Me{Username: "root", Role: session.RoleAdmin}, nil)

	cmd := m.Init()
	m.Update(cmd())

	assert.Equal(t, RouteAdmin, m.Route())
}

func TestInit_RejectedTokenIsPurged(t *testing.T) {
	m, env := testModelWithSize(t, userSession(), 120, 40)
	env.backend.On("Me", "tok-alice").Return(nil, errors.E(errors.KindAuth, "token expired"))

	cmd := m.Init()
	m.Update(cmd())

	assert.False(t, m.verifying)
	assert.Nil(t, m.Session())
	assert.Equal(t, RouteLogin, m.Route())

	stored, err := env.store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored, "rejected token should be removed from disk")
}

func TestIdentity_ForReplacedTokenIsDropped(t *testing.T) {
	m, _ := signedIn(t)

	m.Update(IdentityMsg{Token: "old-token", Err: errors.E(errors.KindAuth, "expired"), Purpose: identityRefresh})

	require.NotNil(t, m.Session())
	assert.Equal(t, RouteChats, m.Route())
}

func TestIdentity_RefreshNetworkErrorKeepsSession(t *testing.T) {
	m, _ := signedIn(t)

	m.Update(IdentityMsg{Token: "tok-alice", Err: errors.E(errors.KindNetwork, "offline"), Purpose: identityRefresh})

	require.NotNil(t, m.Session())
	assert.Equal(t, RouteChats, m.Route())
}
