package app

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/config"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/transcript"
	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// Notices shown when the session ends without the user asking.
const (
	noticeSessionExpired = "Session expired. Please sign in again."
	noticeNotMember      = "You are no longer a member of this chat."
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// Model is the main application model
type Model struct {
	config  *config.Config
	backend Backend
	dialer  Dialer
	store   *session.Store
	session *session.Session
	version string
	log     *slog.Logger

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat
	admin   *ui.AdminPanel
	modal   *ui.Modal

	width  int
	height int
	focus  Focus
	route  Route

	// verifying is true while the stored token is checked at startup
	verifying bool

	auth authMachine

	// sessionGen increments whenever the token changes; chat list and
	// admin results from an earlier token are dropped.
	sessionGen int

	// Active chat window state. chatGen increments on every activation and
	// teardown; results and timers carrying an older generation are dropped.
	chatGen    int
	transcript *transcript.Transcript
	liveConn   live.Channel
	chatRole   string
	members    []api.Member
	allRead    bool
	noticeGen  int

	popup *ui.DeletePopup

	now func() time.Time
}

// New creates a new application model. The stored session, if any, is
// checked against the backend by Init.
func New(cfg *config.Config, deps Deps, version string) *Model {
	if theme := cfg.GetTheme(); theme != "" {
		ui.SetThemeByName(theme)
	}

	m := &Model{
		config:  cfg,
		backend: deps.Backend,
		dialer:  deps.Dialer,
		store:   deps.Store,
		version: version,
		log:     logger.WithComponent("app"),
		header:  ui.NewHeader(),
		footer:  ui.NewFooter(),
		sidebar: ui.NewSidebar(),
		chat:    ui.NewChat(),
		admin:   ui.NewAdminPanel(),
		modal:   ui.NewModal(),
		focus:   FocusSidebar,
		route:   RouteLogin,
		now:     time.Now,
	}
	m.chat.SetAssetResolver(deps.Backend.AssetURL)

	if deps.Store != nil {
		sess, err := deps.Store.Load()
		if err != nil {
			m.log.Warn("failed to load stored session", "error", err)
		}
		m.session = sess
	}
	m.sidebar.SetFocused(true)

	return m
}

// Session returns the current session, nil when signed out.
func (m *Model) Session() *session.Session {
	return m.session
}

// Route returns the current screen.
func (m *Model) Route() Route {
	return m.route
}

// Init returns the startup command: the identity check for a stored token,
// or the login form.
func (m *Model) Init() tea.Cmd {
	if m.session.Valid() {
		m.verifying = true
		m.log.Info("verifying stored session")
		return m.fetchIdentity(identityStartup)
	}
	return m.navigate(RouteLogin)
}

// Close releases the live connection. Called when the program exits.
func (m *Model) Close() {
	m.closeLive()
}

// setRoute changes the screen with logging
func (m *Model) setRoute(route Route) {
	if m.route != route {
		m.log.Debug("route transition", "from", m.route, "to", route)
	}
	m.route = route
}

// navigate resolves a requested route through the guard and shows it.
func (m *Model) navigate(requested Route) tea.Cmd {
	route := Resolve(requested, m.session)
	m.setRoute(route)
	m.popup = nil

	switch route {
	case RouteLogin:
		return m.showLogin("")
	case RouteRegister:
		m.showRegister()
		return nil
	case RouteAdmin:
		m.modal.Hide()
		m.applyIdentity()
		m.teardownChat()
		return m.loadAdmin()
	default:
		m.modal.Hide()
		m.applyIdentity()
		m.setFocus(FocusSidebar)
		return m.startChatList()
	}
}

// saveSession persists the session, logging failures.
func (m *Model) saveSession() {
	if m.store == nil || !m.session.Valid() {
		return
	}
	if err := m.store.Save(m.session); err != nil {
		m.log.Error("failed to save session", "error", err)
	}
}

// purgeSession forgets the token in memory and on disk and resets every
// screen that depends on it.
func (m *Model) purgeSession() {
	m.teardownChat()
	m.session = nil
	m.sessionGen++
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.log.Error("failed to clear stored session", "error", err)
		}
	}
	m.sidebar.Reset()
	m.admin.Reset()
	m.applyIdentity()
}

// forceReload ends the session without the user asking: the live channel
// closes, the session is purged and the login form is shown with notice.
func (m *Model) forceReload(notice string) tea.Cmd {
	m.log.Warn("forced reload", "reason", notice)
	m.verifying = false
	m.purgeSession()
	m.setRoute(RouteLogin)
	m.popup = nil
	return tea.Batch(m.showLogin(notice), m.ShowFlashWarning(notice))
}

// logout ends the session at the user's request. The backend call is best
// effort and runs after the local state is gone.
func (m *Model) logout() tea.Cmd {
	sess := m.session
	backend := m.backend
	m.log.Info("logging out")
	m.purgeSession()
	m.setRoute(RouteLogin)
	m.popup = nil

	cmds := []tea.Cmd{m.showLogin(""), m.ShowFlashInfo("Logged out")}
	if sess.Valid() {
		cmds = append(cmds, func() tea.Msg {
			return LoggedOutMsg{Err: backend.Logout(context.Background(), sess)}
		})
	}
	return tea.Batch(cmds...)
}

// setFocus moves keyboard focus between the chat list and the chat window
func (m *Model) setFocus(f Focus) {
	if f == FocusChat && !m.chat.HasChat() {
		f = FocusSidebar
	}
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
}

// toggleFocus switches focus between sidebar and chat
func (m *Model) toggleFocus() {
	if m.focus == FocusSidebar {
		m.setFocus(FocusChat)
	} else {
		m.chat.StopBrowsing()
		m.setFocus(FocusSidebar)
	}
}

// showHelp opens the shortcut list sized to the terminal
func (m *Model) showHelp() {
	state := modals.NewHelpStateFromSections(m.helpSections())
	state.SetSize(m.width, m.height)
	m.modal.Show(state)
}

// cycleTheme switches to the next theme and remembers it
func (m *Model) cycleTheme() tea.Cmd {
	next := ui.NextTheme(ui.CurrentThemeName())
	ui.SetTheme(next)
	m.config.SetTheme(string(next))
	// Transcript lines cache styled text
	if m.transcript != nil {
		m.chat.SetMessages(m.transcript.Messages())
	}
	if cmd := m.saveConfigOrFlash(); cmd != nil {
		return cmd
	}
	return m.ShowFlashInfo("Theme: " + string(next))
}
