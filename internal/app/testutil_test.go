package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/mock"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/config"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/keys"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
)

func TestMain(m *testing.M) {
	logger.Reset()
	if err := logger.Init(os.DevNull); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return &config.Config{ServerURL: "http://localhost:8000"}
}

// =============================================================================
// Backend mock
// =============================================================================

type mockBackend struct {
	mock.Mock
}

// ret returns args[i] as T, or the zero value when nil was configured.
func ret[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

func (b *mockBackend) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	args := b.Called(email, password)
	return ret[*api.LoginResult](args, 0), args.Error(1)
}

func (b *mockBackend) Register(ctx context.Context, email, username, password string) error {
	return b.Called(email, username, password).Error(0)
}

func (b *mockBackend) Me(ctx context.Context, s *session.Session) (*api.Me, error) {
	args := b.Called(s.Token)
	return ret[*api.Me](args, 0), args.Error(1)
}

func (b *mockBackend) Logout(ctx context.Context, s *session.Session) error {
	return b.Called(s.Token).Error(0)
}

func (b *mockBackend) Chats(ctx context.Context, s *session.Session) (*api.ChatList, error) {
	args := b.Called()
	return ret[*api.ChatList](args, 0), args.Error(1)
}

func (b *mockBackend) CreateGroup(ctx context.Context, s *session.Session, name string) (*api.Chat, error) {
	args := b.Called(name)
	return ret[*api.Chat](args, 0), args.Error(1)
}

func (b *mockBackend) CreatePersonal(ctx context.Context, s *session.Session, username string) (*api.Chat, error) {
	args := b.Called(username)
	return ret[*api.Chat](args, 0), args.Error(1)
}

func (b *mockBackend) ChatInfo(ctx context.Context, s *session.Session, chatID int) (*api.ChatInfo, error) {
	args := b.Called(chatID)
	return ret[*api.ChatInfo](args, 0), args.Error(1)
}

func (b *mockBackend) Members(ctx context.Context, s *session.Session, chatID int) ([]api.Member, error) {
	args := b.Called(chatID)
	return ret[[]api.Member](args, 0), args.Error(1)
}

func (b *mockBackend) Role(ctx context.Context, s *session.Session, chatID int) (string, error) {
	args := b.Called(chatID)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) IsMember(ctx context.Context, s *session.Session, chatID int) (bool, error) {
	args := b.Called(chatID)
	return args.Bool(0), args.Error(1)
}

func (b *mockBackend) AddMember(ctx context.Context, s *session.Session, chatID int, username string) error {
	return b.Called(chatID, username).Error(0)
}

func (b *mockBackend) RemoveMember(ctx context.Context, s *session.Session, chatID int, username string) error {
	return b.Called(chatID, username).Error(0)
}

func (b *mockBackend) RenameChat(ctx context.Context, s *session.Session, chatID int, name string) (string, error) {
	args := b.Called(chatID, name)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) DeleteChat(ctx context.Context, s *session.Session, chatID int) error {
	return b.Called(chatID).Error(0)
}

func (b *mockBackend) LeaveChat(ctx context.Context, s *session.Session, chatID int) error {
	return b.Called(chatID).Error(0)
}

func (b *mockBackend) UploadChatPhoto(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (string, error) {
	args := b.Called(chatID, filename)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) Messages(ctx context.Context, s *session.Session, chatID int) ([]api.Message, error) {
	args := b.Called(chatID)
	return ret[[]api.Message](args, 0), args.Error(1)
}

func (b *mockBackend) UploadFile(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (*api.Upload, error) {
	args := b.Called(chatID, filename)
	return ret[*api.Upload](args, 0), args.Error(1)
}

func (b *mockBackend) DeleteMessage(ctx context.Context, s *session.Session, messageID int) error {
	return b.Called(messageID).Error(0)
}

func (b *mockBackend) ClearHistory(ctx context.Context, s *session.Session, chatID int) error {
	return b.Called(chatID).Error(0)
}

func (b *mockBackend) ToggleReaction(ctx context.Context, s *session.Session, messageID int, reaction string) ([]api.Reaction, error) {
	args := b.Called(messageID, reaction)
	return ret[[]api.Reaction](args, 0), args.Error(1)
}

func (b *mockBackend) SearchUsers(ctx context.Context, s *session.Session, query string) ([]api.UserSummary, error) {
	args := b.Called(query)
	return ret[[]api.UserSummary](args, 0), args.Error(1)
}

func (b *mockBackend) Profile(ctx context.Context, s *session.Session, username string) (*api.Profile, error) {
	args := b.Called(username)
	return ret[*api.Profile](args, 0), args.Error(1)
}

func (b *mockBackend) UpdateUsername(ctx context.Context, s *session.Session, username string) (string, error) {
	args := b.Called(username)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) UpdateDescription(ctx context.Context, s *session.Session, description string) (string, error) {
	args := b.Called(description)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) UploadAvatar(ctx context.Context, s *session.Session, filename string, r io.Reader) (string, error) {
	args := b.Called(filename)
	return args.String(0), args.Error(1)
}

func (b *mockBackend) Statistics(ctx context.Context, s *session.Session) (*api.Stats, error) {
	args := b.Called()
	return ret[*api.Stats](args, 0), args.Error(1)
}

func (b *mockBackend) AdminUsers(ctx context.Context, s *session.Session) ([]api.AdminUser, error) {
	args := b.Called()
	return ret[[]api.AdminUser](args, 0), args.Error(1)
}

func (b *mockBackend) AdminChats(ctx context.Context, s *session.Session) ([]api.AdminChat, error) {
	args := b.Called()
	return ret[[]api.AdminChat](args, 0), args.Error(1)
}

func (b *mockBackend) AdminMessages(ctx context.Context, s *session.Session) ([]api.AdminMessage, error) {
	args := b.Called()
	return ret[[]api.AdminMessage](args, 0), args.Error(1)
}

func (b *mockBackend) UpdateUser(ctx context.Context, s *session.Session, userID int, upd api.UserUpdate) (*api.AdminUser, error) {
	args := b.Called(userID, upd)
	return ret[*api.AdminUser](args, 0), args.Error(1)
}

func (b *mockBackend) DeleteUser(ctx context.Context, s *session.Session, userID int) error {
	return b.Called(userID).Error(0)
}

func (b *mockBackend) AssetURL(ref string) string {
	return ref
}

// =============================================================================
// Live channel fakes
// =============================================================================

// fakeChannel records what the app sends and lets tests push events.
type fakeChannel struct {
	chatID int
	events chan live.Event

	mu     sync.Mutex
	sent   []live.Outbound
	closed bool
	err    error
}

func newFakeChannel(chatID int) *fakeChannel {
	return &fakeChannel{chatID: chatID, events: make(chan live.Event, 16)}
}

func (c *fakeChannel) ChatID() int                { return c.chatID }
func (c *fakeChannel) Events() <-chan live.Event { return c.events }
func (c *fakeChannel) Err() error                 { return c.err }

func (c *fakeChannel) Send(p live.Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.E(errors.KindNetwork, "closed")
	}
	c.sent = append(c.sent, p)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

func (c *fakeChannel) Sent() []live.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]live.Outbound(nil), c.sent...)
}

func (c *fakeChannel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeDialer hands out a new fakeChannel per dial and remembers them all.
type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	err      error
}

func (d *fakeDialer) Dial(ctx context.Context, chatID int, token string) (live.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	ch := newFakeChannel(chatID)
	d.channels = append(d.channels, ch)
	return ch, nil
}

// openCount returns how many dialed channels are still open.
func (d *fakeDialer) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ch := range d.channels {
		if !ch.IsClosed() {
			n++
		}
	}
	return n
}

// =============================================================================
// Model helpers
// =============================================================================

type testEnv struct {
	backend *mockBackend
	dialer  *fakeDialer
	store   *session.Store
}

func userSession() *session.Session {
	return &session.Session{Token: "tok-alice", Username: "alice", Email: "alice@example.com", Role: session.RoleUser, Confirmed: true}
}

func adminSession() *session.Session {
	return &session.Session{Token: "tok-root", Username: "root", Email: "root@example.com", Role: session.RoleAdmin, Confirmed: true}
}

// testModel creates a Model backed by mocks. A non-nil sess is stored
// before the model loads it.
func testModel(t *testing.T, sess *session.Session) (*Model, *testEnv) {
	t.Helper()
	env := &testEnv{
		backend: &mockBackend{},
		dialer:  &fakeDialer{},
		store:   session.NewStore(filepath.Join(t.TempDir(), "session.json")),
	}
	if sess != nil {
		if err := env.store.Save(sess); err != nil {
			t.Fatalf("failed to store session: %v", err)
		}
	}
	cfg := testConfig()
	cfg.SetFilePath(filepath.Join(t.TempDir(), "config.json"))
	m := New(cfg, Deps{Backend: env.backend, Dialer: env.dialer, Store: env.store}, "0.0.0-test")
	return m, env
}

// testModelWithSize creates a test Model and sets its size.
func testModelWithSize(t *testing.T, sess *session.Session, width, height int) (*Model, *testEnv) {
	t.Helper()
	m, env := testModel(t, sess)
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return m, env
}

// signedIn returns a sized model on the chats screen for a regular user.
func signedIn(t *testing.T) (*Model, *testEnv) {
	t.Helper()
	m, env := testModelWithSize(t, userSession(), 120, 40)
	m.navigate(RouteChats)
	return m, env
}

// openChat activates chat and attaches a live channel to it, the way the
// dial command's result would.
func openChat(t *testing.T, m *Model, chat api.Chat) *fakeChannel {
	t.Helper()
	m.activateChat(chat)
	ch := newFakeChannel(chat.ID)
	m.Update(LiveOpenedMsg{ChatID: chat.ID, Gen: m.chatGen, Channel: ch})
	if m.liveConn == nil {
		t.Fatal("expected live channel to be attached")
	}
	return ch
}

func groupChat(id int, name string) api.Chat {
	return api.Chat{ID: id, Name: name, Kind: api.KindGroup}
}

// keyPress creates a tea.KeyPressMsg for the given key string.
// Examples: "a", "enter", "tab", "esc", "ctrl+c", "up", "down"
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Backspace:
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlL:
		return tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}
	case keys.CtrlS:
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	case keys.CtrlT:
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	case keys.CtrlR:
		return tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	default:
		// Regular character - for single characters, set both Code and Text
		if len(key) == 1 {
			return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
		}
		return tea.KeyPressMsg{Text: key}
	}
}

// sendKey sends a key press to the model and returns the command.
func sendKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}
