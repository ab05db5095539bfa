package ui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/messly/internal/api"
)

func intPtr(i int) *int { return &i }

func testChatList() api.ChatList {
	return api.ChatList{
		Personal: []api.Chat{
			{ID: 1, Kind: api.KindPersonal, UnreadCount: 2,
				Members:     []api.Member{{Username: "alice"}, {Username: "bob", Status: api.MemberOnline}},
				LastMessage: &api.LastMessage{ID: 10, Content: "hello", SenderID: intPtr(2), SenderName: "bob"}},
			{ID: 2, Kind: api.KindPersonal, UnreadCount: 5,
				Members:     []api.Member{{Username: "alice"}, {Username: "carol"}},
				LastMessage: &api.LastMessage{ID: 11, Content: "carol joined", SenderID: intPtr(api.SystemSenderID)}},
		},
		Group: []api.Chat{
			{ID: 3, Kind: api.KindGroup, Name: "Team", UnreadCount: 1,
				LastMessage: &api.LastMessage{ID: 12, Content: "standup?", SenderID: intPtr(4), SenderName: "dave"}},
			{ID: 4, Kind: api.KindGroup, Name: "Book club"},
		},
	}
}

func newTestSidebar() *Sidebar {
	s := NewSidebar()
	s.SetSize(40, 24)
	s.SetIdentity("alice")
	s.SetFocused(true)
	s.SetChats(testChatList())
	return s
}

func press(s *Sidebar, key string) *Sidebar {
	var msg tea.KeyPressMsg
	switch key {
	case "up":
		msg = tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		msg = tea.KeyPressMsg{Code: tea.KeyDown}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	s, _ = s.Update(msg)
	return s
}

func TestNewSidebar(t *testing.T) {
	sidebar := NewSidebar()

	if sidebar == nil {
		t.Fatal("NewSidebar() returned nil")
	}
	if sidebar.selectedIdx != 0 {
		t.Errorf("Expected selectedIdx 0, got %d", sidebar.selectedIdx)
	}
	if sidebar.Tab() != TabPersonal {
		t.Error("Expected personal tab first")
	}
	if sidebar.SelectedChat() != nil {
		t.Error("Empty sidebar should have no selection")
	}
}

func TestSidebar_SetSize(t *testing.T) {
	sidebar := NewSidebar()

	sidebar.SetSize(40, 24)

	if sidebar.width != 40 {
		t.Errorf("Expected width 40, got %d", sidebar.width)
	}
	if sidebar.height != 24 {
		t.Errorf("Expected height 24, got %d", sidebar.height)
	}
	if sidebar.Width() != 40 {
		t.Errorf("Width() should return 40, got %d", sidebar.Width())
	}
}

func TestSidebar_FocusState(t *testing.T) {
	sidebar := NewSidebar()
	if sidebar.IsFocused() {
		t.Error("Sidebar should not be focused initially")
	}
	sidebar.SetFocused(true)
	if !sidebar.IsFocused() {
		t.Error("Sidebar should be focused")
	}
}

func TestUnreadTotal_ExcludesSystemMessages(t *testing.T) {
	list := testChatList()

	if got := UnreadTotal(list.Personal); got != 2 {
		t.Errorf("personal badge: expected 2 (system chat excluded), got %d", got)
	}
	if got := UnreadTotal(list.Group); got != 1 {
		t.Errorf("group badge: expected 1, got %d", got)
	}
	if got := UnreadTotal(nil); got != 0 {
		t.Errorf("empty badge: expected 0, got %d", got)
	}
}

func TestUnreadTotal_NoLastMessage(t *testing.T) {
	chats := []api.Chat{{ID: 1, UnreadCount: 3}}
	if got := UnreadTotal(chats); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestSidebar_Navigation(t *testing.T) {
	s := newTestSidebar()

	if c := s.SelectedChat(); c == nil || c.ID != 1 {
		t.Fatalf("expected chat 1 selected, got %+v", c)
	}
	s = press(s, "down")
	if c := s.SelectedChat(); c.ID != 2 {
		t.Errorf("expected chat 2, got %d", c.ID)
	}
	s = press(s, "down")
	if c := s.SelectedChat(); c.ID != 2 {
		t.Errorf("selection should stop at the end, got %d", c.ID)
	}
	s = press(s, "k")
	if c := s.SelectedChat(); c.ID != 1 {
		t.Errorf("expected chat 1, got %d", c.ID)
	}
}

func TestSidebar_Tabs(t *testing.T) {
	s := newTestSidebar()

	s = press(s, "]")
	if s.Tab() != TabGroup {
		t.Fatal("] should switch to groups")
	}
	if c := s.SelectedChat(); c == nil || c.ID != 3 {
		t.Errorf("expected first group selected, got %+v", c)
	}
	s = press(s, "[")
	if s.Tab() != TabPersonal {
		t.Error("[ should switch to personal")
	}

	s.ToggleTab()
	if s.Tab() != TabGroup {
		t.Error("ToggleTab should switch to groups")
	}
}

func TestSidebar_IgnoresKeysWhenUnfocused(t *testing.T) {
	s := newTestSidebar()
	s.SetFocused(false)
	s = press(s, "down")
	if c := s.SelectedChat(); c.ID != 1 {
		t.Error("unfocused sidebar should ignore keys")
	}
}

func TestSidebar_SetChatsPreservesSelection(t *testing.T) {
	s := newTestSidebar()
	s = press(s, "down") // chat 2

	list := testChatList()
	// A new chat arrives at the top
	list.Personal = append([]api.Chat{{ID: 9, Kind: api.KindPersonal, Members: []api.Member{{Username: "erin"}}}}, list.Personal...)
	s.SetChats(list)

	if c := s.SelectedChat(); c == nil || c.ID != 2 {
		t.Errorf("selection should follow chat 2, got %+v", c)
	}

	// The selected chat disappears
	list.Personal = list.Personal[:1]
	s.SetChats(list)
	if c := s.SelectedChat(); c == nil || c.ID != 9 {
		t.Errorf("selection should clamp, got %+v", c)
	}
}

func TestSidebar_AppendChat(t *testing.T) {
	s := newTestSidebar()

	s.AppendChat(api.Chat{ID: 20, Kind: api.KindGroup, Name: "New group"})
	if s.Tab() != TabGroup {
		t.Error("appending a group should switch to the group tab")
	}
	if c := s.SelectedChat(); c == nil || c.ID != 20 {
		t.Errorf("new chat should be selected, got %+v", c)
	}
	if len(s.Chats(TabGroup)) != 3 {
		t.Errorf("expected 3 groups, got %d", len(s.Chats(TabGroup)))
	}

	// Appending an existing chat only selects it
	s.AppendChat(api.Chat{ID: 1, Kind: api.KindPersonal})
	if len(s.Chats(TabPersonal)) != 2 {
		t.Error("existing chat should not be duplicated")
	}
	if s.Tab() != TabPersonal || s.SelectedChat().ID != 1 {
		t.Error("existing chat should be selected")
	}
}

func TestSidebar_RemoveChat(t *testing.T) {
	s := newTestSidebar()
	s.SetActive(2)
	s.RemoveChat(2)

	if _, ok := s.FindChat(2); ok {
		t.Error("chat 2 should be gone")
	}
	if s.ActiveID() != 0 {
		t.Error("removing the active chat should clear it")
	}
}

func TestSidebar_SelectChatSwitchesTab(t *testing.T) {
	s := newTestSidebar()

	if !s.SelectChat(4) {
		t.Fatal("chat 4 should be found")
	}
	if s.Tab() != TabGroup || s.SelectedChat().ID != 4 {
		t.Error("SelectChat should switch to the chat's tab")
	}
	if s.SelectChat(99) {
		t.Error("unknown chat should not be found")
	}
}

func TestSidebar_Filter(t *testing.T) {
	s := newTestSidebar()
	s.EnterSearchMode()

	if !s.IsSearchMode() {
		t.Fatal("expected search mode")
	}
	s = press(s, "c")
	s = press(s, "a")
	if s.GetSearchQuery() != "ca" {
		t.Errorf("expected query %q, got %q", "ca", s.GetSearchQuery())
	}
	if c := s.SelectedChat(); c == nil || c.ID != 2 {
		t.Errorf("filter should match carol, got %+v", c)
	}

	// Enter keeps the filter
	s = press(s, "enter")
	if s.IsSearchMode() || !s.HasFilter() {
		t.Error("enter should leave search mode with the filter applied")
	}

	s.EnterSearchMode()
	s = press(s, "esc")
	if s.HasFilter() || s.IsSearchMode() {
		t.Error("esc should clear the filter")
	}
	if len(s.visibleChats()) != 2 {
		t.Error("all chats should be visible again")
	}
}

func TestSidebar_FilterIsCaseInsensitive(t *testing.T) {
	s := newTestSidebar()
	s.SetTab(TabGroup)
	s.applyFilter("BOOK")

	chats := s.visibleChats()
	if len(chats) != 1 || chats[0].ID != 4 {
		t.Errorf("expected Book club, got %+v", chats)
	}
}

func TestSidebar_Preview(t *testing.T) {
	s := newTestSidebar()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	group := api.Chat{Kind: api.KindGroup, LastMessage: &api.LastMessage{
		ID: 1, Content: "multi\nline", SenderID: intPtr(4), SenderName: "alice",
		SentAt: api.Timestamp{Time: now.Add(-5 * time.Minute)}}}
	got := s.preview(group)
	if !strings.HasPrefix(got, "You: multi line") {
		t.Errorf("unexpected preview %q", got)
	}
	if !strings.Contains(got, "5 minutes ago") {
		t.Errorf("expected humanized time in %q", got)
	}

	if got := s.preview(api.Chat{}); got != "No messages yet" {
		t.Errorf("empty chat preview: %q", got)
	}
}

func TestSidebar_View(t *testing.T) {
	s := newTestSidebar()
	view := ansi.Strip(s.View())

	for _, want := range []string{"Personal 2", "Groups 1", "bob", "carol", "hello"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestSidebar_ViewStates(t *testing.T) {
	s := NewSidebar()
	s.SetSize(40, 24)
	if !strings.Contains(ansi.Strip(s.View()), "Loading chats") {
		t.Error("expected loading state before the first list")
	}

	s.SetChats(api.ChatList{})
	if !strings.Contains(ansi.Strip(s.View()), "No chats yet") {
		t.Error("expected empty state")
	}

	s.SetChats(testChatList())
	s.applyFilter("zzz")
	if !strings.Contains(ansi.Strip(s.View()), "No matches") {
		t.Error("expected no-match state")
	}
}

func TestSidebar_Reset(t *testing.T) {
	s := newTestSidebar()
	s.SetActive(1)
	s.SetTab(TabGroup)
	s.Reset()

	if s.IsLoaded() || s.ActiveID() != 0 || s.Tab() != TabPersonal || len(s.Chats(TabPersonal)) != 0 {
		t.Error("Reset should forget everything")
	}
}
