package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// runBatch executes every command of a batch and feeds the results back
// into the model. It must not be used on batches that contain timers.
func runBatch(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runBatch(m, c)
		}
		return
	}
	if msg != nil {
		m.Update(msg)
	}
}

func TestNew(t *testing.T) {
	m, _ := testModel(t, nil)

	require.NotNil(t, m)
	assert.Nil(t, m.Session())
	assert.Equal(t, RouteLogin, m.Route())
	assert.Equal(t, FocusSidebar, m.focus)
	assert.Equal(t, "Loading...", m.RenderToString())
}

func TestNew_LoadsStoredSession(t *testing.T) {
	m, _ := testModel(t, userSession())

	require.NotNil(t, m.Session())
	assert.Equal(t, "tok-alice", m.Session().Token)
	assert.False(t, m.Session().Confirmed, "confirmation is never persisted")
}

func TestView_RendersChatsScreen(t *testing.T) {
	m, _ := signedIn(t)
	m.Update(ChatsLoadedMsg{Gen: m.sessionGen, List: &api.ChatList{
		Group: []api.Chat{groupChat(7, "team")},
	}})

	out := m.RenderToString()

	assert.NotEmpty(t, out)
	v := m.View()
	assert.True(t, v.AltScreen)
}

func TestCtrlC_QuitsAndClosesChannel(t *testing.T) {
	m, _ := signedIn(t)
	ch := openChat(t, m, groupChat(7, "team"))

	cmd := sendKey(m, "ctrl+c")

	require.NotNil(t, cmd)
	assert.True(t, ch.IsClosed())
	m.Close()
}

// =============================================================================
// Chat list
// =============================================================================

func TestChatsLoaded_AppliesAndSchedulesNext(t *testing.T) {
	m, _ := signedIn(t)

	_, cmd := m.Update(ChatsLoadedMsg{Gen: m.sessionGen, List: &api.ChatList{
		Personal: []api.Chat{{ID: 1, Kind: api.KindPersonal, Members: []api.Member{{Username: "alice"}, {Username: "bob"}}}},
		Group:    []api.Chat{groupChat(7, "team"), groupChat(8, "ops")},
	}})

	assert.NotNil(t, cmd, "next refresh should be scheduled")
	assert.Len(t, m.sidebar.Chats(ui.TabPersonal), 1)
	assert.Len(t, m.sidebar.Chats(ui.TabGroup), 2)
}

func TestChatsLoaded_StaleGenerationIsDropped(t *testing.T) {
	m, _ := signedIn(t)

	_, cmd := m.Update(ChatsLoadedMsg{Gen: m.sessionGen - 1, List: &api.ChatList{
		Group: []api.Chat{groupChat(7, "team")},
	}})

	assert.Nil(t, cmd)
	assert.Empty(t, m.sidebar.Chats(ui.TabGroup))
}

func TestChatsLoaded_FollowsRenameOfOpenChat(t *testing.T) {
	m, _ := signedIn(t)
	m.activateChat(groupChat(7, "team"))

	m.Update(ChatsLoadedMsg{Gen: m.sessionGen, List: &api.ChatList{
		Group: []api.Chat{groupChat(7, "core team")},
	}})

	assert.Equal(t, "core team", m.chat.ChatName())
}

func TestChatsLoaded_AuthErrorForcesReload(t *testing.T) {
	m, _ := signedIn(t)

	m.Update(ChatsLoadedMsg{Gen: m.sessionGen, Err: errors.E(errors.KindAuth, "expired")})

	assert.Nil(t, m.Session())
	assert.Equal(t, RouteLogin, m.Route())
}

func TestChatListTick_Fetches(t *testing.T) {
	m, env := signedIn(t)
	env.backend.On("Chats").Return(&api.ChatList{Group: []api.Chat{groupChat(7, "team")}}, nil)

	_, cmd := m.Update(ChatListTickMsg{Gen: m.sessionGen})
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Len(t, m.sidebar.Chats(ui.TabGroup), 1)
	env.backend.AssertExpectations(t)

	// Ticks from a previous session do nothing
	_, cmd = m.Update(ChatListTickMsg{Gen: m.sessionGen - 1})
	assert.Nil(t, cmd)
}

func TestChatCreated_OpensChat(t *testing.T) {
	m, _ := signedIn(t)
	m.showCreateChat()

	m.Update(ChatCreatedMsg{Gen: m.sessionGen, Kind: api.KindGroup, Chat: &api.Chat{ID: 9, Name: "new"}})

	assert.False(t, m.modal.IsVisible())
	assert.Equal(t, 9, m.ActiveChatID())
	_, found := m.sidebar.FindChat(9)
	assert.True(t, found)
}

func TestChatCreated_ErrorShownInModal(t *testing.T) {
	m, _ := signedIn(t)
	m.showCreateChat()

	m.Update(ChatCreatedMsg{Gen: m.sessionGen, Kind: api.KindPersonal, Err: errors.E(errors.KindNotFound, "user not found")})

	assert.True(t, m.modal.IsVisible())
	assert.Equal(t, "user not found", m.modal.GetError())
}

func TestChatCreated_AfterSessionPurgedIsDropped(t *testing.T) {
	m, _ := signedIn(t)
	m.showCreateChat()
	gen := m.sessionGen
	m.forceReload(noticeSessionExpired)
	require.Nil(t, m.Session())

	var cmd tea.Cmd
	assert.NotPanics(t, func() {
		_, cmd = m.Update(ChatCreatedMsg{Gen: gen, Kind: api.KindGroup, Chat: &api.Chat{ID: 9, Name: "new"}})
	})

	assert.Nil(t, cmd)
	assert.Equal(t, RouteLogin, m.Route())
	assert.Equal(t, 0, m.ActiveChatID())
	_, found := m.sidebar.FindChat(9)
	assert.False(t, found)
}

// =============================================================================
// Logout and forced reload
// =============================================================================

func TestLogout_ClearsEverything(t *testing.T) {
	m, env := signedIn(t)
	ch := openChat(t, m, groupChat(7, "team"))
	gen := m.sessionGen

	sendKey(m, "ctrl+l")
	confirm, ok := m.modal.State.(*modals.ConfirmState)
	require.True(t, ok)
	assert.Equal(t, modals.ConfirmLogout, confirm.Action)

	cmd := sendKey(m, "y")

	require.NotNil(t, cmd)
	assert.Nil(t, m.Session())
	assert.True(t, ch.IsClosed())
	assert.Equal(t, RouteLogin, m.Route())
	assert.Greater(t, m.sessionGen, gen)
	_, ok = m.modal.State.(*modals.LoginState)
	assert.True(t, ok)

	stored, err := env.store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLogout_CancelKeepsSession(t *testing.T) {
	m, _ := signedIn(t)

	sendKey(m, "ctrl+l")
	sendKey(m, "n")

	assert.NotNil(t, m.Session())
	assert.False(t, m.modal.IsVisible())
}

func TestForceReload_ShowsNotice(t *testing.T) {
	m, _ := signedIn(t)

	m.forceReload(noticeSessionExpired)

	login, ok := m.modal.State.(*modals.LoginState)
	require.True(t, ok)
	assert.Contains(t, login.Render(), noticeSessionExpired)
	assert.True(t, m.footer.HasFlash())
}

// =============================================================================
// Shortcuts and help
// =============================================================================

func TestShortcut_QuestionMarkOpensHelp(t *testing.T) {
	m, _ := signedIn(t)

	sendKey(m, "?")

	s, ok := m.modal.State.(*modals.HelpState)
	require.True(t, ok)
	sections := m.helpSections()
	require.NotEmpty(t, sections)
	selected := s.GetSelectedShortcut()
	require.NotNil(t, selected)
	assert.Equal(t, sections[0].Shortcuts[0].Key, selected.Key, "help lists the shortcut registry")

	sendKey(m, "esc")
	assert.False(t, m.modal.IsVisible())
}

func TestShortcut_NOpensCreateChat(t *testing.T) {
	m, _ := signedIn(t)

	sendKey(m, "n")

	_, ok := m.modal.State.(*modals.CreateChatState)
	assert.True(t, ok)
}

func TestShortcut_SidebarOnlyKeysIgnoredInChat(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	require.Equal(t, FocusChat, m.focus)

	_, _, handled := m.ExecuteShortcut("n")

	assert.False(t, handled)
	assert.False(t, m.modal.IsVisible())
}

func TestShortcut_TabTogglesFocus(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))

	sendKey(m, "tab")
	assert.Equal(t, FocusSidebar, m.focus)

	sendKey(m, "tab")
	assert.Equal(t, FocusChat, m.focus)
}

func TestShortcut_TabWithoutChatStaysOnSidebar(t *testing.T) {
	m, _ := signedIn(t)

	sendKey(m, "tab")

	assert.Equal(t, FocusSidebar, m.focus)
}

func TestHelpSections_DependOnOpenChat(t *testing.T) {
	m, _ := signedIn(t)

	titles := func() []string {
		var out []string
		for _, s := range m.helpSections() {
			out = append(out, s.Title)
		}
		return out
	}

	assert.NotContains(t, titles(), CategoryChat)
	assert.Contains(t, titles(), CategoryGeneral)

	openChat(t, m, groupChat(7, "team"))
	m.setFocus(FocusSidebar)
	assert.Contains(t, titles(), CategoryChat)
	assert.Contains(t, titles(), CategoryMessages)
}

func TestShortcutForHelpKey(t *testing.T) {
	sc, ok := shortcutForHelpKey("ctrl-t")
	require.True(t, ok)
	assert.Equal(t, "ctrl+t", sc.Key)

	sc, ok = shortcutForHelpKey("n")
	require.True(t, ok)
	assert.Equal(t, "n", sc.Key)

	_, ok = shortcutForHelpKey("Double-click")
	assert.False(t, ok)
}

func TestCycleTheme(t *testing.T) {
	prev := ui.CurrentThemeName()
	t.Cleanup(func() { ui.SetTheme(prev) })
	m, _ := signedIn(t)

	cmd := sendKey(m, "ctrl+t")

	require.NotNil(t, cmd)
	assert.NotEqual(t, prev, ui.CurrentThemeName())
	assert.Equal(t, string(ui.CurrentThemeName()), m.config.GetTheme())
}

// =============================================================================
// Message actions
// =============================================================================

func TestDeletePopup_KeyboardDeleteAndDismiss(t *testing.T) {
	m, env := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})

	m.Update(ui.MessageDoubleClickedMsg{MessageID: 3, X: 10, Y: 5})
	require.NotNil(t, m.popup)
	assert.Equal(t, 3, m.popup.MessageID)

	sendKey(m, "esc")
	assert.Nil(t, m.popup)

	m.Update(ui.MessageDoubleClickedMsg{MessageID: 3, X: 10, Y: 5})
	env.backend.On("DeleteMessage", 3).Return(nil)
	cmd := sendKey(m, "enter")
	require.NotNil(t, cmd)
	assert.Nil(t, m.popup)

	m.Update(cmd())

	_, ok := m.transcript.Find(3)
	assert.False(t, ok)
	assert.Len(t, m.chat.Messages(), 2)
	env.backend.AssertExpectations(t)
}

func TestDeletePopup_OtherKeysAreSwallowed(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})
	m.Update(ui.MessageDoubleClickedMsg{MessageID: 3, X: 10, Y: 5})

	sendKey(m, "x")

	assert.NotNil(t, m.popup)
	assert.Empty(t, m.chat.GetInput())
}

func TestDeletePopup_MouseClicks(t *testing.T) {
	m, env := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})

	// Click elsewhere dismisses
	m.Update(ui.MessageDoubleClickedMsg{MessageID: 2, X: 10, Y: 5})
	require.NotNil(t, m.popup)
	_, cmd := m.Update(tea.MouseClickMsg{X: 0, Y: 0, Button: tea.MouseLeft})
	assert.Nil(t, cmd)
	assert.Nil(t, m.popup)

	// Click inside deletes
	m.Update(ui.MessageDoubleClickedMsg{MessageID: 2, X: 10, Y: 5})
	require.NotNil(t, m.popup)
	env.backend.On("DeleteMessage", 2).Return(nil)
	_, cmd = m.Update(tea.MouseClickMsg{X: m.popup.X + 1, Y: m.popup.Y + 1, Button: tea.MouseLeft})
	require.NotNil(t, cmd)
	m.Update(cmd())

	_, ok := m.transcript.Find(2)
	assert.False(t, ok)
}

func TestDeletePopup_UnknownMessageIgnored(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))

	m.Update(ui.MessageDoubleClickedMsg{MessageID: 99, X: 10, Y: 5})

	assert.Nil(t, m.popup)
}

func TestMessageDeleted_ErrorKeepsMessage(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})

	m.Update(MessageDeletedMsg{ChatID: 7, Gen: m.chatGen, MessageID: 1, Err: errors.E(errors.KindPermission, "not your message")})

	_, ok := m.transcript.Find(1)
	assert.True(t, ok)
	assert.NotNil(t, m.Session(), "a refused delete is not a lost membership")
}

func TestBrowsing_LikeTogglesReaction(t *testing.T) {
	m, env := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})

	sendKey(m, "up")
	require.True(t, m.chat.IsBrowsing())
	sel, ok := m.chat.SelectedMessage()
	require.True(t, ok)

	likes := []api.Reaction{{UserID: 1, Username: "alice", ReactionName: api.ReactionLike}}
	env.backend.On("ToggleReaction", sel.ID, api.ReactionLike).Return(likes, nil)

	cmd := sendKey(m, "l")
	require.NotNil(t, cmd)
	m.Update(cmd())

	got, ok := m.transcript.Find(sel.ID)
	require.True(t, ok)
	assert.True(t, got.LikedBy("alice"))

	sendKey(m, "esc")
	assert.False(t, m.chat.IsBrowsing())
}

// =============================================================================
// Moderation
// =============================================================================

func TestModeration_LeaveTearsDownChat(t *testing.T) {
	m, _ := signedIn(t)
	m.Update(ChatsLoadedMsg{Gen: m.sessionGen, List: &api.ChatList{Group: []api.Chat{groupChat(7, "team")}}})
	ch := openChat(t, m, groupChat(7, "team"))

	m.Update(ModerationMsg{ChatID: 7, Action: modLeaveChat, Target: "team"})

	assert.True(t, ch.IsClosed())
	assert.Equal(t, 0, m.ActiveChatID())
	_, found := m.sidebar.FindChat(7)
	assert.False(t, found)
}

func TestModeration_RenameUpdatesOpenChat(t *testing.T) {
	m, env := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	env.backend.On("RenameChat", 7, "core").Return("core team", nil)

	cmd := m.moderate(modRename, "core", func(ctx context.Context, b Backend, s *session.Session, id int) (string, error) {
		return b.RenameChat(ctx, s, id, "core")
	})
	m.Update(cmd())

	assert.Equal(t, "core team", m.chat.ChatName())
	_, ok := m.modal.State.(*modals.ChatInfoState)
	assert.True(t, ok, "chat info reopens after a rename")
}

func TestModeration_ErrorShownInModal(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.showChatInfo()

	m.Update(ModerationMsg{ChatID: 7, Action: modAddMember, Target: "carol", Err: errors.E(errors.KindNotFound, "user not found")})

	assert.True(t, m.modal.IsVisible())
	assert.Equal(t, "user not found", m.modal.GetError())
	assert.NotNil(t, m.Session())
}

func TestModeration_ClearHistoryEmptiesTranscript(t *testing.T) {
	m, _ := signedIn(t)
	openChat(t, m, groupChat(7, "team"))
	m.Update(HistoryMsg{ChatID: 7, Gen: m.chatGen, Messages: sampleHistory()})

	m.Update(ModerationMsg{ChatID: 7, Action: modClearHistory, Target: "team"})

	assert.Equal(t, 0, m.transcript.Len())
	assert.Empty(t, m.chat.Messages())
}

func TestModerationAction_String(t *testing.T) {
	assert.Equal(t, "rename", modRename.String())
	assert.Equal(t, "leave chat", modLeaveChat.String())
}

// =============================================================================
// Admin
// =============================================================================

func adminUsers() []api.AdminUser {
	return []api.AdminUser{
		{ID: 1, Username: "root", Email: "root@example.com", Role: session.RoleAdmin},
		{ID: 2, Username: "alice", Email: "alice@example.com", Role: session.RoleUser},
		{ID: 3, Username: "bob", Email: "bob@example.com", Role: session.RoleUser},
	}
}

func TestAdmin_LoadsAllSections(t *testing.T) {
	m, env := testModelWithSize(t, adminSession(), 120, 40)
	env.backend.On("Statistics").Return(&api.Stats{TotalUsers: 3, TotalChats: 2, TotalMessages: 10}, nil)
	env.backend.On("AdminUsers").Return(adminUsers(), nil)
	env.backend.On("AdminChats").Return([]api.AdminChat{}, nil)
	env.backend.On("AdminMessages").Return(nil, errors.E(errors.KindNetwork, "timeout"))

	runBatch(m, m.navigate(RouteAdmin))

	assert.Equal(t, RouteAdmin, m.Route())
	require.NotNil(t, m.admin.Stats())
	assert.Equal(t, 3, m.admin.Stats().TotalUsers)
	assert.Len(t, m.admin.Users(), 3)
	assert.NotNil(t, m.Session(), "one failing section does not end the session")
	env.backend.AssertExpectations(t)
}

func TestAdmin_StaleResultsDropped(t *testing.T) {
	m, _ := testModelWithSize(t, adminSession(), 120, 40)
	m.navigate(RouteAdmin)

	m.Update(AdminUsersMsg{Gen: m.sessionGen - 1, Users: adminUsers()})

	assert.Empty(t, m.admin.Users())
}

func TestAdmin_ReconcilesEditAndDelete(t *testing.T) {
	m, env := testModelWithSize(t, adminSession(), 120, 40)
	m.navigate(RouteAdmin)
	m.Update(AdminUsersMsg{Gen: m.sessionGen, Users: adminUsers()})

	upd := api.UserUpdate{Username: "alice", Email: "alice@example.com", Role: session.RoleAdmin}
	env.backend.On("UpdateUser", 2, upd).Return(nil, nil)
	m.Update(m.updateUser(2, upd)())

	for _, u := range m.admin.Users() {
		if u.ID == 2 {
			assert.Equal(t, session.RoleAdmin, u.Role)
		}
	}

	env.backend.On("DeleteUser", 3).Return(nil)
	m.Update(m.deleteUser(3)())

	assert.Len(t, m.admin.Users(), 2)
	for _, u := range m.admin.Users() {
		assert.NotEqual(t, 3, u.ID)
	}
}

func TestAdmin_AuthErrorForcesReload(t *testing.T) {
	m, _ := testModelWithSize(t, adminSession(), 120, 40)
	m.navigate(RouteAdmin)

	m.Update(AdminChatsMsg{Gen: m.sessionGen, Err: errors.E(errors.KindAuth, "expired")})

	assert.Nil(t, m.Session())
	assert.Equal(t, RouteLogin, m.Route())
}

func TestAdmin_DeleteNeedsConfirmation(t *testing.T) {
	m, env := testModelWithSize(t, adminSession(), 120, 40)
	m.navigate(RouteAdmin)
	m.Update(AdminUsersMsg{Gen: m.sessionGen, Users: adminUsers()})
	m.admin.SetTab(ui.AdminTabUsers)

	sendKey(m, "d")

	confirm, ok := m.modal.State.(*modals.ConfirmState)
	require.True(t, ok)
	assert.Equal(t, modals.ConfirmDeleteUser, confirm.Action)
	env.backend.AssertNotCalled(t, "DeleteUser", mock.Anything)
}
