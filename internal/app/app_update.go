package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// Update handles messages. This is the core Bubble Tea update function that routes
// all messages to appropriate handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.PasteStartMsg:
		if m.route == RouteChats && m.focus == FocusChat && !m.modal.IsVisible() {
			return m, m.pasteImage()
		}
		return m, nil

	case tea.KeyPressMsg:
		if result, cmd := m.handleKeyPress(msg); result != nil {
			return result, cmd
		}
		// Key not handled by handleKeyPress, let it fall through to focused panel

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		if cmd, handled := m.handleMouse(msg); handled {
			return m, cmd
		}

	// Guard and auth
	case IdentityMsg:
		return m.handleIdentityMsg(msg)
	case LoginResultMsg:
		return m.handleLoginResult(msg)
	case RegisterResultMsg:
		return m.handleRegisterResult(msg)
	case AuthTimerMsg:
		return m.handleAuthTimer(msg)
	case LoggedOutMsg:
		if msg.Err != nil {
			m.log.Warn("logout request failed", "error", msg.Err)
		}
		return m, nil

	// Chat list
	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg)
	case ChatListTickMsg:
		return m.handleChatListTick(msg)
	case ChatCreatedMsg:
		return m.handleChatCreated(msg)

	// Chat window
	case HistoryMsg:
		return m.handleHistory(msg)
	case RoleMsg:
		return m.handleRole(msg)
	case MembersMsg:
		return m.handleMembers(msg)
	case ChatInfoMsg:
		return m.handleChatInfo(msg)
	case LiveOpenedMsg:
		return m.handleLiveOpened(msg)
	case LiveEventMsg:
		return m.handleLiveEvent(msg)
	case LiveClosedMsg:
		return m.handleLiveClosed(msg)
	case MembershipTickMsg:
		return m.handleMembershipTick(msg)
	case MembershipMsg:
		return m.handleMembership(msg)
	case AllReadNoticeDoneMsg:
		return m.handleAllReadNoticeDone(msg)
	case UploadDoneMsg:
		return m.handleUploadDone(msg)
	case ClipboardImageMsg:
		return m.handleClipboardImage(msg)
	case ReactionMsg:
		return m.handleReaction(msg)
	case MessageDeletedMsg:
		return m.handleMessageDeleted(msg)
	case ui.MessageDoubleClickedMsg:
		m.openDeletePopup(msg)
		return m, nil

	// Moderation and profiles
	case ModerationMsg:
		return m.handleModeration(msg)
	case UserSearchMsg:
		return m.handleUserSearch(msg)
	case ProfileMsg:
		return m.handleProfile(msg)
	case ProfileSavedMsg:
		return m.handleProfileSaved(msg)
	case AvatarUploadedMsg:
		return m.handleAvatarUploaded(msg)

	// Admin
	case AdminStatsMsg:
		return m.handleAdminStats(msg)
	case AdminUsersMsg:
		return m.handleAdminUsers(msg)
	case AdminChatsMsg:
		return m.handleAdminChats(msg)
	case AdminMessagesMsg:
		return m.handleAdminMessages(msg)
	case UserUpdatedMsg:
		return m.handleUserUpdated(msg)
	case UserDeletedMsg:
		return m.handleUserDeleted(msg)
	}

	// Handle tick messages - both panels need these regardless of focus
	if cmd, handled := m.handleTickMessages(msg); handled {
		return m, cmd
	}

	// Update modal
	if m.modal.IsVisible() {
		modal, cmd := m.modal.Update(msg)
		m.modal = modal
		return m, cmd
	}

	switch m.route {
	case RouteAdmin:
		admin, cmd := m.admin.Update(msg)
		m.admin = admin
		cmds = append(cmds, cmd)
	case RouteChats:
		// Update focused panel for other messages
		if m.focus == FocusSidebar {
			sidebar, cmd := m.sidebar.Update(msg)
			m.sidebar = sidebar
			cmds = append(cmds, cmd)
		} else {
			chat, cmd := m.chat.Update(msg)
			m.chat = chat
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleTickMessages handles flash and selection timers
func (m *Model) handleTickMessages(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ui.FlashTickMsg:
		// Check if flash message has expired
		if m.footer.ClearIfExpired() {
			return nil, true
		}
		// Flash still active, continue ticking
		if m.footer.HasFlash() {
			return ui.FlashTick(), true
		}
		return nil, true
	case ui.SelectionFlashTickMsg:
		chat, cmd := m.chat.Update(msg)
		m.chat = chat
		return cmd, true
	case ui.ClipboardErrorMsg:
		m.log.Warn("clipboard write failed", "error", msg.Error)
		return m.ShowFlashError("Failed to copy to clipboard"), true
	}
	return nil, false
}

// handleKeyPress handles all keyboard input.
// Returns (model, cmd) if the key was handled, or (nil, nil) if it should fall through
// to the focused panel for handling.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ctrl+c always quits
	if key == "ctrl+c" {
		m.closeLive()
		return m, tea.Quit
	}

	if m.verifying {
		return m, nil
	}

	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	switch m.route {
	case RouteAdmin:
		return m.handleAdminScreenKey(msg)
	case RouteChats:
		return m.handleChatsKey(msg)
	}
	return nil, nil
}

// handleAdminScreenKey handles global keys on the admin screen, then passes
// the rest to the panel.
func (m *Model) handleAdminScreenKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if !m.admin.IsSearchMode() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "ctrl+t":
			return m, m.cycleTheme()
		case "ctrl+l":
			return shortcutLogout(m)
		}
	}
	return m.handleAdminKey(msg)
}

// handleChatsKey handles keys on the chats screen.
func (m *Model) handleChatsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.popup != nil {
		return m.handlePopupKey(key)
	}

	// Handle chat-focused keys when chat is focused with an open chat
	if m.focus == FocusChat && m.chat.HasChat() {
		if result, cmd, handled := m.handleChatFocusedKeys(msg); handled {
			return result, cmd
		}
	}

	// Try executing from shortcut registry
	if result, cmd, handled := m.ExecuteShortcut(key); handled {
		return result, cmd
	}

	// Key not handled - return nil to signal it should fall through to focused panel
	return nil, nil
}

// handleChatFocusedKeys handles keys when the chat panel is focused
func (m *Model) handleChatFocusedKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()

	if m.chat.IsBrowsing() {
		switch key {
		case "esc", "enter":
			m.chat.StopBrowsing()
			return m, nil, true
		case "l":
			return m, m.toggleLike(), true
		case "u":
			return m, m.showAuthorProfile(), true
		case "d":
			m.openDeletePopupForSelected()
			return m, nil, true
		case "y":
			return m, m.copySelected(), true
		}
		return m, nil, false
	}

	switch key {
	case "enter":
		return m, m.sendMessage(), true
	case "ctrl+v":
		// Fallback for terminals that send raw key presses instead of a paste
		return m, m.pasteImage(), true
	case "esc":
		if m.chat.HasTextSelection() {
			m.chat.SelectionClear()
			return m, nil, true
		}
	case "up":
		if m.chat.GetInput() == "" && m.chat.StartBrowsing() {
			return m, nil, true
		}
	}
	return m, nil, false
}

// handleModalKey routes a key to the visible modal's handler.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch s := m.modal.State.(type) {
	case *modals.LoginState, *modals.RegisterState:
		return m.handleAuthKey(msg)
	case *modals.CreateChatState:
		return m.handleCreateChatModal(key, msg, s)
	case *modals.ChatInfoState:
		return m.handleChatInfoModal(key, msg, s)
	case *modals.RenameChatState:
		return m.handleRenameModal(key, msg, s)
	case *modals.AddMemberState:
		return m.handleAddMemberModal(key, msg, s)
	case *modals.ConfirmState:
		return m.handleConfirmModal(key, s)
	case *modals.PathPickerState:
		return m.handlePathPickerModal(key, msg, s)
	case *modals.ProfileState:
		return m.handleProfileModal(key, msg, s)
	case *modals.UserProfileState:
		switch key {
		case "esc", "enter", "q":
			m.modal.Hide()
		}
		return m, nil
	case *modals.EditUserState:
		return m.handleEditUserModal(key, msg, s)
	case *modals.HelpState:
		return m.handleHelpModal(key, msg, s)
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// handleHelpModal closes the help modal, or runs the highlighted shortcut on Enter.
func (m *Model) handleHelpModal(key string, msg tea.KeyPressMsg, s *modals.HelpState) (tea.Model, tea.Cmd) {
	if !s.IsFiltering() {
		switch key {
		case "esc", "q", "?":
			m.modal.Hide()
			return m, nil
		case "enter":
			sel := s.GetSelectedShortcut()
			if sel == nil {
				return m, nil
			}
			m.modal.Hide()
			if sc, ok := shortcutForHelpKey(sel.Key); ok && m.isShortcutApplicable(sc) {
				return sc.Handler(m)
			}
			return m, nil
		}
	}
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}
