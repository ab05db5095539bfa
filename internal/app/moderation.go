package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/clipboard"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// moderationAction names a chat membership or moderation call.
type moderationAction int

const (
	modRename moderationAction = iota
	modPhoto
	modAddMember
	modRemoveMember
	modClearHistory
	modDeleteChat
	modLeaveChat
)

func (a moderationAction) String() string {
	switch a {
	case modRename:
		return "rename"
	case modPhoto:
		return "photo"
	case modAddMember:
		return "add member"
	case modRemoveMember:
		return "remove member"
	case modClearHistory:
		return "clear history"
	case modDeleteChat:
		return "delete chat"
	case modLeaveChat:
		return "leave chat"
	default:
		return "unknown"
	}
}

// moderationCall performs one moderation request. The returned string is the
// server's echo of the change (new name, photo reference), if any.
type moderationCall func(ctx context.Context, b Backend, s *session.Session, chatID int) (string, error)

// moderate runs call against the open chat and reports a ModerationMsg.
func (m *Model) moderate(action moderationAction, target string, call moderationCall) tea.Cmd {
	if m.transcript == nil {
		return nil
	}
	sess, backend := m.session, m.backend
	chatID := m.transcript.ChatID()
	logger.WithChat(chatID).Info("moderation", "action", action, "target", target)
	return func() tea.Msg {
		echo, err := call(context.Background(), backend, sess, chatID)
		if echo != "" {
			target = echo
		}
		return ModerationMsg{ChatID: chatID, Action: action, Target: target, Err: err}
	}
}

// =============================================================================
// Chat popup
// =============================================================================

// showChatInfo opens the chat popup for the open chat and refreshes it.
func (m *Model) showChatInfo() tea.Cmd {
	if m.transcript == nil {
		return nil
	}
	state := modals.NewChatInfoState(
		m.transcript.ChatID(), m.chat.Kind(), m.chat.ChatName(),
		m.session.Username, m.IsChatAdmin(), m.members,
	)
	m.modal.Show(state)
	return tea.Batch(m.fetchChatInfo(), m.fetchMembers())
}

// showSelectedInfo opens the popup for the sidebar's selected chat: the
// peer's profile for a personal chat, the chat popup for a group.
func (m *Model) showSelectedInfo() tea.Cmd {
	chat := m.sidebar.SelectedChat()
	if chat == nil {
		return nil
	}
	if chat.Kind == api.KindPersonal {
		peer, ok := chat.Peer(m.session.Username)
		if !ok {
			return m.ShowFlashWarning("This user no longer exists")
		}
		return m.showUserProfile(peer.Username)
	}

	var cmd tea.Cmd
	if m.ActiveChatID() != chat.ID {
		cmd = m.activateChat(*chat)
	}
	return tea.Batch(cmd, m.showChatInfo())
}

// refreshChatInfoModal pushes fresh members and chat info into a visible
// chat popup.
func (m *Model) refreshChatInfoModal(info *api.ChatInfo) {
	s, ok := m.modal.State.(*modals.ChatInfoState)
	if !ok || m.transcript == nil || s.ChatID != m.transcript.ChatID() {
		return
	}
	s.IsAdmin = m.IsChatAdmin()
	if info != nil {
		s.SetInfo(*info, m.backend.AssetURL(info.Photo))
		return
	}
	s.SetMembers(m.members)
}

func (m *Model) handleChatInfoModal(key string, msg tea.KeyPressMsg, s *modals.ChatInfoState) (tea.Model, tea.Cmd) {
	if key == "esc" {
		m.modal.Hide()
		return m, nil
	}
	// Role may have arrived after the popup opened
	s.IsAdmin = m.IsChatAdmin()

	switch s.ActionFor(key) {
	case modals.ActionRename:
		m.modal.Show(modals.NewRenameChatState(s.ChatID, s.Name))
		return m, nil
	case modals.ActionPhoto:
		m.modal.Show(modals.NewPathPickerState(modals.PickChatPhoto, s.ChatID))
		return m, nil
	case modals.ActionAddMember:
		m.modal.Show(modals.NewAddMemberState(s.ChatID, s.Members))
		return m, nil
	case modals.ActionRemoveMember:
		member, _ := s.SelectedMember()
		m.modal.Show(modals.NewConfirmState(modals.ConfirmRemoveMember, s.ChatID, member.Username,
			fmt.Sprintf("Remove %s from %s?", member.Username, s.Title())))
		return m, nil
	case modals.ActionClearHistory:
		m.modal.Show(modals.NewConfirmState(modals.ConfirmClearHistory, s.ChatID, s.Title(),
			"Delete every message in "+s.Title()+" for all members?"))
		return m, nil
	case modals.ActionDeleteChat:
		m.modal.Show(modals.NewConfirmState(modals.ConfirmDeleteChat, s.ChatID, s.Title(),
			"Delete "+s.Title()+" and its history? This cannot be undone."))
		return m, nil
	case modals.ActionLeaveChat:
		m.modal.Show(modals.NewConfirmState(modals.ConfirmLeaveChat, s.ChatID, s.Title(),
			"Leave "+s.Title()+"?"))
		return m, nil
	case modals.ActionViewMember:
		member, _ := s.SelectedMember()
		return m, m.showUserProfile(member.Username)
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) handleRenameModal(key string, msg tea.KeyPressMsg, s *modals.RenameChatState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		return m, m.showChatInfo()
	case "enter":
		if err := s.Validate(); err != nil {
			m.modal.SetError(errors.Message(err))
			return m, nil
		}
		name := s.Name()
		return m, m.moderate(modRename, name, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return b.RenameChat(ctx, sess, id, name)
		})
	}
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) handleAddMemberModal(key string, msg tea.KeyPressMsg, s *modals.AddMemberState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		return m, m.showChatInfo()
	case "enter":
		username := s.Selected()
		if username == "" {
			m.modal.SetError("Type a username")
			return m, nil
		}
		return m, m.moderate(modAddMember, username, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return "", b.AddMember(ctx, sess, id, username)
		})
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	if s.QueryChanged() && s.Query() != "" {
		return m, tea.Batch(cmd, m.searchUsers(s.Query()))
	}
	return m, cmd
}

func (m *Model) searchUsers(query string) tea.Cmd {
	sess, backend := m.session, m.backend
	return func() tea.Msg {
		results, err := backend.SearchUsers(context.Background(), sess, query)
		return UserSearchMsg{Query: query, Results: results, Err: err}
	}
}

func (m *Model) handleUserSearch(msg UserSearchMsg) (tea.Model, tea.Cmd) {
	s, ok := m.modal.State.(*modals.AddMemberState)
	if !ok {
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		m.log.Warn("user search failed", "query", msg.Query, "error", msg.Err)
		return m, nil
	}
	s.SetResults(msg.Query, msg.Results)
	return m, nil
}

// handleConfirmModal runs the confirmed action. The dialog stays open until
// the result arrives so failures can be shown in it.
func (m *Model) handleConfirmModal(key string, s *modals.ConfirmState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "n":
		m.modal.Hide()
		return m, nil
	case "enter", "y":
	default:
		return m, nil
	}

	switch s.Action {
	case modals.ConfirmLogout:
		return m, m.logout()
	case modals.ConfirmDeleteUser:
		return m, m.deleteUser(s.TargetID)
	case modals.ConfirmRemoveMember:
		username := s.Target
		return m, m.moderate(modRemoveMember, username, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return "", b.RemoveMember(ctx, sess, id, username)
		})
	case modals.ConfirmClearHistory:
		return m, m.moderate(modClearHistory, s.Target, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return "", b.ClearHistory(ctx, sess, id)
		})
	case modals.ConfirmDeleteChat:
		return m, m.moderate(modDeleteChat, s.Target, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return "", b.DeleteChat(ctx, sess, id)
		})
	case modals.ConfirmLeaveChat:
		return m, m.moderate(modLeaveChat, s.Target, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return "", b.LeaveChat(ctx, sess, id)
		})
	}
	return m, nil
}

// handleModeration applies a moderation result. Failures leave the state
// unchanged and are shown in the open modal, or flashed.
func (m *Model) handleModeration(msg ModerationMsg) (tea.Model, tea.Cmd) {
	log := logger.WithChat(msg.ChatID)
	if msg.Err != nil {
		log.Warn("moderation failed", "action", msg.Action, "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		if m.modal.IsVisible() {
			m.modal.SetError(errors.Message(msg.Err))
			return m, nil
		}
		return m, m.ShowFlashError(errors.Message(msg.Err))
	}

	active := m.ActiveChatID() == msg.ChatID

	switch msg.Action {
	case modDeleteChat, modLeaveChat:
		m.modal.Hide()
		m.sidebar.RemoveChat(msg.ChatID)
		if active {
			m.teardownChat()
		}
		verb := "Deleted "
		if msg.Action == modLeaveChat {
			verb = "Left "
		}
		return m, tea.Batch(m.ShowFlashSuccess(verb+msg.Target), m.fetchChats())

	case modClearHistory:
		m.modal.Hide()
		if active {
			m.transcript.Clear()
			m.chat.SetMessages(m.transcript.Messages())
		}
		return m, m.ShowFlashSuccess("History cleared")

	case modRename:
		if active {
			m.chat.SetChatName(msg.Target)
			m.header.SetChatName(msg.Target)
		}
		return m, tea.Batch(m.reopenChatInfo(active), m.fetchChats(), m.ShowFlashSuccess("Renamed to "+msg.Target))

	case modPhoto:
		return m, tea.Batch(m.reopenChatInfo(active), m.ShowFlashSuccess("Chat photo updated"))

	case modAddMember:
		return m, tea.Batch(m.reopenChatInfo(active), m.ShowFlashSuccess("Added "+msg.Target))

	case modRemoveMember:
		return m, tea.Batch(m.reopenChatInfo(active), m.ShowFlashSuccess("Removed "+msg.Target))
	}
	return m, nil
}

// reopenChatInfo returns to the chat popup with refreshed members and info.
func (m *Model) reopenChatInfo(active bool) tea.Cmd {
	if !active {
		m.modal.Hide()
		return nil
	}
	return m.showChatInfo()
}

// =============================================================================
// Message actions: like, copy, delete
// =============================================================================

// toggleLike flips the current user's like on the selected message.
func (m *Model) toggleLike() tea.Cmd {
	sel, ok := m.chat.SelectedMessage()
	if !ok || sel.IsSystem || m.transcript == nil {
		return nil
	}
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		reactions, err := backend.ToggleReaction(context.Background(), sess, sel.ID, api.ReactionLike)
		return ReactionMsg{ChatID: chatID, Gen: gen, MessageID: sel.ID, Reactions: reactions, Err: err}
	}
}

func (m *Model) handleReaction(msg ReactionMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		logger.WithChat(msg.ChatID).Warn("reaction failed", "message", msg.MessageID, "error", msg.Err)
		return m, m.ShowFlashError("Could not update like")
	}
	if m.transcript.SetReactions(msg.MessageID, msg.Reactions) {
		m.chat.SetMessages(m.transcript.Messages())
	}
	return m, nil
}

// copySelected writes the selected message's text to the clipboard.
func (m *Model) copySelected() tea.Cmd {
	sel, ok := m.chat.SelectedMessage()
	if !ok {
		return nil
	}
	text := sel.Content
	if text == "" && sel.HasFile() {
		text = m.backend.AssetURL(sel.FileURL)
	}
	if err := clipboard.WriteText(text); err != nil {
		m.log.Warn("failed to copy message", "error", err)
		return m.ShowFlashError("Could not copy to clipboard")
	}
	return m.ShowFlashSuccess("Copied")
}

// openDeletePopup shows the delete popup for a double-clicked message. The
// event carries chat panel coordinates.
func (m *Model) openDeletePopup(msg ui.MessageDoubleClickedMsg) {
	if m.transcript == nil {
		return
	}
	if _, ok := m.transcript.Find(msg.MessageID); !ok {
		return
	}
	ox, oy := ui.GetViewContext().ChatOrigin()
	m.popup = ui.NewDeletePopup(msg.MessageID, ox+msg.X, oy+msg.Y, m.width, m.height)
	logger.WithChat(m.transcript.ChatID()).Debug("delete popup", "message", msg.MessageID, "x", m.popup.X, "y", m.popup.Y)
}

// openDeletePopupForSelected places the popup over the chat panel for the
// message under the browse cursor.
func (m *Model) openDeletePopupForSelected() {
	sel, ok := m.chat.SelectedMessage()
	if !ok || sel.IsSystem {
		return
	}
	ctx := ui.GetViewContext()
	ox, oy := ctx.ChatOrigin()
	x := ox + (ctx.ChatWidth-ui.DeletePopupWidth)/2
	y := oy + (ctx.ContentHeight-ui.DeletePopupHeight)/2
	m.popup = ui.NewDeletePopup(sel.ID, x, y, m.width, m.height)
}

// handlePopupKey routes keys while the delete popup is shown.
func (m *Model) handlePopupKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "d":
		id := m.popup.MessageID
		m.popup = nil
		return m, m.deleteMessage(id)
	case "esc":
		m.popup = nil
	}
	return m, nil
}

func (m *Model) deleteMessage(id int) tea.Cmd {
	if m.transcript == nil {
		return nil
	}
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		err := backend.DeleteMessage(context.Background(), sess, id)
		return MessageDeletedMsg{ChatID: chatID, Gen: gen, MessageID: id, Err: err}
	}
}

func (m *Model) handleMessageDeleted(msg MessageDeletedMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		logger.WithChat(msg.ChatID).Warn("delete failed", "message", msg.MessageID, "error", msg.Err)
		return m, m.ShowFlashError(errors.Message(msg.Err))
	}
	if m.transcript.Delete(msg.MessageID) {
		m.chat.SetMessages(m.transcript.Messages())
	}
	return m, m.ShowFlashSuccess("Message deleted")
}
