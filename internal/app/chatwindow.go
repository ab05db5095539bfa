package app

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/notification"
	"github.com/zhubert/messly/internal/transcript"
	"github.com/zhubert/messly/internal/ui"
)

const allReadNotice = "all messages read"

// isCurrent reports whether a result was issued for the chat that is still open.
func (m *Model) isCurrent(chatID, gen int) bool {
	return m.transcript != nil && gen == m.chatGen && chatID == m.transcript.ChatID()
}

// ActiveChatID returns the open chat's id, 0 when none is open.
func (m *Model) ActiveChatID() int {
	if m.transcript == nil {
		return 0
	}
	return m.transcript.ChatID()
}

// IsChatAdmin reports whether the current user administers the open chat.
func (m *Model) IsChatAdmin() bool {
	return m.chatRole == api.ChatRoleAdmin
}

// activateChat opens chat in the chat window. The previous live channel is
// closed before anything for the new chat is requested.
func (m *Model) activateChat(chat api.Chat) tea.Cmd {
	if m.transcript != nil && m.transcript.ChatID() == chat.ID {
		m.setFocus(FocusChat)
		return nil
	}

	m.teardownChat()
	m.chatGen++

	name := chat.DisplayName(m.session.Username)
	log := logger.WithChat(chat.ID)
	log.Info("activating chat", "name", name, "kind", chat.Kind, "gen", m.chatGen)

	m.transcript = transcript.New(chat.ID)
	m.members = chat.Members
	m.chat.OpenChat(chat.ID, name, chat.Kind)
	m.sidebar.SetActive(chat.ID)
	m.header.SetChatName(name)
	m.setFocus(FocusChat)

	return tea.Batch(
		m.fetchRole(),
		m.fetchHistory(),
		m.fetchMembers(),
		m.fetchChatInfo(),
		m.dialLive(),
		m.membershipTick(),
	)
}

// teardownChat closes the live channel and empties the chat window.
func (m *Model) teardownChat() {
	m.closeLive()
	if m.transcript != nil {
		m.chatGen++
	}
	m.transcript = nil
	m.chatRole = ""
	m.members = nil
	m.allRead = false
	m.popup = nil
	m.chat.CloseChat()
	m.sidebar.SetActive(0)
	m.header.SetChatName("")
	m.header.SetNotice("")
	if m.focus == FocusChat {
		m.setFocus(FocusSidebar)
	}
}

// closeLive closes the open live channel, if any
func (m *Model) closeLive() {
	if m.liveConn == nil {
		return
	}
	logger.WithChat(m.liveConn.ChatID()).Debug("closing live channel")
	if err := m.liveConn.Close(); err != nil {
		m.log.Warn("failed to close live channel", "error", err)
	}
	m.liveConn = nil
}

// =============================================================================
// Fetches issued on activation
// =============================================================================

func (m *Model) fetchHistory() tea.Cmd {
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		msgs, err := backend.Messages(context.Background(), sess, chatID)
		return HistoryMsg{ChatID: chatID, Gen: gen, Messages: msgs, Err: err}
	}
}

func (m *Model) fetchRole() tea.Cmd {
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		role, err := backend.Role(context.Background(), sess, chatID)
		return RoleMsg{ChatID: chatID, Gen: gen, Role: role, Err: err}
	}
}

func (m *Model) fetchMembers() tea.Cmd {
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		members, err := backend.Members(context.Background(), sess, chatID)
		return MembersMsg{ChatID: chatID, Gen: gen, Members: members, Err: err}
	}
}

func (m *Model) fetchChatInfo() tea.Cmd {
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		info, err := backend.ChatInfo(context.Background(), sess, chatID)
		return ChatInfoMsg{ChatID: chatID, Gen: gen, Info: info, Err: err}
	}
}

func (m *Model) dialLive() tea.Cmd {
	sess, dialer := m.session, m.dialer
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		ch, err := dialer.Dial(context.Background(), chatID, sess.Token)
		return LiveOpenedMsg{ChatID: chatID, Gen: gen, Channel: ch, Err: err}
	}
}

// readFailed handles a failed read for the open chat: auth failures end the
// session, anything else is logged and the state kept.
func (m *Model) readFailed(what string, chatID int, err error) tea.Cmd {
	if errors.Is(err, errors.KindAuth) {
		return m.forceReload(noticeSessionExpired)
	}
	logger.WithChat(chatID).Warn("fetch failed", "what", what, "error", err)
	return nil
}

func (m *Model) handleHistory(msg HistoryMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		m.chat.SetMessages(nil)
		return m, tea.Batch(m.readFailed("history", msg.ChatID, msg.Err), m.ShowFlashError("Could not load messages"))
	}

	m.transcript.Load(msg.Messages)
	m.chat.SetMessages(m.transcript.Messages())
	m.sendReadReceipt()
	return m, m.checkAllRead()
}

func (m *Model) handleRole(msg RoleMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.readFailed("role", msg.ChatID, msg.Err)
	}
	m.chatRole = msg.Role
	return m, nil
}

func (m *Model) handleMembers(msg MembersMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.readFailed("members", msg.ChatID, msg.Err)
	}
	m.members = msg.Members
	m.refreshChatInfoModal(nil)
	return m, nil
}

func (m *Model) handleChatInfo(msg ChatInfoMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.readFailed("chat info", msg.ChatID, msg.Err)
	}
	if msg.Info == nil {
		return m, nil
	}
	if msg.Info.Members != nil {
		m.members = msg.Info.Members
	}
	if m.chat.Kind() == api.KindGroup && msg.Info.Name != "" && msg.Info.Name != m.chat.ChatName() {
		m.chat.SetChatName(msg.Info.Name)
		m.header.SetChatName(msg.Info.Name)
	}
	m.refreshChatInfoModal(msg.Info)
	return m, nil
}

// =============================================================================
// Live channel
// =============================================================================

func listenLive(ch live.Channel, gen int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch.Events()
		if !ok {
			return LiveClosedMsg{ChatID: ch.ChatID(), Gen: gen, Err: ch.Err()}
		}
		return LiveEventMsg{ChatID: ch.ChatID(), Gen: gen, Event: ev}
	}
}

// handleLiveOpened keeps the channel for the open chat. A channel dialed
// for a chat that is no longer open is closed right away, so at most one
// is ever open.
func (m *Model) handleLiveOpened(msg LiveOpenedMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		if msg.Channel != nil {
			_ = msg.Channel.Close()
		}
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		logger.WithChat(msg.ChatID).Warn("live channel unavailable", "error", msg.Err)
		return m, m.ShowFlashWarning("Live updates unavailable")
	}

	m.closeLive()
	m.liveConn = msg.Channel
	logger.WithChat(msg.ChatID).Info("live channel open")
	m.sendReadReceipt()
	return m, listenLive(msg.Channel, msg.Gen)
}

// handleLiveEvent folds one event into the transcript and listens for the next.
func (m *Model) handleLiveEvent(msg LiveEventMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) || m.liveConn == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	eff := m.transcript.Apply(msg.Event)
	if eff.Changed {
		m.chat.SetMessages(m.transcript.Messages())
	}
	if eff.Appended != nil && !eff.Appended.IsSystem && eff.Appended.Author != m.session.Username {
		m.sendReadReceipt()
		cmds = append(cmds, m.notify(*eff.Appended))
	}
	if eff.Notice != "" {
		cmds = append(cmds, m.ShowFlashInfo(eff.Notice))
	}
	cmds = append(cmds, m.checkAllRead(), listenLive(m.liveConn, msg.Gen))
	return m, tea.Batch(cmds...)
}

// handleLiveClosed drops the channel. A lost connection is not re-dialed.
func (m *Model) handleLiveClosed(msg LiveClosedMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) || m.liveConn == nil {
		return m, nil
	}
	logger.WithChat(msg.ChatID).Warn("live channel closed", "error", msg.Err)
	m.liveConn = nil
	if msg.Err != nil {
		return m, m.ShowFlashWarning("Live connection lost. Reopen the chat to reconnect.")
	}
	return m, nil
}

// sendLive writes p to the open live channel.
func (m *Model) sendLive(p live.Outbound) error {
	if m.liveConn == nil {
		return errors.E(errors.Op("app.sendLive"), errors.KindNetwork, "live channel is not open")
	}
	return m.liveConn.Send(p)
}

func (m *Model) sendReadReceipt() {
	if m.liveConn == nil || m.transcript == nil {
		return
	}
	if err := m.sendLive(live.NewReadReceipt(m.transcript.ChatID())); err != nil {
		logger.WithChat(m.transcript.ChatID()).Warn("failed to send read receipt", "error", err)
	}
}

// notify raises a desktop notification for a message from someone else.
func (m *Model) notify(msg api.Message) tea.Cmd {
	if !m.config.GetNotificationsEnabled() {
		return nil
	}
	chatName := m.chat.ChatName()
	content := msg.Content
	if content == "" && msg.HasFile() {
		content = "sent " + msg.DisplayFilename()
	}
	return func() tea.Msg {
		if _, err := notification.NewMessage(chatName, msg.Author, content); err != nil {
			logger.WithComponent("notification").Warn("notification failed", "error", err)
		}
		return nil
	}
}

// checkAllRead shows the all read notice when the transcript becomes fully read.
func (m *Model) checkAllRead() tea.Cmd {
	if m.transcript == nil {
		return nil
	}
	all := m.transcript.AllRead()
	was := m.allRead
	m.allRead = all
	if !all || was {
		return nil
	}

	m.noticeGen++
	gen := m.noticeGen
	m.header.SetNotice(allReadNotice)
	return tea.Tick(ui.AllReadNoticeDuration, func(time.Time) tea.Msg {
		return AllReadNoticeDoneMsg{Gen: gen}
	})
}

func (m *Model) handleAllReadNoticeDone(msg AllReadNoticeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Gen == m.noticeGen && m.header.Notice() == allReadNotice {
		m.header.SetNotice("")
	}
	return m, nil
}

// =============================================================================
// Membership
// =============================================================================

func (m *Model) membershipTick() tea.Cmd {
	chatID, gen := m.transcript.ChatID(), m.chatGen
	interval := time.Duration(m.config.GetMembershipCheckSeconds()) * time.Second
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return MembershipTickMsg{ChatID: chatID, Gen: gen}
	})
}

func (m *Model) checkMembership(content string) tea.Cmd {
	sess, backend := m.session, m.backend
	chatID, gen := m.transcript.ChatID(), m.chatGen
	return func() tea.Msg {
		ok, err := backend.IsMember(context.Background(), sess, chatID)
		return MembershipMsg{ChatID: chatID, Gen: gen, Member: ok, Err: err, Content: content}
	}
}

func (m *Model) handleMembershipTick(msg MembershipTickMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	return m, m.checkMembership("")
}

// handleMembership acts on an is_member result. Losing access ends the
// session; a network failure keeps everything as it is.
func (m *Model) handleMembership(msg MembershipMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	log := logger.WithChat(msg.ChatID)
	sending := msg.Content != ""

	switch {
	case errors.Is(msg.Err, errors.KindAuth):
		return m, m.forceReload(noticeSessionExpired)
	case errors.Is(msg.Err, errors.KindPermission):
		return m, m.forceReload(noticeNotMember)
	case msg.Err != nil:
		log.Warn("membership check failed", "sending", sending, "error", msg.Err)
		if sending {
			return m, nil
		}
		return m, m.membershipTick()
	case !msg.Member:
		log.Warn("no longer a member")
		return m, m.forceReload(noticeNotMember)
	}

	if !sending {
		return m, m.membershipTick()
	}

	if err := m.sendLive(live.Text{Content: msg.Content}); err != nil {
		log.Warn("failed to send message", "error", err)
		return m, nil
	}
	if strings.TrimSpace(m.chat.GetInput()) == msg.Content {
		m.chat.ClearInput()
	}
	return m, nil
}

// sendMessage sends the input after confirming membership. Blank input is
// ignored.
func (m *Model) sendMessage() tea.Cmd {
	content := strings.TrimSpace(m.chat.GetInput())
	if content == "" || m.transcript == nil {
		return nil
	}
	return m.checkMembership(content)
}
