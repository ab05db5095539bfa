package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/ui/modals"
)

// startChatList loads the chat list. Each completed load schedules the next
// one, so at most one refresh is in flight.
func (m *Model) startChatList() tea.Cmd {
	return m.fetchChats()
}

func (m *Model) fetchChats() tea.Cmd {
	if !m.session.Valid() {
		return nil
	}
	sess := m.session
	backend := m.backend
	gen := m.sessionGen
	return func() tea.Msg {
		list, err := backend.Chats(context.Background(), sess)
		return ChatsLoadedMsg{Gen: gen, List: list, Err: err}
	}
}

func (m *Model) chatListTick() tea.Cmd {
	gen := m.sessionGen
	interval := time.Duration(m.config.GetChatRefreshSeconds()) * time.Second
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return ChatListTickMsg{Gen: gen}
	})
}

// handleChatsLoaded applies a refresh. The sidebar keeps its selection by
// chat id, and the active chat's name follows renames.
func (m *Model) handleChatsLoaded(msg ChatsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.sessionGen || m.route != RouteChats {
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		m.log.Warn("chat list refresh failed", "error", msg.Err)
		return m, m.chatListTick()
	}

	m.sidebar.SetChats(*msg.List)
	if m.chat.HasChat() {
		if c, ok := m.sidebar.FindChat(m.chat.ChatID()); ok {
			name := c.DisplayName(m.session.Username)
			if name != m.chat.ChatName() {
				m.chat.SetChatName(name)
				m.header.SetChatName(name)
			}
		}
	}
	return m, m.chatListTick()
}

func (m *Model) handleChatListTick(msg ChatListTickMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.sessionGen || m.route != RouteChats {
		return m, nil
	}
	return m, m.fetchChats()
}

// showCreateChat opens the new chat form on the current tab's kind.
func (m *Model) showCreateChat() {
	m.modal.Show(modals.NewCreateChatState(m.sidebar.Tab().Kind()))
}

func (m *Model) handleCreateChatModal(key string, msg tea.KeyPressMsg, s *modals.CreateChatState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.modal.Hide()
		return m, nil
	case "enter":
		if err := s.Validate(); err != nil {
			m.modal.SetError(errors.Message(err))
			return m, nil
		}
		return m, m.createChat(s.Kind(), s.Value())
	}
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) createChat(kind api.ChatKind, value string) tea.Cmd {
	sess, gen := m.session, m.sessionGen
	backend := m.backend
	return func() tea.Msg {
		var (
			chat *api.Chat
			err  error
		)
		if kind == api.KindGroup {
			chat, err = backend.CreateGroup(context.Background(), sess, value)
		} else {
			chat, err = backend.CreatePersonal(context.Background(), sess, value)
		}
		return ChatCreatedMsg{Gen: gen, Kind: kind, Chat: chat, Err: err}
	}
}

// handleChatCreated adds the new chat to its tab and opens it. A result
// for an earlier session is dropped.
func (m *Model) handleChatCreated(msg ChatCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.sessionGen || m.route != RouteChats {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("create chat failed", "kind", msg.Kind, "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		if _, ok := m.modal.State.(*modals.CreateChatState); ok {
			m.modal.SetError(errors.Message(msg.Err))
			return m, nil
		}
		return m, m.ShowFlashError(errors.Message(msg.Err))
	}

	chat := *msg.Chat
	if chat.Kind == "" {
		chat.Kind = msg.Kind
	}
	if _, ok := m.modal.State.(*modals.CreateChatState); ok {
		m.modal.Hide()
	}
	m.sidebar.AppendChat(chat)
	name := chat.DisplayName(m.session.Username)
	return m, tea.Batch(m.activateChat(chat), m.ShowFlashSuccess("Created "+name))
}
