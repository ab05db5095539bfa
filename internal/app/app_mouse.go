package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/ui"
)

// handleMouse routes mouse events on the chats screen. Returns handled=false
// when the event should fall through.
func (m *Model) handleMouse(msg tea.Msg) (tea.Cmd, bool) {
	if m.route != RouteChats || m.modal.IsVisible() {
		return nil, false
	}

	if m.popup != nil {
		return m.handlePopupMouse(msg), true
	}

	if !m.chat.HasChat() {
		return nil, false
	}
	return m.routeMouseEventsToChat(msg), true
}

// handlePopupMouse deletes on a click inside the popup and dismisses it on
// any other click.
func (m *Model) handlePopupMouse(msg tea.Msg) tea.Cmd {
	click, ok := msg.(tea.MouseClickMsg)
	if !ok {
		return nil
	}
	popup := m.popup
	m.popup = nil
	if click.Button == tea.MouseLeft && popup.Contains(click.X, click.Y) {
		return m.deleteMessage(popup.MessageID)
	}
	return nil
}

// routeMouseEventsToChat routes mouse events to the chat panel with coordinate adjustment.
// This handles click, motion, release and wheel events, adjusting coordinates for sidebar and header.
func (m *Model) routeMouseEventsToChat(msg tea.Msg) tea.Cmd {
	sidebarWidth := m.sidebar.Width()

	switch mouseMsg := msg.(type) {
	case tea.MouseClickMsg:
		if mouseMsg.X > sidebarWidth {
			chat, cmd := m.chat.Update(m.adjustMouseClickMsg(mouseMsg, sidebarWidth))
			m.chat = chat
			return cmd
		}

	case tea.MouseMotionMsg:
		if mouseMsg.X > sidebarWidth {
			chat, cmd := m.chat.Update(m.adjustMouseMotionMsg(mouseMsg, sidebarWidth))
			m.chat = chat
			return cmd
		}

	case tea.MouseReleaseMsg:
		if mouseMsg.X > sidebarWidth {
			chat, cmd := m.chat.Update(m.adjustMouseReleaseMsg(mouseMsg, sidebarWidth))
			m.chat = chat
			return cmd
		}

	case tea.MouseWheelMsg:
		if mouseMsg.X > sidebarWidth {
			chat, cmd := m.chat.Update(msg)
			m.chat = chat
			return cmd
		}
	}

	return nil
}

// adjustMouseClickMsg adjusts mouse click coordinates for the chat panel.
// X is adjusted by subtracting sidebar width, Y by subtracting header height.
func (m *Model) adjustMouseClickMsg(msg tea.MouseClickMsg, sidebarWidth int) tea.MouseClickMsg {
	return tea.MouseClickMsg{
		X:      msg.X - sidebarWidth,
		Y:      msg.Y - ui.HeaderHeight,
		Button: msg.Button,
		Mod:    msg.Mod,
	}
}

// adjustMouseMotionMsg adjusts mouse motion coordinates for the chat panel.
func (m *Model) adjustMouseMotionMsg(msg tea.MouseMotionMsg, sidebarWidth int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{
		X:      msg.X - sidebarWidth,
		Y:      msg.Y - ui.HeaderHeight,
		Button: msg.Button,
		Mod:    msg.Mod,
	}
}

// adjustMouseReleaseMsg adjusts mouse release coordinates for the chat panel.
func (m *Model) adjustMouseReleaseMsg(msg tea.MouseReleaseMsg, sidebarWidth int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{
		X:      msg.X - sidebarWidth,
		Y:      msg.Y - ui.HeaderHeight,
		Button: msg.Button,
		Mod:    msg.Mod,
	}
}
