package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// updateSizes recalculates and applies dimensions to all UI components
func (m *Model) updateSizes() {
	ctx := ui.GetViewContext()
	ctx.UpdateTerminalSize(m.width, m.height)

	m.header.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.sidebar.SetSize(ctx.SidebarWidth, ctx.ContentHeight)
	m.chat.SetSize(ctx.ChatWidth, ctx.ContentHeight)
	m.admin.SetSize(ctx.TerminalWidth, ctx.ContentHeight)

	if s, ok := m.modal.State.(*modals.HelpState); ok {
		s.SetSize(m.width, m.height)
	}
}

// View renders the app
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true
	v.SetContent(m.RenderToString())
	return v
}

// footerContext describes the current screen for the footer hints
func (m *Model) footerContext() ui.FooterContext {
	switch m.route {
	case RouteAdmin:
		return ui.FooterContext{
			Screen:    ui.ScreenAdmin,
			Filtering: m.admin.IsSearchMode(),
		}
	case RouteChats:
		return ui.FooterContext{
			Screen:         ui.ScreenChats,
			SidebarFocused: m.focus == FocusSidebar,
			HasChat:        m.chat.HasChat(),
			Browsing:       m.chat.IsBrowsing(),
			Filtering:      m.sidebar.IsSearchMode(),
			ChatAdmin:      m.IsChatAdmin(),
		}
	}
	return ui.FooterContext{Screen: ui.ScreenAuth}
}

// RenderToString renders the current view as a string.
// This is useful for testing.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.verifying {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, "Checking session...")
	}

	// Overlay modal if visible
	if m.modal.IsVisible() {
		return m.modal.View(m.width, m.height)
	}

	m.footer.SetContext(m.footerContext())
	header := m.header.View()
	footer := m.footer.View()

	var body string
	switch m.route {
	case RouteAdmin:
		body = m.admin.View()
	case RouteChats:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.chat.View())
	}

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	if m.popup != nil && m.route == RouteChats {
		view = m.popup.Overlay(view, m.width, m.height)
	}
	return view
}
