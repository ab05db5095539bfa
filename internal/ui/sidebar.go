package ui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/keys"
)

// SidebarSearchCharLimit caps the chat list filter input
const SidebarSearchCharLimit = 64

// sidebarItemHeight is the number of lines each chat occupies: name, then preview
const sidebarItemHeight = 2

// ChatTab selects which half of the chat list is shown
type ChatTab int

const (
	TabPersonal ChatTab = iota
	TabGroup
)

// String returns the tab label
func (t ChatTab) String() string {
	if t == TabGroup {
		return "Groups"
	}
	return "Personal"
}

// Kind returns the chat kind listed on the tab
func (t ChatTab) Kind() api.ChatKind {
	if t == TabGroup {
		return api.KindGroup
	}
	return api.KindPersonal
}

// TabFor returns the tab a chat kind is listed on
func TabFor(kind api.ChatKind) ChatTab {
	if kind == api.KindGroup {
		return TabGroup
	}
	return TabPersonal
}

// UnreadTotal sums the unread counts of chats, skipping chats whose newest
// message was posted by the system.
func UnreadTotal(chats []api.Chat) int {
	total := 0
	for _, c := range chats {
		if c.LastMessage.IsSystem() {
			continue
		}
		total += c.UnreadCount
	}
	return total
}

// Sidebar represents the left panel with the chat list
type Sidebar struct {
	personal     []api.Chat
	group        []api.Chat
	tab          ChatTab
	me           string
	activeID     int // chat open in the chat window, 0 when none
	selectedIdx  int
	scrollOffset int
	width        int
	height       int
	focused      bool
	loaded       bool

	// Filter over the active tab's display names
	searchMode  bool
	searchInput textinput.Model
	filter      string

	now func() time.Time
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	ti := textinput.New()
	ti.Placeholder = "filter chats..."
	ti.CharLimit = SidebarSearchCharLimit

	return &Sidebar{
		searchInput: ti,
		now:         time.Now,
	}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.searchInput.SetWidth(GetViewContext().InnerWidth(width) - 4)
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetIdentity sets the signed-in username, used to name personal chats
func (s *Sidebar) SetIdentity(username string) {
	s.me = username
}

// IsLoaded reports whether a chat list has been received
func (s *Sidebar) IsLoaded() bool {
	return s.loaded
}

// SetChats replaces both tabs. The selected chat stays selected if it is
// still listed.
func (s *Sidebar) SetChats(list api.ChatList) {
	selectedID := 0
	if c := s.SelectedChat(); c != nil {
		selectedID = c.ID
	}

	s.personal = list.Personal
	s.group = list.Group
	s.loaded = true

	if selectedID == 0 || !s.SelectChat(selectedID) {
		s.clampSelection()
	}
}

// Reset forgets every chat, used on logout
func (s *Sidebar) Reset() {
	s.personal = nil
	s.group = nil
	s.loaded = false
	s.activeID = 0
	s.selectedIdx = 0
	s.scrollOffset = 0
	s.tab = TabPersonal
	s.ExitSearchMode()
}

// AppendChat adds a newly created chat to its tab and selects it
func (s *Sidebar) AppendChat(chat api.Chat) {
	if _, ok := s.FindChat(chat.ID); ok {
		s.SelectChat(chat.ID)
		return
	}
	if chat.Kind == api.KindGroup {
		s.group = append(s.group, chat)
	} else {
		chat.Kind = api.KindPersonal
		s.personal = append(s.personal, chat)
	}
	s.SelectChat(chat.ID)
}

// RemoveChat drops a chat from the list, for example after deleting or leaving it
func (s *Sidebar) RemoveChat(id int) {
	s.personal = removeChat(s.personal, id)
	s.group = removeChat(s.group, id)
	if s.activeID == id {
		s.activeID = 0
	}
	s.clampSelection()
}

func removeChat(chats []api.Chat, id int) []api.Chat {
	out := chats[:0]
	for _, c := range chats {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// FindChat looks a chat up in either tab
func (s *Sidebar) FindChat(id int) (api.Chat, bool) {
	for _, list := range [][]api.Chat{s.personal, s.group} {
		for _, c := range list {
			if c.ID == id {
				return c, true
			}
		}
	}
	return api.Chat{}, false
}

// Chats returns the unfiltered chats of a tab
func (s *Sidebar) Chats(tab ChatTab) []api.Chat {
	if tab == TabGroup {
		return s.group
	}
	return s.personal
}

// Tab returns the active tab
func (s *Sidebar) Tab() ChatTab {
	return s.tab
}

// SetTab switches tabs and resets the selection
func (s *Sidebar) SetTab(tab ChatTab) {
	if s.tab == tab {
		return
	}
	s.tab = tab
	s.selectedIdx = 0
	s.scrollOffset = 0
}

// ToggleTab switches between the personal and group tabs
func (s *Sidebar) ToggleTab() {
	if s.tab == TabPersonal {
		s.SetTab(TabGroup)
	} else {
		s.SetTab(TabPersonal)
	}
}

// UnreadBadge returns the unread badge of a tab
func (s *Sidebar) UnreadBadge(tab ChatTab) int {
	return UnreadTotal(s.Chats(tab))
}

// SetActive marks the chat open in the chat window
func (s *Sidebar) SetActive(id int) {
	s.activeID = id
}

// ActiveID returns the chat open in the chat window
func (s *Sidebar) ActiveID() int {
	return s.activeID
}

// visibleChats returns the active tab, filtered when a filter is set
func (s *Sidebar) visibleChats() []api.Chat {
	chats := s.Chats(s.tab)
	if s.filter == "" {
		return chats
	}
	query := strings.ToLower(s.filter)
	var out []api.Chat
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.DisplayName(s.me)), query) {
			out = append(out, c)
		}
	}
	return out
}

// SelectedChat returns the highlighted chat, or nil when the list is empty
func (s *Sidebar) SelectedChat() *api.Chat {
	chats := s.visibleChats()
	if s.selectedIdx < 0 || s.selectedIdx >= len(chats) {
		return nil
	}
	c := chats[s.selectedIdx]
	return &c
}

// SelectChat highlights the chat with the given id, switching tabs if
// needed. It reports whether the chat was found.
func (s *Sidebar) SelectChat(id int) bool {
	c, ok := s.FindChat(id)
	if !ok {
		return false
	}
	tab := TabFor(c.Kind)
	if tab != s.tab {
		s.tab = tab
		s.scrollOffset = 0
	}
	for i, v := range s.visibleChats() {
		if v.ID == id {
			s.selectedIdx = i
			return true
		}
	}
	// Hidden by the filter
	s.clearFilter()
	for i, v := range s.visibleChats() {
		if v.ID == id {
			s.selectedIdx = i
			return true
		}
	}
	return false
}

func (s *Sidebar) clampSelection() {
	n := len(s.visibleChats())
	if s.selectedIdx >= n {
		s.selectedIdx = n - 1
	}
	if s.selectedIdx < 0 {
		s.selectedIdx = 0
	}
}

// EnterSearchMode activates the filter input
func (s *Sidebar) EnterSearchMode() tea.Cmd {
	s.searchMode = true
	s.searchInput.SetValue(s.filter)
	return s.searchInput.Focus()
}

// ExitSearchMode deactivates the filter input and clears the filter
func (s *Sidebar) ExitSearchMode() {
	s.searchMode = false
	s.searchInput.Blur()
	s.clearFilter()
}

func (s *Sidebar) clearFilter() {
	s.searchInput.SetValue("")
	s.filter = ""
	s.clampSelection()
}

// IsSearchMode returns whether the filter input is active
func (s *Sidebar) IsSearchMode() bool {
	return s.searchMode
}

// HasFilter reports whether a filter narrows the list
func (s *Sidebar) HasFilter() bool {
	return s.filter != ""
}

// GetSearchQuery returns the current filter
func (s *Sidebar) GetSearchQuery() string {
	return s.filter
}

// applyFilter narrows the active tab to chats matching query
func (s *Sidebar) applyFilter(query string) {
	s.filter = query
	s.selectedIdx = 0
	s.scrollOffset = 0
}

// Update handles messages
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.focused {
		return s, nil
	}

	if s.searchMode {
		switch keyMsg.String() {
		case keys.Escape:
			s.ExitSearchMode()
			return s, nil
		case keys.Enter:
			// Keep the filter applied
			s.searchMode = false
			s.searchInput.Blur()
			return s, nil
		case keys.Up, keys.CtrlP:
			if s.selectedIdx > 0 {
				s.selectedIdx--
			}
			return s, nil
		case keys.Down, keys.CtrlN:
			if s.selectedIdx < len(s.visibleChats())-1 {
				s.selectedIdx++
			}
			return s, nil
		default:
			var cmd tea.Cmd
			s.searchInput, cmd = s.searchInput.Update(msg)
			s.applyFilter(s.searchInput.Value())
			return s, cmd
		}
	}

	switch keyMsg.String() {
	case keys.Up, "k":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case keys.Down, "j":
		if s.selectedIdx < len(s.visibleChats())-1 {
			s.selectedIdx++
		}
	case "[", keys.Left:
		s.SetTab(TabPersonal)
	case "]", keys.Right:
		s.SetTab(TabGroup)
	case keys.Home:
		s.selectedIdx = 0
	case keys.End:
		s.selectedIdx = len(s.visibleChats()) - 1
		s.clampSelection()
	}

	return s, nil
}

// renderTabs renders the tab row with unread badges
func (s *Sidebar) renderTabs() string {
	var parts []string
	for _, tab := range []ChatTab{TabPersonal, TabGroup} {
		label := tab.String()
		if n := s.UnreadBadge(tab); n > 0 {
			label += " " + fmt.Sprintf("%d", n)
		}
		if tab == s.tab {
			parts = append(parts, TabActiveStyle.Render(label))
		} else {
			style := TabInactiveStyle
			if s.UnreadBadge(tab) > 0 {
				style = style.Foreground(ColorBadge)
			}
			parts = append(parts, style.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// preview summarizes the newest message of a chat
func (s *Sidebar) preview(c api.Chat) string {
	lm := c.LastMessage
	if lm == nil || (lm.Content == "" && lm.ID == 0) {
		return "No messages yet"
	}
	text := strings.Join(strings.Fields(lm.Content), " ")
	if text == "" {
		text = "Attachment"
	}
	if !lm.IsSystem() && c.Kind == api.KindGroup && lm.SenderName != "" {
		sender := lm.SenderName
		if sender == s.me {
			sender = "You"
		}
		text = sender + ": " + text
	}
	if !lm.SentAt.IsZero() {
		text += " · " + humanize.RelTime(lm.SentAt.Time, s.now(), "ago", "from now")
	}
	return text
}

// renderChat renders one chat as a name line and a preview line
func (s *Sidebar) renderChat(c api.Chat, selected bool, width int) string {
	name := c.DisplayName(s.me)
	if name == "" {
		name = "(unnamed)"
	}

	marker := "  "
	if c.ID == s.activeID {
		marker = "▸ "
	}

	var status string
	if c.Kind == api.KindPersonal {
		if peer, ok := c.Peer(s.me); ok && peer.Online() {
			status = OnlineStyle.Render("● ")
		} else {
			status = OfflineStyle.Render("○ ")
		}
	}

	var badge string
	if c.UnreadCount > 0 && !c.LastMessage.IsSystem() {
		badge = fmt.Sprintf(" %d", c.UnreadCount)
	}

	// Padding(0, 1) on item styles takes two columns
	inner := width - 2
	nameWidth := inner - runewidth.StringWidth(marker) - lipgloss.Width(status) - runewidth.StringWidth(badge)
	if nameWidth < 1 {
		nameWidth = 1
	}
	name = runewidth.Truncate(name, nameWidth, "…")
	pad := nameWidth - runewidth.StringWidth(name)
	if pad < 0 {
		pad = 0
	}

	previewText := runewidth.Truncate(s.preview(c), inner-2, "…")

	if selected {
		line := marker + status + name + strings.Repeat(" ", pad) + badge
		return SidebarSelectedStyle.Width(width).Render(line) + "\n" +
			SidebarSelectedStyle.Width(width).Render("  "+previewText)
	}

	previewStyle := SidebarPreviewStyle
	if c.LastMessage.IsSystem() {
		previewStyle = previewStyle.Italic(true)
	}
	line := marker + status + name + strings.Repeat(" ", pad) + BadgeStyle.Render(badge)
	return SidebarItemStyle.Width(width).Render(line) + "\n" +
		SidebarItemStyle.Width(width).Render("  "+previewStyle.Render(previewText))
}

// View renders the sidebar
func (s *Sidebar) View() string {
	ctx := GetViewContext()

	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}

	innerWidth := ctx.InnerWidth(s.width)
	innerHeight := ctx.InnerHeight(s.height)

	var sb strings.Builder
	sb.WriteString(s.renderTabs())
	sb.WriteString("\n")
	used := TabBarHeight

	if s.searchMode {
		sb.WriteString(FilterStyle.Render("/ ") + s.searchInput.View())
		sb.WriteString("\n")
		used++
	} else if s.filter != "" {
		sb.WriteString(FilterStyle.Render("/ " + runewidth.Truncate(s.filter, innerWidth-4, "…")))
		sb.WriteString("\n")
		used++
	}

	chats := s.visibleChats()
	muted := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Padding(0, 1)

	switch {
	case !s.loaded:
		sb.WriteString(StatusLoadingStyle.Padding(0, 1).Render("Loading chats..."))
	case len(chats) == 0 && s.filter != "":
		sb.WriteString(muted.Render("No matches"))
	case len(chats) == 0:
		sb.WriteString(muted.Render("No chats yet. Press n to start one."))
	default:
		visible := (innerHeight - used) / sidebarItemHeight
		if visible < 1 {
			visible = 1
		}
		if s.selectedIdx < s.scrollOffset {
			s.scrollOffset = s.selectedIdx
		}
		if s.selectedIdx >= s.scrollOffset+visible {
			s.scrollOffset = s.selectedIdx - visible + 1
		}
		if s.scrollOffset > len(chats)-visible {
			s.scrollOffset = max(0, len(chats)-visible)
		}

		end := min(len(chats), s.scrollOffset+visible)
		var rows []string
		for i := s.scrollOffset; i < end; i++ {
			rows = append(rows, s.renderChat(chats[i], i == s.selectedIdx, innerWidth))
		}
		sb.WriteString(strings.Join(rows, "\n"))
	}

	return style.Width(s.width).Height(s.height).Render(sb.String())
}
