package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/keys"
)

// AdminTab is one page of the admin panel
type AdminTab int

const (
	AdminTabStats AdminTab = iota
	AdminTabUsers
	AdminTabChats
	AdminTabMessages
	adminTabCount
)

// String returns the tab label
func (t AdminTab) String() string {
	switch t {
	case AdminTabUsers:
		return "Users"
	case AdminTabChats:
		return "Chats"
	case AdminTabMessages:
		return "Messages"
	default:
		return "Statistics"
	}
}

// adminRowsReserved is the tab row, a blank line and the table header
const adminRowsReserved = 3

// FilterUsers returns the users whose username or email contains query,
// ignoring case. An empty query returns every user.
func FilterUsers(users []api.AdminUser, query string) []api.AdminUser {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users
	}
	var out []api.AdminUser
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			out = append(out, u)
		}
	}
	return out
}

// adminSection holds the load state of one fetched list
type adminSection struct {
	loaded bool
	err    string
}

// AdminPanel is the full-screen view shown to administrators
type AdminPanel struct {
	width  int
	height int
	tab    AdminTab

	stats    *api.Stats
	users    []api.AdminUser
	chats    []api.AdminChat
	messages []api.AdminMessage
	sections [adminTabCount]adminSection

	selected [adminTabCount]int
	offset   [adminTabCount]int

	searchMode  bool
	searchInput textinput.Model
}

// NewAdminPanel creates an empty admin panel
func NewAdminPanel() *AdminPanel {
	ti := textinput.New()
	ti.Placeholder = "username or email..."
	ti.CharLimit = SidebarSearchCharLimit
	return &AdminPanel{searchInput: ti}
}

// SetSize sets the panel dimensions
func (a *AdminPanel) SetSize(width, height int) {
	a.width = width
	a.height = height
	a.searchInput.SetWidth(width / 2)
}

// Reset forgets all fetched data
func (a *AdminPanel) Reset() {
	a.stats = nil
	a.users = nil
	a.chats = nil
	a.messages = nil
	a.sections = [adminTabCount]adminSection{}
	a.selected = [adminTabCount]int{}
	a.offset = [adminTabCount]int{}
	a.tab = AdminTabStats
	a.ExitSearchMode()
}

// Tab returns the active tab
func (a *AdminPanel) Tab() AdminTab {
	return a.tab
}

// SetTab switches tabs
func (a *AdminPanel) SetTab(tab AdminTab) {
	if tab < 0 || tab >= adminTabCount {
		return
	}
	if a.searchMode && tab != AdminTabUsers {
		a.searchMode = false
		a.searchInput.Blur()
	}
	a.tab = tab
}

// NextTab moves to the next tab, wrapping around
func (a *AdminPanel) NextTab() {
	a.SetTab((a.tab + 1) % adminTabCount)
}

// PrevTab moves to the previous tab, wrapping around
func (a *AdminPanel) PrevTab() {
	a.SetTab((a.tab + adminTabCount - 1) % adminTabCount)
}

// SetStats stores the statistics
func (a *AdminPanel) SetStats(s api.Stats) {
	a.stats = &s
	a.sections[AdminTabStats] = adminSection{loaded: true}
}

// Stats returns the statistics, nil until loaded
func (a *AdminPanel) Stats() *api.Stats {
	return a.stats
}

// SetUsers stores the user table
func (a *AdminPanel) SetUsers(users []api.AdminUser) {
	a.users = users
	a.sections[AdminTabUsers] = adminSection{loaded: true}
	a.clamp(AdminTabUsers)
}

// Users returns the unfiltered user table
func (a *AdminPanel) Users() []api.AdminUser {
	return a.users
}

// SetChats stores the chat table
func (a *AdminPanel) SetChats(chats []api.AdminChat) {
	a.chats = chats
	a.sections[AdminTabChats] = adminSection{loaded: true}
	a.clamp(AdminTabChats)
}

// SetMessages stores the message table
func (a *AdminPanel) SetMessages(messages []api.AdminMessage) {
	a.messages = messages
	a.sections[AdminTabMessages] = adminSection{loaded: true}
	a.clamp(AdminTabMessages)
}

// SetError records a failed fetch for a tab. Other tabs are unaffected.
func (a *AdminPanel) SetError(tab AdminTab, err string) {
	if tab < 0 || tab >= adminTabCount {
		return
	}
	a.sections[tab] = adminSection{loaded: true, err: err}
}

// ReplaceUser swaps in an edited user
func (a *AdminPanel) ReplaceUser(u api.AdminUser) {
	for i := range a.users {
		if a.users[i].ID == u.ID {
			a.users[i] = u
			return
		}
	}
}

// RemoveUser drops a deleted user
func (a *AdminPanel) RemoveUser(id int) {
	out := a.users[:0]
	for _, u := range a.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	a.users = out
	if a.stats != nil && a.stats.TotalUsers > 0 {
		a.stats.TotalUsers--
	}
	a.clamp(AdminTabUsers)
}

// FilteredUsers returns the users matching the current filter
func (a *AdminPanel) FilteredUsers() []api.AdminUser {
	return FilterUsers(a.users, a.searchInput.Value())
}

// SelectedUser returns the highlighted user on the users tab
func (a *AdminPanel) SelectedUser() *api.AdminUser {
	users := a.FilteredUsers()
	i := a.selected[AdminTabUsers]
	if a.tab != AdminTabUsers || i < 0 || i >= len(users) {
		return nil
	}
	u := users[i]
	return &u
}

// EnterSearchMode focuses the user filter, switching to the users tab
func (a *AdminPanel) EnterSearchMode() tea.Cmd {
	a.SetTab(AdminTabUsers)
	a.searchMode = true
	return a.searchInput.Focus()
}

// ExitSearchMode clears the user filter
func (a *AdminPanel) ExitSearchMode() {
	a.searchMode = false
	a.searchInput.Blur()
	a.searchInput.SetValue("")
	a.clamp(AdminTabUsers)
}

// IsSearchMode reports whether the user filter has focus
func (a *AdminPanel) IsSearchMode() bool {
	return a.searchMode
}

// SearchQuery returns the user filter
func (a *AdminPanel) SearchQuery() string {
	return a.searchInput.Value()
}

func (a *AdminPanel) rowCount(tab AdminTab) int {
	switch tab {
	case AdminTabUsers:
		return len(a.FilteredUsers())
	case AdminTabChats:
		return len(a.chats)
	case AdminTabMessages:
		return len(a.messages)
	}
	return 0
}

func (a *AdminPanel) clamp(tab AdminTab) {
	n := a.rowCount(tab)
	if a.selected[tab] >= n {
		a.selected[tab] = n - 1
	}
	if a.selected[tab] < 0 {
		a.selected[tab] = 0
	}
}

func (a *AdminPanel) move(delta int) {
	a.selected[a.tab] += delta
	a.clamp(a.tab)
}

// Update handles key presses not claimed by the app
func (a *AdminPanel) Update(msg tea.Msg) (*AdminPanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return a, nil
	}

	if a.searchMode {
		switch keyMsg.String() {
		case keys.Escape:
			a.ExitSearchMode()
			return a, nil
		case keys.Enter:
			a.searchMode = false
			a.searchInput.Blur()
			return a, nil
		case keys.Up:
			a.move(-1)
			return a, nil
		case keys.Down:
			a.move(1)
			return a, nil
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.selected[AdminTabUsers] = 0
		a.offset[AdminTabUsers] = 0
		return a, cmd
	}

	switch keyMsg.String() {
	case keys.Up, "k":
		a.move(-1)
	case keys.Down, "j":
		a.move(1)
	case "]", keys.Right, keys.Tab:
		a.NextTab()
	case "[", keys.Left, keys.ShiftTab:
		a.PrevTab()
	case keys.Home:
		a.selected[a.tab] = 0
	case keys.End:
		a.selected[a.tab] = a.rowCount(a.tab) - 1
		a.clamp(a.tab)
	case "1", "2", "3", "4":
		a.SetTab(AdminTab(keyMsg.String()[0] - '1'))
	}
	return a, nil
}

// cell pads or truncates s to exactly w columns
func cell(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = runewidth.Truncate(s, w, "…")
	return s + strings.Repeat(" ", max(0, w-runewidth.StringWidth(s)))
}

// tableRow joins fixed-width cells; the last column takes the remaining width
func tableRow(width int, widths []int, values ...string) string {
	used := 0
	for _, w := range widths {
		used += w + 1
	}
	last := max(4, width-used)
	parts := make([]string, 0, len(values))
	for i, v := range values {
		w := last
		if i < len(widths) {
			w = widths[i]
		}
		parts = append(parts, cell(v, w))
	}
	return strings.Join(parts, " ")
}

func (a *AdminPanel) renderTabs() string {
	var parts []string
	for t := AdminTab(0); t < adminTabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == a.tab {
			parts = append(parts, TabActiveStyle.Render(label))
		} else {
			parts = append(parts, TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *AdminPanel) renderStats() string {
	if a.stats == nil {
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 2).
		Align(lipgloss.Center)
	stat := func(label string, n int) string {
		return box.Render(StatValueStyle.Render(humanize.Comma(int64(n))) + "\n" +
			lipgloss.NewStyle().Foreground(ColorTextMuted).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("users", a.stats.TotalUsers), " ",
		stat("chats", a.stats.TotalChats), " ",
		stat("messages", a.stats.TotalMessages))
}

// renderTable renders rows with the selection highlighted and scrolled into view
func (a *AdminPanel) renderTable(header string, rows []string, visible int) string {
	tab := a.tab
	sel := a.selected[tab]
	if sel < a.offset[tab] {
		a.offset[tab] = sel
	}
	if sel >= a.offset[tab]+visible {
		a.offset[tab] = sel - visible + 1
	}
	if a.offset[tab] < 0 {
		a.offset[tab] = 0
	}

	var sb strings.Builder
	sb.WriteString(TableHeaderStyle.Render(header))
	end := min(len(rows), a.offset[tab]+visible)
	for i := a.offset[tab]; i < end; i++ {
		sb.WriteString("\n")
		if i == sel {
			sb.WriteString(SidebarSelectedStyle.Padding(0).Render(rows[i]))
		} else {
			sb.WriteString(TableCellStyle.Render(rows[i]))
		}
	}
	if len(rows) > visible {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorTextMuted).
			Render(fmt.Sprintf("%d-%d of %d", a.offset[tab]+1, end, len(rows))))
	}
	return sb.String()
}

func (a *AdminPanel) renderBody(width, height int) string {
	section := a.sections[a.tab]
	muted := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
	switch {
	case section.err != "":
		return StatusErrorStyle.Render("Failed to load: " + section.err)
	case !section.loaded:
		return StatusLoadingStyle.Render("Loading...")
	}

	visible := max(1, height-adminRowsReserved-1)

	switch a.tab {
	case AdminTabUsers:
		widths := []int{6, 20, 30}
		var body strings.Builder
		if a.searchMode || a.searchInput.Value() != "" {
			body.WriteString(FilterStyle.Render("/ ") + a.searchInput.View() + "\n")
			visible--
		}
		users := a.FilteredUsers()
		if len(users) == 0 {
			body.WriteString(muted.Render("No users"))
			return body.String()
		}
		rows := make([]string, len(users))
		for i, u := range users {
			rows[i] = tableRow(width, widths, fmt.Sprint(u.ID), u.Username, u.Email, u.Role)
		}
		body.WriteString(a.renderTable(tableRow(width, widths, "ID", "Username", "Email", "Role"), rows, visible))
		return body.String()

	case AdminTabChats:
		if len(a.chats) == 0 {
			return muted.Render("No chats")
		}
		widths := []int{6, 24, 10, 8, 9}
		rows := make([]string, len(a.chats))
		for i, c := range a.chats {
			created := ""
			if !c.CreatedAt.IsZero() {
				created = humanize.Time(c.CreatedAt.Time)
			}
			rows[i] = tableRow(width, widths, fmt.Sprint(c.ID), c.Name, c.Type,
				fmt.Sprint(len(c.Members)), fmt.Sprint(len(c.Messages)), created)
		}
		return a.renderTable(tableRow(width, widths, "ID", "Name", "Type", "Members", "Messages", "Created"), rows, visible)

	case AdminTabMessages:
		if len(a.messages) == 0 {
			return muted.Render("No messages")
		}
		widths := []int{6, 6, 7, 7, 16}
		rows := make([]string, len(a.messages))
		for i, m := range a.messages {
			sent := ""
			if !m.SentAt.IsZero() {
				sent = humanize.Time(m.SentAt.Time)
			}
			rows[i] = tableRow(width, widths, fmt.Sprint(m.ID), fmt.Sprint(m.ChatID),
				fmt.Sprint(m.SenderID), m.Status, sent, m.Content)
		}
		return a.renderTable(tableRow(width, widths, "ID", "Chat", "Sender", "Status", "Sent", "Content"), rows, visible)
	}

	return a.renderStats()
}

// View renders the admin panel
func (a *AdminPanel) View() string {
	ctx := GetViewContext()
	innerWidth := ctx.InnerWidth(a.width) - 2
	innerHeight := ctx.InnerHeight(a.height)

	content := a.renderTabs() + "\n\n" + a.renderBody(innerWidth, innerHeight)
	return PanelFocusedStyle.Padding(0, 1).Width(a.width).Height(a.height).Render(content)
}
