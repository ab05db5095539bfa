package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/ui/modals"
)

// Shortcut represents a keyboard shortcut on the chats screen with its
// metadata and handler. The help modal is generated from the registry.
type Shortcut struct {
	Key             string                              // The key binding (e.g., "n", "ctrl+s")
	DisplayKey      string                              // Display name in help (e.g., "ctrl-s"); defaults to Key
	Description     string                              // Human-readable description
	Category        string                              // Section for help modal grouping
	RequiresSidebar bool                                // Must not be in chat focus
	RequiresChat    bool                                // A chat must be open
	Handler         func(m *Model) (tea.Model, tea.Cmd) // Action to perform
	Condition       func(m *Model) bool                 // Optional extra condition
}

// Categories for organizing shortcuts in the help modal
const (
	CategoryNavigation = "Navigation"
	CategoryChats      = "Chats"
	CategoryChat       = "Chat (when focused)"
	CategoryMessages   = "Messages (when browsing)"
	CategoryGeneral    = "General"
)

// categoryOrder defines the display order of categories in the help modal
var categoryOrder = []string{
	CategoryNavigation,
	CategoryChats,
	CategoryChat,
	CategoryMessages,
	CategoryGeneral,
}

// ShortcutRegistry holds every executable shortcut of the chats screen.
var ShortcutRegistry = []Shortcut{
	// Navigation
	{
		Key:         "tab",
		DisplayKey:  "Tab",
		Description: "Switch between chat list and chat",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
		Condition:   func(m *Model) bool { return m.chat.HasChat() },
	},
	{
		Key:             "/",
		Description:     "Filter chats",
		Category:        CategoryNavigation,
		RequiresSidebar: true,
		Handler:         shortcutSearch,
		Condition:       func(m *Model) bool { return !m.sidebar.IsSearchMode() },
	},
	{
		Key:             "enter",
		DisplayKey:      "Enter",
		Description:     "Open selected chat",
		Category:        CategoryNavigation,
		RequiresSidebar: true,
		Handler:         shortcutOpenChat,
		Condition:       func(m *Model) bool { return m.sidebar.SelectedChat() != nil },
	},

	// Chats
	{
		Key:             "n",
		Description:     "New chat",
		Category:        CategoryChats,
		RequiresSidebar: true,
		Handler:         shortcutNewChat,
	},
	{
		Key:             "i",
		Description:     "Chat or user info",
		Category:        CategoryChats,
		RequiresSidebar: true,
		Handler:         shortcutSelectedInfo,
		Condition:       func(m *Model) bool { return m.sidebar.SelectedChat() != nil },
	},
	{
		Key:          "ctrl+s",
		DisplayKey:   "ctrl-s",
		Description:  "Chat members and settings",
		Category:     CategoryChats,
		RequiresChat: true,
		Handler:      shortcutChatInfo,
	},

	// Chat
	{
		Key:          "ctrl+o",
		DisplayKey:   "ctrl-o",
		Description:  "Attach a file",
		Category:     CategoryChat,
		RequiresChat: true,
		Handler:      shortcutAttach,
		Condition:    func(m *Model) bool { return !m.chat.IsUploading() },
	},

	// General
	// Note: "?" (help) is handled specially in ExecuteShortcut to avoid init cycle
	{
		Key:             "p",
		Description:     "Your profile",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutProfile,
	},
	{
		Key:         "ctrl+t",
		DisplayKey:  "ctrl-t",
		Description: "Change theme",
		Category:    CategoryGeneral,
		Handler:     shortcutTheme,
	},
	{
		Key:         "ctrl+l",
		DisplayKey:  "ctrl-l",
		Description: "Log out",
		Category:    CategoryGeneral,
		Handler:     shortcutLogout,
	},
	{
		Key:             "q",
		Description:     "Quit",
		Category:        CategoryGeneral,
		RequiresSidebar: true,
		Handler:         shortcutQuit,
	},
}

// helpShortcut is defined separately to avoid initialization cycle.
// It references ShortcutRegistry, so it can't be in the registry itself.
var helpShortcut = Shortcut{
	Key:             "?",
	Description:     "Show this help",
	Category:        CategoryGeneral,
	RequiresSidebar: true,
}

// DisplayOnlyShortcuts are shown in help but not executable from the help modal.
var DisplayOnlyShortcuts = []Shortcut{
	{DisplayKey: "↑/↓ or j/k", Description: "Move through chats", Category: CategoryNavigation},
	{DisplayKey: "[ ] or ←/→", Description: "Personal / group tab", Category: CategoryNavigation},

	{DisplayKey: "Enter", Description: "Send message", Category: CategoryChat},
	{DisplayKey: "ctrl-v", Description: "Paste image as attachment", Category: CategoryChat},
	{DisplayKey: "↑", Description: "Browse messages", Category: CategoryChat},
	{DisplayKey: "Mouse drag", Description: "Select text (auto-copies)", Category: CategoryChat},
	{DisplayKey: "Double-click", Description: "Delete a message", Category: CategoryChat},

	{DisplayKey: "l", Description: "Like / unlike", Category: CategoryMessages},
	{DisplayKey: "u", Description: "Author's profile", Category: CategoryMessages},
	{DisplayKey: "y", Description: "Copy message", Category: CategoryMessages},
	{DisplayKey: "d", Description: "Delete message", Category: CategoryMessages},
	{DisplayKey: "Esc", Description: "Back to typing", Category: CategoryMessages},
}

// isShortcutApplicable checks if a shortcut is applicable given the current model state.
func (m *Model) isShortcutApplicable(s Shortcut) bool {
	if s.RequiresSidebar && m.focus == FocusChat {
		return false
	}
	if s.RequiresChat && !m.chat.HasChat() {
		return false
	}
	if s.Condition != nil && !s.Condition(m) {
		return false
	}
	return true
}

// ExecuteShortcut finds and executes a shortcut by key.
// Returns (model, cmd, true) if the shortcut was found and executed.
// Returns (model, nil, false) if the shortcut was not found or guards failed.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	// Keys typed into the filter belong to it
	if m.sidebar.IsSearchMode() && m.focus == FocusSidebar {
		return m, nil, false
	}

	if key == "?" {
		if !m.isShortcutApplicable(helpShortcut) {
			return m, nil, false
		}
		result, cmd := shortcutHelp(m)
		return result, cmd, true
	}

	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if !m.isShortcutApplicable(s) {
			m.log.Debug("shortcut guard failed", "key", key, "focus", m.focus)
			return m, nil, false
		}
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

// helpSections generates help modal sections from the shortcuts applicable
// right now.
func (m *Model) helpSections() []modals.HelpSection {
	categories := make(map[string][]modals.HelpShortcut)

	add := func(s Shortcut) {
		displayKey := s.DisplayKey
		if displayKey == "" {
			displayKey = s.Key
		}
		categories[s.Category] = append(categories[s.Category], modals.HelpShortcut{
			Key:  displayKey,
			Desc: s.Description,
		})
	}

	for _, s := range ShortcutRegistry {
		if m.isShortcutApplicable(s) {
			add(s)
		}
	}
	add(helpShortcut)

	for _, s := range DisplayOnlyShortcuts {
		if (s.Category == CategoryChat || s.Category == CategoryMessages) && !m.chat.HasChat() {
			continue
		}
		add(s)
	}

	var sections []modals.HelpSection
	for _, cat := range categoryOrder {
		if shortcuts, ok := categories[cat]; ok && len(shortcuts) > 0 {
			sections = append(sections, modals.HelpSection{
				Title:     cat,
				Shortcuts: shortcuts,
			})
		}
	}
	return sections
}

// shortcutForHelpKey maps a key shown in the help modal back to its
// registry entry.
func shortcutForHelpKey(displayKey string) (Shortcut, bool) {
	for _, s := range ShortcutRegistry {
		if s.DisplayKey == displayKey || (s.DisplayKey == "" && s.Key == displayKey) {
			return s, true
		}
	}
	return Shortcut{}, false
}

// =============================================================================
// Shortcut Handlers
// =============================================================================

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	m.toggleFocus()
	return m, nil
}

func shortcutSearch(m *Model) (tea.Model, tea.Cmd) {
	return m, m.sidebar.EnterSearchMode()
}

func shortcutOpenChat(m *Model) (tea.Model, tea.Cmd) {
	chat := m.sidebar.SelectedChat()
	return m, m.activateChat(*chat)
}

func shortcutNewChat(m *Model) (tea.Model, tea.Cmd) {
	m.showCreateChat()
	return m, nil
}

func shortcutSelectedInfo(m *Model) (tea.Model, tea.Cmd) {
	return m, m.showSelectedInfo()
}

func shortcutChatInfo(m *Model) (tea.Model, tea.Cmd) {
	return m, m.showChatInfo()
}

func shortcutAttach(m *Model) (tea.Model, tea.Cmd) {
	m.showAttachPicker()
	return m, nil
}

func shortcutProfile(m *Model) (tea.Model, tea.Cmd) {
	return m, m.showProfile()
}

func shortcutTheme(m *Model) (tea.Model, tea.Cmd) {
	return m, m.cycleTheme()
}

func shortcutLogout(m *Model) (tea.Model, tea.Cmd) {
	m.modal.Show(modals.NewConfirmState(modals.ConfirmLogout, 0, m.session.Username, "Sign out of messly?"))
	return m, nil
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	m.closeLive()
	return m, tea.Quit
}

func shortcutHelp(m *Model) (tea.Model, tea.Cmd) {
	m.showHelp()
	return m, nil
}
