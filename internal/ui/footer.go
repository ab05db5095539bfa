package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType selects the icon and color of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// DefaultFlashDuration is how long a flash stays visible unless overridden
const DefaultFlashDuration = FlashDuration

// FlashMessage is a transient status line shown in place of the key hints
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration
func (f *FlashMessage) IsExpired() bool {
	return time.Since(f.CreatedAt) >= f.Duration
}

// FlashTickMsg asks the app to drop an expired flash
type FlashTickMsg time.Time

// FlashTick returns a command that fires once per second while a flash is shown
func FlashTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// Screen identifies which top-level view the footer describes
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenChats
	ScreenAdmin
)

// FooterContext is the state the footer picks its hints from
type FooterContext struct {
	Screen         Screen
	SidebarFocused bool
	HasChat        bool
	Browsing       bool // transcript message cursor active
	Filtering      bool // chat list or admin filter input active
	ChatAdmin      bool // current user administers the open chat
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width        int
	bindings     []KeyBinding
	ctx          FooterContext
	flashMessage *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "tab", Desc: "switch pane"},
			{Key: "[/]", Desc: "personal/group"},
			{Key: "/", Desc: "filter"},
			{Key: "n", Desc: "new chat"},
			{Key: "p", Desc: "profile"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(ctx FooterContext) {
	f.ctx = ctx
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings allows custom keybindings
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetFlash shows a flash message for DefaultFlashDuration
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows a flash message for d
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      flashType,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes the flash message
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is showing
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired drops an expired flash and reports whether it did
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

func (f *Footer) renderFlash() string {
	var icon string
	var color = ColorInfo
	switch f.flashMessage.Type {
	case FlashError:
		icon, color = "✕", ColorError
	case FlashWarning:
		icon, color = "⚠", ColorWarning
	case FlashSuccess:
		icon, color = "✓", ColorSuccess
	default:
		icon = "ℹ"
	}
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	return FooterStyle.Width(f.width).Render(style.Render(icon + " " + f.flashMessage.Text))
}

// activeBindings returns the hints for the current context
func (f *Footer) activeBindings() []KeyBinding {
	c := f.ctx
	switch {
	case c.Screen == ScreenAuth:
		return []KeyBinding{
			{Key: "tab", Desc: "next field"},
			{Key: "enter", Desc: "submit"},
			{Key: "ctrl+r", Desc: "login/register"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case c.Filtering:
		return []KeyBinding{
			{Key: "type", Desc: "filter"},
			{Key: "enter", Desc: "apply"},
			{Key: "esc", Desc: "clear"},
		}
	case c.Screen == ScreenAdmin:
		return []KeyBinding{
			{Key: "[/]", Desc: "tabs"},
			{Key: "/", Desc: "search users"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
			{Key: "r", Desc: "refresh"},
			{Key: "L", Desc: "logout"},
		}
	case c.Browsing && !c.SidebarFocused:
		b := []KeyBinding{
			{Key: "↑/↓", Desc: "select"},
			{Key: "l", Desc: "like"},
			{Key: "d", Desc: "delete"},
			{Key: "u", Desc: "profile"},
			{Key: "y", Desc: "copy"},
			{Key: "esc", Desc: "back"},
		}
		return b
	case !c.SidebarFocused && c.HasChat:
		b := []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "ctrl+o", Desc: "attach"},
			{Key: "ctrl+v", Desc: "paste image"},
			{Key: "esc", Desc: "browse"},
			{Key: "ctrl+s", Desc: "chat info"},
			{Key: "tab", Desc: "switch pane"},
		}
		return b
	}

	var out []KeyBinding
	for _, b := range f.bindings {
		if b.Key == "tab" && !c.HasChat {
			continue
		}
		out = append(out, b)
	}
	return out
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		return f.renderFlash()
	}

	var parts []string
	for _, b := range f.activeBindings() {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	return FooterStyle.Width(f.width).Render(content)
}
