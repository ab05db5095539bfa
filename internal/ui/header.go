package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Header represents the top header bar
type Header struct {
	width    int
	username string
	admin    bool
	chatName string
	notice   string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetUser sets the signed-in user. An empty name means signed out.
func (h *Header) SetUser(username string, admin bool) {
	h.username = username
	h.admin = admin
}

// SetChatName sets the open chat's name
func (h *Header) SetChatName(name string) {
	h.chatName = name
}

// SetNotice shows a transient notice next to the chat name. Empty clears it.
func (h *Header) SetNotice(notice string) {
	h.notice = notice
}

// Notice returns the current notice
func (h *Header) Notice() string {
	return h.notice
}

// View renders the header
func (h *Header) View() string {
	titleText := " messly"
	if h.chatName != "" {
		titleText += " › " + h.chatName
	}
	if h.notice != "" {
		titleText += "  ✓ " + h.notice
	}

	var rightText string
	if h.username != "" {
		rightText = h.username
		if h.admin {
			rightText += " (admin)"
		}
		rightText += " "
	}

	paddingLen := h.width - runewidth.StringWidth(titleText) - runewidth.StringWidth(rightText)
	if paddingLen < 0 {
		paddingLen = 0
	}

	fullContent := titleText + strings.Repeat(" ", paddingLen) + rightText
	if h.width > 0 && runewidth.StringWidth(fullContent) > h.width {
		fullContent = runewidth.Truncate(fullContent, h.width, "…")
	}

	return h.renderGradient(fullContent, rightText)
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// The trailing user part is drawn muted.
func (h *Header) renderGradient(content, userPart string) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)

	textColor := lipgloss.Color(theme.Text)
	mutedColor := lipgloss.Color(theme.TextMuted)

	runes := []rune(content)
	width := len(runes)
	userStart := width - len([]rune(userPart))
	if userPart == "" {
		userStart = width
	}

	var result strings.Builder
	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)
		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(i < 7) // " messly"

		if i >= userStart {
			style = style.Foreground(mutedColor)
		} else {
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
