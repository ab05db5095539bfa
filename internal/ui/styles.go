package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, derived from the current theme by regenerateStyles.
var (
	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorMuted       color.Color
	ColorBorder      color.Color
	ColorBorderFocus color.Color
	ColorBg          color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorOwn         color.Color
	ColorOther       color.Color
	ColorSystem      color.Color
	ColorWarning     color.Color
	ColorInfo        color.Color
	ColorError       color.Color
	ColorSuccess     color.Color
	ColorOnline      color.Color
	ColorBadge       color.Color
)

// Header styles
var (
	HeaderStyle      lipgloss.Style
	HeaderTitleStyle lipgloss.Style
)

// Footer styles
var (
	FooterStyle     lipgloss.Style
	FooterKeyStyle  lipgloss.Style
	FooterDescStyle lipgloss.Style
)

// Panel styles
var (
	PanelStyle        lipgloss.Style
	PanelFocusedStyle lipgloss.Style
	PanelTitleStyle   lipgloss.Style
)

// Chat list styles
var (
	SidebarItemStyle     lipgloss.Style
	SidebarSelectedStyle lipgloss.Style
	SidebarPreviewStyle  lipgloss.Style
	TabActiveStyle       lipgloss.Style
	TabInactiveStyle     lipgloss.Style
	BadgeStyle           lipgloss.Style
	FilterStyle          lipgloss.Style
)

// Transcript styles
var (
	ChatOwnStyle          lipgloss.Style
	ChatOtherStyle        lipgloss.Style
	ChatSystemStyle       lipgloss.Style
	ChatMessageStyle      lipgloss.Style
	ChatTimestampStyle    lipgloss.Style
	ChatCursorStyle       lipgloss.Style
	ChatInputStyle        lipgloss.Style
	ChatInputFocusedStyle lipgloss.Style
	ReactionStyle         lipgloss.Style
	AttachmentStyle       lipgloss.Style
	OnlineStyle           lipgloss.Style
	OfflineStyle          lipgloss.Style
	PopupStyle            lipgloss.Style
)

// Modal styles
var (
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style
)

// Status styles
var (
	StatusLoadingStyle lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

// Message markup styles
var (
	InlineCodeStyle lipgloss.Style
	CodeBlockStyle  lipgloss.Style
	LinkStyle       lipgloss.Style
	BoldStyle       lipgloss.Style
)

// Admin panel styles
var (
	TableHeaderStyle lipgloss.Style
	TableCellStyle   lipgloss.Style
	StatValueStyle   lipgloss.Style
)

// Text selection styles
var (
	TextSelectionStyle lipgloss.Style

	// TextSelectionFlashStyle is shown briefly after a selection is copied
	TextSelectionFlashStyle lipgloss.Style
)

func init() {
	regenerateStyles()
	RefreshModalStyles()
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorMuted = lipgloss.Color(t.TextMuted)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorOwn = lipgloss.Color(t.Own)
	ColorOther = lipgloss.Color(t.Other)
	ColorSystem = lipgloss.Color(t.System)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)
	ColorOnline = lipgloss.Color(t.Online)
	ColorBadge = lipgloss.Color(t.Badge)

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText).
		Background(ColorPrimary).
		Padding(0, 1)

	HeaderTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)

	FooterStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus)

	PanelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(0, 1)

	SidebarItemStyle = lipgloss.NewStyle().
		Padding(0, 1)

	SidebarSelectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(lipgloss.Color(t.Text)).
		Bold(true).
		Padding(0, 1)

	SidebarPreviewStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	TabActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorTextInverse).
		Background(ColorPrimary).
		Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	BadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBadge)

	FilterStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)

	ChatOwnStyle = lipgloss.NewStyle().
		Foreground(ColorOwn).
		Bold(true)

	ChatOtherStyle = lipgloss.NewStyle().
		Foreground(ColorOther).
		Bold(true)

	ChatSystemStyle = lipgloss.NewStyle().
		Foreground(ColorSystem).
		Italic(true)

	ChatMessageStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	ChatTimestampStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	ChatCursorStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	ChatInputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	ChatInputFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus).
		Padding(0, 1)

	ReactionStyle = lipgloss.NewStyle().
		Foreground(ColorBadge)

	AttachmentStyle = lipgloss.NewStyle().
		Foreground(ColorInfo).
		Underline(true)

	OnlineStyle = lipgloss.NewStyle().
		Foreground(ColorOnline)

	OfflineStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Foreground(ColorError)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Width(ModalWidth)

	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true).
		MarginTop(1)

	StatusLoadingStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	InlineCodeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Code)).
		Background(lipgloss.Color(t.CodeBg))

	CodeBlockStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.CodeBg))

	LinkStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Link)).
		Underline(true)

	BoldStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)

	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	TableCellStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	StatValueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	TextSelectionStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.SelectionBg)).
		Foreground(lipgloss.Color(t.SelectionFg))

	TextSelectionFlashStyle = lipgloss.NewStyle().
		Background(ColorSuccess).
		Foreground(ColorTextInverse)
}
