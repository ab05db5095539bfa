package modals

import (
	"image/color"

	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
)

// Style variables - these will be set by the parent ui package via SetStyles
var (
	ModalTitleStyle      lipgloss.Style
	ModalHelpStyle       lipgloss.Style
	SidebarItemStyle     lipgloss.Style
	SidebarSelectedStyle lipgloss.Style
	StatusErrorStyle     lipgloss.Style

	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorOwn         color.Color
	ColorWarning     color.Color
	ColorOnline      color.Color
	ColorSuccess     color.Color

	ModalInputWidth     int
	ModalInputCharLimit int
	ModalWidth          int
	ModalWidthWide      int
)

// List sizes
const (
	HelpModalMaxVisible   = 18
	MemberListMaxVisible  = 8
	SearchResultsMaxShown = 6
	CompletionsMaxShown   = 5
)

// SetStyles sets the style variables from the parent ui package.
// This must be called before rendering any modals.
func SetStyles(
	modalTitle, modalHelp, sidebarItem, sidebarSelected, statusError lipgloss.Style,
	primary, secondary, text, textMuted, textInverse, own, warning color.Color,
	online, success color.Color,
	inputWidth, inputCharLimit, modalWidth, modalWidthWide int,
) {
	ModalTitleStyle = modalTitle
	ModalHelpStyle = modalHelp
	SidebarItemStyle = sidebarItem
	SidebarSelectedStyle = sidebarSelected
	StatusErrorStyle = statusError

	ColorPrimary = primary
	ColorSecondary = secondary
	ColorText = text
	ColorTextMuted = textMuted
	ColorTextInverse = textInverse
	ColorOwn = own
	ColorWarning = warning
	ColorOnline = online
	ColorSuccess = success

	ModalInputWidth = inputWidth
	ModalInputCharLimit = inputCharLimit
	ModalWidth = modalWidth
	ModalWidthWide = modalWidthWide
}

// mutedStyle is used for labels and empty-state text.
func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorTextMuted)
}

// labelStyle renders a section label.
func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
}

// newTextInput builds a text input sized for modals.
func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = ModalInputCharLimit
	ti.SetWidth(ModalInputWidth)
	return ti
}
