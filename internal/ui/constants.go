// Package ui provides constants for layout calculations and configuration.
package ui

import "time"

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// SidebarWidthRatio is the denominator for sidebar width (1/3 of total width)
	SidebarWidthRatio = 3

	// TextareaHeight is the number of lines for the chat input textarea
	TextareaHeight = 3

	// TextareaBorderHeight is the border size around the textarea
	TextareaBorderHeight = 2

	// InputPaddingWidth is the horizontal padding inside the input area (Padding(0, 1) = 1 left + 1 right)
	InputPaddingWidth = 2

	// InputTotalHeight is the total height of the input area (textarea + borders)
	InputTotalHeight = TextareaHeight + TextareaBorderHeight

	// TitleHeight is the height of panel titles
	TitleHeight = 1

	// TabBarHeight is the height of the chat list tab row
	TabBarHeight = 1

	// DefaultWrapWidth is the default width for text wrapping when viewport width is unknown
	DefaultWrapWidth = 80

	// MinTerminalWidth is the smallest width the layout is computed for
	MinTerminalWidth = 60

	// MinTerminalHeight is the smallest height the layout is computed for
	MinTerminalHeight = 15
)

// Delete popup dimensions, in cells including its border.
const (
	DeletePopupWidth  = 14
	DeletePopupHeight = 3
)

// Modal dimensions
const (
	// ModalWidth is the default width of modals
	ModalWidth = 60

	// ModalWidthWide is used by list-heavy modals
	ModalWidthWide = 80

	// ModalInputCharLimit is the character limit for modal text inputs
	ModalInputCharLimit = 256

	// ModalInputWidth is the width of modal text inputs
	ModalInputWidth = 50
)

// Timings
const (
	// FlashDuration is how long a footer flash stays visible
	FlashDuration = 3 * time.Second

	// AllReadNoticeDuration is how long the "all messages read" notice stays
	AllReadNoticeDuration = 2 * time.Second

	// SelectionFlashDuration is how long a copied selection stays highlighted
	SelectionFlashDuration = 300 * time.Millisecond
)
