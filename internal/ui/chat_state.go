package ui

import (
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// TextSelection tracks mouse-based text selection state in the chat viewport.
type TextSelection struct {
	StartCol, StartLine int  // Start position (column, line in viewport)
	EndCol, EndLine     int  // End position (column, line in viewport)
	Active              bool // True during drag operation

	// Click tracking for double-click detection
	LastClickTime time.Time
	LastClickX    int
	LastClickY    int
	ClickCount    int

	// Selection flash animation (brief highlight after copy, then clear)
	FlashFrame int // -1 = inactive, 0 = flash visible, 1+ = done
}

// NewTextSelection creates a new TextSelection in inactive state.
func NewTextSelection() *TextSelection {
	return &TextSelection{
		StartCol:   -1,
		StartLine:  -1,
		EndCol:     -1,
		EndLine:    -1,
		FlashFrame: -1,
	}
}

// HasSelection returns true if there's a non-empty text selection.
func (s *TextSelection) HasSelection() bool {
	if s.StartCol < 0 || s.StartLine < 0 {
		return false
	}
	if s.StartLine != s.EndLine {
		return true
	}
	return s.StartCol != s.EndCol
}

// Clear resets the selection to empty state.
func (s *TextSelection) Clear() {
	s.StartCol = -1
	s.StartLine = -1
	s.EndCol = -1
	s.EndLine = -1
	s.Active = false
}

// DeletePopup is the small "Delete" box opened by double-clicking a message.
// Non-nil on the app model while shown.
type DeletePopup struct {
	MessageID int
	X, Y      int // Terminal cell of the top-left corner, already clamped
}

// NewDeletePopup places a popup for messageID at the cursor, clamped so it
// stays on a screen of the given size.
func NewDeletePopup(messageID, x, y, termWidth, termHeight int) *DeletePopup {
	x, y = ClampPopup(x, y, DeletePopupWidth, DeletePopupHeight, termWidth, termHeight)
	return &DeletePopup{MessageID: messageID, X: x, Y: y}
}

// Contains reports whether the terminal cell (x, y) falls on the popup.
func (p *DeletePopup) Contains(x, y int) bool {
	return x >= p.X && x < p.X+DeletePopupWidth && y >= p.Y && y < p.Y+DeletePopupHeight
}

// View renders the popup box.
func (p *DeletePopup) View() string {
	return PopupStyle.Width(DeletePopupWidth - BorderSize).Align(lipgloss.Center).Render("Delete")
}

// Overlay draws the popup over a rendered screen of the given size.
func (p *DeletePopup) Overlay(screen string, width, height int) string {
	if width <= 0 || height <= 0 {
		return screen
	}
	scr := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(screen).Draw(scr, uv.Rect(0, 0, width, height))
	uv.NewStyledString(p.View()).Draw(scr, uv.Rect(p.X, p.Y, DeletePopupWidth, DeletePopupHeight))
	return scr.Render()
}

// ClampPopup keeps a w×h box anchored at (x, y) inside the terminal. A box
// that would overflow the right or bottom edge is pulled back so it ends one
// cell before that edge.
func ClampPopup(x, y, w, h, termWidth, termHeight int) (int, int) {
	if x+w > termWidth {
		x = termWidth - w - 1
	}
	if y+h > termHeight {
		y = termHeight - h - 1
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// UploadState tracks a file upload in flight. Non-nil while uploading.
type UploadState struct {
	Filename string
	Size     int64
	Started  time.Time
}
