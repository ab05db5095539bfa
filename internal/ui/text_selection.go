package ui

import (
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/zhubert/messly/internal/clipboard"
	"github.com/zhubert/messly/internal/logger"
)

// SelectionFlashTickMsg ends the highlight shown after a selection is copied
type SelectionFlashTickMsg time.Time

// SelectionFlashTick returns a command that sends a selection flash tick
func SelectionFlashTick() tea.Cmd {
	return tea.Tick(SelectionFlashDuration, func(t time.Time) tea.Msg {
		return SelectionFlashTickMsg(t)
	})
}

// ClipboardErrorMsg is sent when clipboard operations fail
type ClipboardErrorMsg struct {
	Error error
}

const (
	doubleClickThreshold = 500 * time.Millisecond
	clickTolerance       = 2 // cells
)

// StartSelection begins a text selection at the given coordinates
func (c *Chat) StartSelection(col, line int) {
	c.selection.StartCol = col
	c.selection.StartLine = line
	c.selection.EndCol = col
	c.selection.EndLine = line
	c.selection.Active = true
}

// EndSelection updates the end position of the selection during drag
func (c *Chat) EndSelection(col, line int) {
	if !c.selection.Active {
		return
	}
	c.selection.EndCol = col
	c.selection.EndLine = line
}

// SelectionStop ends the drag but keeps the selection visible
func (c *Chat) SelectionStop() {
	c.selection.Active = false
}

// SelectionClear clears the selection entirely
func (c *Chat) SelectionClear() {
	c.selection.Clear()
}

// HasTextSelection returns true if there is an active or completed selection
func (c *Chat) HasTextSelection() bool {
	return c.selection.HasSelection()
}

// handleMouseClick starts a selection on a single click. A double click on a
// message asks the app to offer deleting it.
func (c *Chat) handleMouseClick(x, y int) tea.Cmd {
	now := time.Now()
	s := c.selection

	if now.Sub(s.LastClickTime) <= doubleClickThreshold &&
		abs(x-s.LastClickX) <= clickTolerance &&
		abs(y-s.LastClickY) <= clickTolerance {
		s.ClickCount++
	} else {
		s.ClickCount = 1
	}

	s.LastClickTime = now
	s.LastClickX = x
	s.LastClickY = y

	if s.ClickCount < 2 {
		c.StartSelection(x, y)
		return nil
	}

	s.ClickCount = 0
	c.SelectionClear()

	m, ok := c.MessageAtLine(y)
	if !ok || m.IsSystem {
		return nil
	}
	// Back to panel coordinates
	msg := MessageDoubleClickedMsg{MessageID: m.ID, X: x + 1, Y: y + 1}
	return func() tea.Msg { return msg }
}

// abs returns the absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// selectionArea returns the normalized selection area (start < end).
// A selection dragged upward or leftward is swapped so that start comes
// first in reading order.
func (c *Chat) selectionArea() (startCol, startLine, endCol, endLine int) {
	startCol = c.selection.StartCol
	startLine = c.selection.StartLine
	endCol = c.selection.EndCol
	endLine = c.selection.EndLine

	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startCol, endCol = endCol, startCol
		startLine, endLine = endLine, startLine
	}

	return
}

// sliceCells returns the part of a plain line between display columns start
// and end. Wide graphemes count for their full cell width.
func sliceCells(line string, start, end int) string {
	var sb strings.Builder
	col := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		w := gr.Width()
		if col >= end {
			break
		}
		if col >= start {
			sb.WriteString(gr.Str())
		}
		col += w
	}
	return sb.String()
}

// GetSelectedText returns the currently selected text. Escape codes are
// stripped first so columns line up with what is on screen. The message
// gutter is dropped from every line.
func (c *Chat) GetSelectedText() string {
	if !c.HasTextSelection() {
		return ""
	}

	lines := strings.Split(c.viewport.View(), "\n")
	startCol, startLine, endCol, endLine := c.selectionArea()

	var result strings.Builder
	for y := startLine; y <= endLine && y < len(lines); y++ {
		if y < 0 {
			continue
		}
		line := ansi.Strip(lines[y])

		lineStart, lineEnd := 0, uniseg.StringWidth(line)
		if y == startLine {
			lineStart = startCol
		}
		if y == endLine {
			lineEnd = endCol
		}
		if lineStart < gutterWidth {
			lineStart = gutterWidth
		}

		if lineStart < lineEnd {
			result.WriteString(strings.TrimRight(sliceCells(line, lineStart, lineEnd), " "))
		}
		if y < endLine {
			result.WriteString("\n")
		}
	}

	return strings.TrimSpace(result.String())
}

// CopySelectedText copies the selected text to the clipboard and starts flash animation
func (c *Chat) CopySelectedText() tea.Cmd {
	if !c.HasTextSelection() {
		return nil
	}

	selectedText := c.GetSelectedText()
	if selectedText == "" {
		return nil
	}

	c.selection.FlashFrame = 0

	return tea.Batch(
		// OSC 52 escape sequence (works in modern terminals)
		tea.SetClipboard(selectedText),
		// Native clipboard fallback
		func() tea.Msg {
			if err := clipboard.WriteText(selectedText); err != nil {
				logger.WithComponent("ui").Warn("failed to write to clipboard", "error", err)
				return ClipboardErrorMsg{Error: err}
			}
			return nil
		},
		SelectionFlashTick(),
	)
}

// selectionView applies selection highlighting to the rendered view using ultraviolet
func (c *Chat) selectionView(view string) string {
	if !c.HasTextSelection() {
		return view
	}

	width := c.viewport.Width()
	height := c.viewport.Height()
	if width <= 0 || height <= 0 {
		return view
	}

	area := uv.Rect(0, 0, width, height)
	scr := uv.NewScreenBuffer(area.Dx(), area.Dy())
	uv.NewStyledString(view).Draw(scr, area)

	startCol, startLine, endCol, endLine := c.selectionArea()

	var selBg, selFg color.Color
	if c.selection.FlashFrame == 0 {
		selBg = TextSelectionFlashStyle.GetBackground()
		selFg = TextSelectionFlashStyle.GetForeground()
	} else {
		selBg = TextSelectionStyle.GetBackground()
		selFg = TextSelectionStyle.GetForeground()
	}

	for y := startLine; y <= endLine && y < height; y++ {
		if y < 0 {
			continue
		}
		xStart, xEnd := 0, width
		if y == startLine {
			xStart = startCol
		}
		if y == endLine {
			xEnd = endCol
		}

		for x := xStart; x < xEnd && x < width; x++ {
			cell := scr.CellAt(x, y)
			if cell != nil {
				cell = cell.Clone()
				cell.Style.Bg = selBg
				cell.Style.Fg = selFg
				scr.SetCell(x, y, cell)
			}
		}
	}

	return scr.Render()
}
