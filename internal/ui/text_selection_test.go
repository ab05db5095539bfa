package ui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/messly/internal/api"
)

func newTestChat() *Chat {
	c := NewChat()
	c.SetSize(80, 24)
	return c
}

// =============================================================================
// StartSelection / EndSelection / SelectionStop / SelectionClear
// =============================================================================

func TestStartSelection(t *testing.T) {
	c := newTestChat()
	c.StartSelection(5, 10)

	if c.selection.StartCol != 5 || c.selection.StartLine != 10 {
		t.Errorf("start position wrong: got (%d, %d)", c.selection.StartCol, c.selection.StartLine)
	}
	if c.selection.EndCol != 5 || c.selection.EndLine != 10 {
		t.Errorf("end position should match start: got (%d, %d)", c.selection.EndCol, c.selection.EndLine)
	}
	if !c.selection.Active {
		t.Error("expected Active=true after StartSelection")
	}
}

func TestEndSelection(t *testing.T) {
	c := newTestChat()
	c.StartSelection(5, 10)
	c.EndSelection(20, 12)

	if c.selection.EndCol != 20 || c.selection.EndLine != 12 {
		t.Errorf("end position wrong: got (%d, %d)", c.selection.EndCol, c.selection.EndLine)
	}
	if !c.selection.Active {
		t.Error("expected Active=true during drag")
	}
}

func TestEndSelection_InactiveIsNoop(t *testing.T) {
	c := newTestChat()
	c.EndSelection(20, 12)

	if c.selection.EndCol != -1 || c.selection.EndLine != -1 {
		t.Errorf("expected no change when inactive, got (%d, %d)", c.selection.EndCol, c.selection.EndLine)
	}
}

func TestSelectionStop(t *testing.T) {
	c := newTestChat()
	c.StartSelection(5, 10)
	c.EndSelection(20, 12)
	c.SelectionStop()

	if c.selection.Active {
		t.Error("expected Active=false after SelectionStop")
	}
	if c.selection.StartCol != 5 || c.selection.EndCol != 20 {
		t.Error("positions should be preserved after SelectionStop")
	}
}

func TestSelectionClear(t *testing.T) {
	c := newTestChat()
	c.StartSelection(5, 10)
	c.EndSelection(20, 12)
	c.SelectionClear()

	if c.selection.Active {
		t.Error("expected Active=false after SelectionClear")
	}
	if c.HasTextSelection() {
		t.Error("expected no selection after SelectionClear")
	}
}

func TestHasTextSelection(t *testing.T) {
	c := newTestChat()
	if c.HasTextSelection() {
		t.Error("new chat should have no selection")
	}

	c.StartSelection(5, 3)
	if c.HasTextSelection() {
		t.Error("a click without drag is not a selection")
	}

	c.EndSelection(9, 3)
	if !c.HasTextSelection() {
		t.Error("expected a selection after drag")
	}
}

// =============================================================================
// selectionArea
// =============================================================================

func TestSelectionArea_Normalizes(t *testing.T) {
	tests := []struct {
		name               string
		sc, sl, ec, el     int
		wsc, wsl, wec, wel int
	}{
		{"forward", 2, 1, 8, 3, 2, 1, 8, 3},
		{"backward lines", 8, 3, 2, 1, 2, 1, 8, 3},
		{"backward same line", 9, 2, 4, 2, 4, 2, 9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChat()
			c.StartSelection(tt.sc, tt.sl)
			c.EndSelection(tt.ec, tt.el)
			sc, sl, ec, el := c.selectionArea()
			if sc != tt.wsc || sl != tt.wsl || ec != tt.wec || el != tt.wel {
				t.Errorf("got (%d,%d)-(%d,%d)", sc, sl, ec, el)
			}
		})
	}
}

// =============================================================================
// sliceCells / GetSelectedText
// =============================================================================

func TestSliceCells(t *testing.T) {
	tests := []struct {
		line       string
		start, end int
		want       string
	}{
		{"hello world", 0, 5, "hello"},
		{"hello world", 6, 11, "world"},
		{"hello", 3, 100, "lo"},
		{"✓✓ read", 0, 2, "✓✓"},
		{"日本語", 2, 4, "本"},
		{"abc", 2, 1, ""},
	}
	for _, tt := range tests {
		if got := sliceCells(tt.line, tt.start, tt.end); got != tt.want {
			t.Errorf("sliceCells(%q, %d, %d) = %q, want %q", tt.line, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestGetSelectedText(t *testing.T) {
	c := newTestChat()
	c.OpenChat(1, "bob", api.KindPersonal)
	c.SetMessages([]api.Message{{ID: 1, Author: "bob", Content: "hello selection"}})
	c.viewport.SetYOffset(0)

	lines := strings.Split(c.viewport.View(), "\n")
	row := -1
	for i, l := range lines {
		if strings.Contains(ansi.Strip(l), "hello selection") {
			row = i
			break
		}
	}
	if row < 0 {
		t.Fatal("message line not rendered")
	}

	c.StartSelection(0, row)
	c.EndSelection(gutterWidth+5, row)
	if got := c.GetSelectedText(); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestGetSelectedText_NoSelection(t *testing.T) {
	c := newTestChat()
	if text := c.GetSelectedText(); text != "" {
		t.Errorf("expected empty string, got %q", text)
	}
}

func TestCopySelectedText_NoSelection(t *testing.T) {
	c := newTestChat()
	if cmd := c.CopySelectedText(); cmd != nil {
		t.Error("expected nil command without a selection")
	}
}

// =============================================================================
// handleMouseClick (click counting)
// =============================================================================

func TestHandleMouseClick_SingleClick(t *testing.T) {
	c := newTestChat()
	c.handleMouseClick(5, 3)

	if c.selection.ClickCount != 1 {
		t.Errorf("expected ClickCount=1, got %d", c.selection.ClickCount)
	}
	if !c.selection.Active {
		t.Error("expected Active=true after single click")
	}
}

func TestHandleMouseClick_ResetOnDistantClick(t *testing.T) {
	c := newTestChat()
	c.handleMouseClick(5, 3)

	c.handleMouseClick(50, 20)

	if c.selection.ClickCount != 1 {
		t.Errorf("expected ClickCount=1 after distant click, got %d", c.selection.ClickCount)
	}
}

func TestHandleMouseClick_ResetAfterThreshold(t *testing.T) {
	c := newTestChat()
	c.handleMouseClick(5, 3)
	c.selection.LastClickTime = time.Now().Add(-2 * doubleClickThreshold)

	c.handleMouseClick(5, 3)
	if c.selection.ClickCount != 1 {
		t.Errorf("slow second click should count as single, got %d", c.selection.ClickCount)
	}
}

func TestHandleMouseClick_DoubleClickOnMessage(t *testing.T) {
	c := newTestChat()
	c.OpenChat(1, "bob", api.KindPersonal)
	c.SetMessages([]api.Message{{ID: 77, Author: "bob", Content: "delete me"}})
	c.viewport.SetYOffset(0)

	row := c.msgStart[0]
	c.handleMouseClick(4, row)
	cmd := c.handleMouseClick(4, row)
	if cmd == nil {
		t.Fatal("expected a command from double click")
	}
	msg, ok := cmd().(MessageDoubleClickedMsg)
	if !ok {
		t.Fatalf("expected MessageDoubleClickedMsg, got %T", cmd())
	}
	if msg.MessageID != 77 || msg.X != 5 || msg.Y != row+1 {
		t.Errorf("unexpected message %+v", msg)
	}
	if c.HasTextSelection() {
		t.Error("double click should not leave a selection")
	}
}

func TestHandleMouseClick_DoubleClickOnSystemMessage(t *testing.T) {
	c := newTestChat()
	c.OpenChat(1, "team", api.KindGroup)
	c.SetMessages([]api.Message{{ID: 1, Content: "bob joined", IsSystem: true}})
	c.viewport.SetYOffset(0)

	row := c.msgStart[0]
	c.handleMouseClick(4, row)
	if cmd := c.handleMouseClick(4, row); cmd != nil {
		t.Error("system messages cannot be deleted")
	}
}

// =============================================================================
// Mouse routing through Update
// =============================================================================

func TestChatUpdate_DragSelects(t *testing.T) {
	c := newTestChat()
	c.OpenChat(1, "bob", api.KindPersonal)
	c.SetMessages([]api.Message{{ID: 1, Author: "bob", Content: "some text"}})

	// Panel coordinates include the one-cell border
	c, _ = c.Update(tea.MouseClickMsg{X: 3, Y: 2, Button: tea.MouseLeft})
	if !c.selection.Active || c.selection.StartCol != 2 || c.selection.StartLine != 1 {
		t.Fatalf("click should start a selection at (2,1), got %+v", c.selection)
	}
	c, _ = c.Update(tea.MouseMotionMsg{X: 9, Y: 2, Button: tea.MouseLeft})
	if c.selection.EndCol != 8 {
		t.Errorf("motion should extend the selection, got end col %d", c.selection.EndCol)
	}
	c, _ = c.Update(tea.MouseReleaseMsg{X: 9, Y: 2, Button: tea.MouseLeft})
	if c.selection.Active {
		t.Error("release should end the drag")
	}
}

func TestChatUpdate_ClickOutsideViewportIgnored(t *testing.T) {
	c := newTestChat()
	c.OpenChat(1, "bob", api.KindPersonal)

	c, _ = c.Update(tea.MouseClickMsg{X: 0, Y: 0, Button: tea.MouseLeft})
	if c.selection.Active {
		t.Error("click on the border should not start a selection")
	}
}

func TestChatUpdate_FlashTickClearsSelection(t *testing.T) {
	c := newTestChat()
	c.StartSelection(1, 1)
	c.EndSelection(5, 1)
	c.selection.FlashFrame = 0

	c, _ = c.Update(SelectionFlashTickMsg(time.Now()))
	if c.HasTextSelection() || c.selection.FlashFrame != -1 {
		t.Error("flash tick should clear the copied selection")
	}
}

// =============================================================================
// abs helper
// =============================================================================

func TestAbsHelper(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, 0},
		{5, 5},
		{-5, 5},
		{-1, 1},
		{1, 1},
	}

	for _, tt := range tests {
		got := abs(tt.input)
		if got != tt.want {
			t.Errorf("abs(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
