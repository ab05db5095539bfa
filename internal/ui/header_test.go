package ui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

// stripANSI removes ANSI escape codes from a string for testing
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestNewHeader(t *testing.T) {
	header := NewHeader()

	if header == nil {
		t.Fatal("NewHeader() returned nil")
	}

	if header.username != "" {
		t.Error("Expected no user initially")
	}

	if header.chatName != "" {
		t.Error("Expected no chat initially")
	}
}

func TestHeader_SetWidth(t *testing.T) {
	header := NewHeader()

	header.SetWidth(120)

	if header.width != 120 {
		t.Errorf("Expected width 120, got %d", header.width)
	}
}

func TestHeader_View_ShowsChatAndUser(t *testing.T) {
	header := NewHeader()
	header.SetWidth(80)
	header.SetUser("alice", false)
	header.SetChatName("bob")

	view := stripANSI(header.View())
	if !strings.Contains(view, "messly") {
		t.Error("header should contain the app name")
	}
	if !strings.Contains(view, "› bob") {
		t.Errorf("header should contain chat name, got %q", view)
	}
	if !strings.Contains(view, "alice") {
		t.Errorf("header should contain username, got %q", view)
	}
	if strings.Contains(view, "(admin)") {
		t.Error("non-admin should not be labeled admin")
	}
}

func TestHeader_View_Admin(t *testing.T) {
	header := NewHeader()
	header.SetWidth(80)
	header.SetUser("root", true)

	if !strings.Contains(stripANSI(header.View()), "root (admin)") {
		t.Error("admin should be labeled")
	}
}

func TestHeader_Notice(t *testing.T) {
	header := NewHeader()
	header.SetWidth(80)
	header.SetChatName("team")
	header.SetNotice("All messages read")

	if header.Notice() != "All messages read" {
		t.Errorf("unexpected notice %q", header.Notice())
	}
	if !strings.Contains(stripANSI(header.View()), "All messages read") {
		t.Error("notice should render")
	}

	header.SetNotice("")
	if strings.Contains(stripANSI(header.View()), "All messages read") {
		t.Error("cleared notice should not render")
	}
}

func TestHeader_View_FillsWidth(t *testing.T) {
	header := NewHeader()
	header.SetWidth(60)
	header.SetUser("alice", false)

	view := stripANSI(header.View())
	if w := runewidth.StringWidth(view); w != 60 {
		t.Errorf("expected width 60, got %d", w)
	}
}

func TestHeader_View_Truncates(t *testing.T) {
	header := NewHeader()
	header.SetWidth(20)
	header.SetUser("alice", false)
	header.SetChatName("a very long chat name that overflows")

	view := stripANSI(header.View())
	if w := runewidth.StringWidth(view); w > 20 {
		t.Errorf("expected width at most 20, got %d", w)
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#7C3AED")
	if r != 0x7C || g != 0x3A || b != 0xED {
		t.Errorf("got %d,%d,%d", r, g, b)
	}

	r, g, b = parseHexColor("bad")
	if r != 0 || g != 0 || b != 0 {
		t.Error("invalid color should parse to zero")
	}
}
