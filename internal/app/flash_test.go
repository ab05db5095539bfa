package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestSaveConfigOrFlash_Success(t *testing.T) {
	m, _ := testModelWithSize(t, nil, 120, 40)

	cmd := m.saveConfigOrFlash()
	if cmd != nil {
		t.Error("expected nil cmd on successful save, got non-nil")
	}
}

func TestSaveConfigOrFlash_Error(t *testing.T) {
	m, _ := testModelWithSize(t, nil, 120, 40)
	// Use a path that will fail (directory can't be created)
	m.config.SetFilePath("/dev/null/messly/config.json")

	cmd := m.saveConfigOrFlash()
	if cmd == nil {
		t.Error("expected non-nil cmd on failed save, got nil")
	}
	if !m.footer.HasFlash() {
		t.Error("expected a warning flash")
	}
}

func TestShowFlash_Kinds(t *testing.T) {
	m, _ := testModelWithSize(t, nil, 120, 40)

	for _, show := range []func(string) tea.Cmd{
		m.ShowFlashError,
		m.ShowFlashWarning,
		m.ShowFlashInfo,
		m.ShowFlashSuccess,
	} {
		m.footer.ClearFlash()
		if cmd := show("hello"); cmd == nil {
			t.Error("expected a tick command")
		}
		if !m.footer.HasFlash() {
			t.Error("expected flash to be set")
		}
	}
}
