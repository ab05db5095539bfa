package modals

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/keys"
)

// PickPurpose says what the picked file is for.
type PickPurpose int

const (
	PickAttachment PickPurpose = iota
	PickChatPhoto
	PickAvatar
)

// MaxUploadSize is the largest file the pickers accept.
const MaxUploadSize = 20 << 20

// =============================================================================
// PathPickerState - choose a local file to upload
// =============================================================================

type PathPickerState struct {
	Purpose PickPurpose
	ChatID  int
	Input   textinput.Model

	completer       *PathCompleter
	lastValue       string
	showingOptions  bool
	completionIndex int
}

func (*PathPickerState) modalState() {}

func (s *PathPickerState) Title() string {
	switch s.Purpose {
	case PickChatPhoto:
		return "Chat Photo"
	case PickAvatar:
		return "Profile Picture"
	default:
		return "Attach File"
	}
}

func (s *PathPickerState) Help() string {
	if s.showingOptions {
		return "up/down select  Tab/Enter: choose  Esc: back"
	}
	return "Tab: complete path  Enter: upload  Esc: cancel"
}

func (s *PathPickerState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	label := "Path to a file:"
	if s.Purpose != PickAttachment {
		label = "Path to an image:"
	}
	parts := []string{title, mutedStyle().Render(label), s.Input.View()}

	if info := s.fileInfo(); info != "" {
		parts = append(parts, mutedStyle().Render(info))
	}

	if s.showingOptions {
		if completions := s.completer.Completions(); len(completions) > 0 {
			parts = append(parts, mutedStyle().MarginTop(1).Render("Completions:"), s.renderCompletionOptions(completions))
		}
	}

	parts = append(parts, ModalHelpStyle.Render(s.Help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// fileInfo describes the file currently named by the input, if it exists.
func (s *PathPickerState) fileInfo() string {
	info, err := os.Stat(s.Path())
	if err != nil || info.IsDir() {
		return ""
	}
	return humanize.Bytes(uint64(info.Size()))
}

func (s *PathPickerState) renderCompletionOptions(completions []string) string {
	start, end := visibleWindow(len(completions), s.completionIndex, CompletionsMaxShown)

	var lines []string
	for i := start; i < end; i++ {
		c := completions[i]
		display := filepath.Base(c)
		if strings.HasSuffix(c, "/") {
			display = filepath.Base(strings.TrimSuffix(c, "/")) + "/"
		}

		style := SidebarItemStyle
		prefix := "  "
		if i == s.completionIndex {
			style = SidebarSelectedStyle
			prefix = "> "
		}
		lines = append(lines, style.Render(prefix+display))
	}

	if len(completions) > CompletionsMaxShown {
		lines = append(lines, mutedStyle().Italic(true).
			Render("  ("+strconv.Itoa(len(completions))+" total, scroll with up/down)"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *PathPickerState) setValue(v string) {
	s.Input.SetValue(v)
	s.Input.CursorEnd()
	s.lastValue = v
}

func (s *PathPickerState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		key := keyMsg.String()

		if s.showingOptions {
			completions := s.completer.Completions()
			switch key {
			case keys.Up, "k":
				if s.completionIndex > 0 {
					s.completionIndex--
				}
				return s, nil
			case keys.Down, "j":
				if s.completionIndex < len(completions)-1 {
					s.completionIndex++
				}
				return s, nil
			case keys.Tab, keys.Enter:
				if s.completionIndex < len(completions) {
					s.setValue(completions[s.completionIndex])
				}
				s.showingOptions = false
				s.completer.Reset()
				return s, nil
			case keys.Escape:
				s.showingOptions = false
				s.completer.Reset()
				return s, nil
			default:
				s.showingOptions = false
				s.completer.Reset()
			}
		}

		if key == keys.Tab {
			current := s.Input.Value()
			s.completer.Generate(current)
			completions := s.completer.Completions()

			switch len(completions) {
			case 0:
			case 1:
				s.setValue(completions[0])
				s.completer.Reset()
			default:
				if common := s.completer.CommonPrefix(); common != "" && common != ExpandHome(current) {
					s.setValue(common)
					s.completer.Generate(common)
				}
				if len(s.completer.Completions()) > 1 {
					s.showingOptions = true
					s.completionIndex = 0
				}
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	if s.Input.Value() != s.lastValue {
		s.completer.Reset()
		s.showingOptions = false
		s.lastValue = s.Input.Value()
	}
	return s, cmd
}

// IsShowingOptions returns true if completion options are being displayed
func (s *PathPickerState) IsShowingOptions() bool {
	return s.showingOptions
}

// Path returns the entered path with ~ expanded.
func (s *PathPickerState) Path() string {
	return ExpandHome(strings.TrimSpace(s.Input.Value()))
}

// Validate checks that the path names a readable regular file of an accepted type.
func (s *PathPickerState) Validate() error {
	path := s.Path()
	if path == "" {
		return errors.ValidationFailed("path", "is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.ValidationFailed("path", "does not exist")
	}
	if info.IsDir() {
		return errors.ValidationFailed("path", "is a directory")
	}
	if info.Size() > MaxUploadSize {
		return errors.ValidationFailed("file", "is larger than "+humanize.Bytes(MaxUploadSize))
	}
	if s.Purpose != PickAttachment && !IsImagePath(path) {
		return errors.ValidationFailed("file", "must be an image")
	}
	return nil
}

// NewPathPickerState creates a file picker for the given purpose. chatID is
// the target chat for attachments and chat photos.
func NewPathPickerState(purpose PickPurpose, chatID int) *PathPickerState {
	ti := newTextInput("~/path/to/file")
	ti.Focus()

	return &PathPickerState{
		Purpose:   purpose,
		ChatID:    chatID,
		Input:     ti,
		completer: NewPathCompleter(purpose != PickAttachment),
	}
}
