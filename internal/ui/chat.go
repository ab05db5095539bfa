package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/logger"
)

// MessageDoubleClickedMsg is emitted when a message line is double-clicked.
// X and Y are in chat panel coordinates.
type MessageDoubleClickedMsg struct {
	MessageID int
	X, Y      int
}

// Chat represents the right panel with the open chat's transcript
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool

	me       string
	chatID   int
	chatName string
	kind     api.ChatKind
	hasChat  bool
	loading  bool
	messages []api.Message
	upload   *UploadState

	// Browse mode puts a cursor on a message instead of typing
	browsing bool
	cursor   int

	// lineOwners maps each content line to the message index drawn on it, -1 for separators
	lineOwners []int
	msgStart   []int

	resolveAsset func(string) string
	now          func() time.Time

	selection *TextSelection
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""
	// Enter sends; the app intercepts it before the textarea sees it
	ti.KeyMap.InsertNewline.SetKeys("shift+enter", "ctrl+j")

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport:  vp,
		input:     ti,
		cursor:    -1,
		now:       time.Now,
		selection: NewTextSelection(),
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	ctx := GetViewContext()

	chatPanelHeight := height - InputTotalHeight

	innerWidth := ctx.InnerWidth(width)
	viewportHeight := ctx.InnerHeight(chatPanelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)

	// Input width accounts for its own border AND padding
	c.input.SetWidth(ctx.InnerWidth(width) - InputPaddingWidth)

	logger.WithComponent("ui").Debug("Chat.SetSize",
		"width", width, "height", height,
		"viewportWidth", c.viewport.Width(), "viewportHeight", c.viewport.Height())

	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused && !c.browsing {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetIdentity sets the signed-in username used to tell own messages apart
func (c *Chat) SetIdentity(username string) {
	c.me = username
	c.updateContent()
}

// SetAssetResolver sets how attachment paths are turned into URLs
func (c *Chat) SetAssetResolver(resolve func(string) string) {
	c.resolveAsset = resolve
}

// OpenChat shows an empty, loading transcript for the given chat
func (c *Chat) OpenChat(id int, name string, kind api.ChatKind) {
	c.chatID = id
	c.chatName = name
	c.kind = kind
	c.hasChat = true
	c.loading = true
	c.messages = nil
	c.browsing = false
	c.cursor = -1
	c.upload = nil
	c.SelectionClear()
	c.input.Reset()
	c.SetFocused(c.focused)
	c.updateContent()
	c.viewport.GotoBottom()
}

// CloseChat returns the panel to its placeholder
func (c *Chat) CloseChat() {
	c.chatID = 0
	c.chatName = ""
	c.kind = ""
	c.hasChat = false
	c.loading = false
	c.messages = nil
	c.browsing = false
	c.cursor = -1
	c.upload = nil
	c.SelectionClear()
	c.input.Reset()
	c.updateContent()
}

// SetChatName renames the open chat
func (c *Chat) SetChatName(name string) {
	c.chatName = name
}

// ChatName returns the open chat's name
func (c *Chat) ChatName() string {
	return c.chatName
}

// HasChat reports whether a chat is open
func (c *Chat) HasChat() bool {
	return c.hasChat
}

// ChatID returns the open chat's id, 0 when none
func (c *Chat) ChatID() int {
	return c.chatID
}

// Kind returns the open chat's kind
func (c *Chat) Kind() api.ChatKind {
	return c.kind
}

// IsLoading reports whether the history is still being fetched
func (c *Chat) IsLoading() bool {
	return c.loading
}

// SetMessages replaces the rendered transcript. The view stays pinned to the
// bottom if it was there, and the browse cursor follows its message.
func (c *Chat) SetMessages(messages []api.Message) {
	selectedID := -1
	if m, ok := c.SelectedMessage(); ok {
		selectedID = m.ID
	}

	atBottom := c.viewport.AtBottom() || c.loading
	c.loading = false
	c.messages = messages

	if c.browsing {
		c.cursor = -1
		for i, m := range messages {
			if m.ID == selectedID {
				c.cursor = i
				break
			}
		}
		if c.cursor < 0 {
			c.cursor = len(messages) - 1
		}
		if c.cursor < 0 {
			c.browsing = false
			c.SetFocused(c.focused)
		}
	}

	c.updateContent()
	if atBottom && !c.browsing {
		c.viewport.GotoBottom()
	}
}

// Messages returns the rendered transcript
func (c *Chat) Messages() []api.Message {
	return c.messages
}

// GetInput returns the current input text
func (c *Chat) GetInput() string {
	return c.input.Value()
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput sets the input text
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// SetUploading shows an upload in progress in place of the input. nil clears it.
func (c *Chat) SetUploading(u *UploadState) {
	c.upload = u
}

// IsUploading reports whether an upload is in flight
func (c *Chat) IsUploading() bool {
	return c.upload != nil
}

// StartBrowsing moves focus from the input to the newest message. It reports
// false when there is nothing to browse.
func (c *Chat) StartBrowsing() bool {
	if len(c.messages) == 0 {
		return false
	}
	c.browsing = true
	c.cursor = len(c.messages) - 1
	c.input.Blur()
	c.updateContent()
	c.ensureCursorVisible()
	return true
}

// StopBrowsing returns focus to the input
func (c *Chat) StopBrowsing() {
	c.browsing = false
	c.cursor = -1
	c.SetFocused(c.focused)
	c.updateContent()
}

// IsBrowsing reports whether the message cursor is active
func (c *Chat) IsBrowsing() bool {
	return c.browsing
}

// MoveCursor moves the browse cursor by delta messages
func (c *Chat) MoveCursor(delta int) {
	if !c.browsing || len(c.messages) == 0 {
		return
	}
	c.cursor += delta
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.cursor >= len(c.messages) {
		c.cursor = len(c.messages) - 1
	}
	c.updateContent()
	c.ensureCursorVisible()
}

// SelectedMessage returns the message under the browse cursor
func (c *Chat) SelectedMessage() (api.Message, bool) {
	if !c.browsing || c.cursor < 0 || c.cursor >= len(c.messages) {
		return api.Message{}, false
	}
	return c.messages[c.cursor], true
}

// MessageAtLine returns the message drawn on viewport line y
func (c *Chat) MessageAtLine(y int) (api.Message, bool) {
	line := c.viewport.YOffset() + y
	if y < 0 || line < 0 || line >= len(c.lineOwners) {
		return api.Message{}, false
	}
	idx := c.lineOwners[line]
	if idx < 0 || idx >= len(c.messages) {
		return api.Message{}, false
	}
	return c.messages[idx], true
}

// ScrollToBottom jumps to the newest message
func (c *Chat) ScrollToBottom() {
	c.viewport.GotoBottom()
}

// ensureCursorVisible scrolls so the selected message is on screen
func (c *Chat) ensureCursorVisible() {
	if c.cursor < 0 || c.cursor >= len(c.msgStart) {
		return
	}
	start := c.msgStart[c.cursor]
	end := start
	for end+1 < len(c.lineOwners) && c.lineOwners[end+1] == c.cursor {
		end++
	}
	top := c.viewport.YOffset()
	h := c.viewport.Height()
	switch {
	case start < top:
		c.viewport.SetYOffset(start)
	case end >= top+h:
		offset := end - h + 1
		if offset > start {
			offset = start
		}
		c.viewport.SetYOffset(offset)
	}
}

// updateContent re-renders the transcript into the viewport
func (c *Chat) updateContent() {
	width := c.viewport.Width() - gutterWidth
	if width <= 0 {
		width = DefaultWrapWidth
	}

	c.lineOwners = c.lineOwners[:0]
	c.msgStart = c.msgStart[:0]

	var lines []string
	switch {
	case !c.hasChat:
	case c.loading && len(c.messages) == 0:
		lines = append(lines, StatusLoadingStyle.Render("Loading messages..."))
		c.lineOwners = append(c.lineOwners, -1)
	case len(c.messages) == 0:
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).Render("No messages yet. Say hello!"))
		c.lineOwners = append(c.lineOwners, -1)
	default:
		now := c.now()
		for i, m := range c.messages {
			if i > 0 {
				lines = append(lines, "")
				c.lineOwners = append(c.lineOwners, -1)
			}
			c.msgStart = append(c.msgStart, len(lines))
			block := withGutter(renderMessage(m, c.me, width, now, c.resolveAsset), c.browsing && i == c.cursor)
			for _, l := range strings.Split(block, "\n") {
				lines = append(lines, l)
				c.lineOwners = append(c.lineOwners, i)
			}
		}
	}

	c.viewport.SetContent(strings.Join(lines, "\n"))
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case SelectionFlashTickMsg:
		if c.selection.FlashFrame == 0 {
			c.selection.FlashFrame = -1
			c.SelectionClear()
		}
		return c, nil

	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft || !c.hasChat {
			return c, nil
		}
		x, y := msg.X-1, msg.Y-1
		if !c.inViewport(x, y) {
			return c, nil
		}
		return c, c.handleMouseClick(x, y)

	case tea.MouseMotionMsg:
		if c.selection.Active {
			c.EndSelection(c.clampToViewport(msg.X-1, msg.Y-1))
		}
		return c, nil

	case tea.MouseReleaseMsg:
		if !c.selection.Active {
			return c, nil
		}
		c.EndSelection(c.clampToViewport(msg.X-1, msg.Y-1))
		c.SelectionStop()
		if c.HasTextSelection() {
			return c, c.CopySelectedText()
		}
		c.SelectionClear()
		return c, nil
	}

	if c.focused && c.hasChat {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			key := keyMsg.String()
			switch key {
			case "pgup", "pgdown", "ctrl+up", "ctrl+down", "home", "end",
				"page up", "page down", "ctrl+u", "ctrl+d":
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				return c, cmd
			}

			if c.browsing {
				switch key {
				case "up", "k":
					c.MoveCursor(-1)
				case "down", "j":
					c.MoveCursor(1)
				}
				return c, nil
			}

			if c.upload != nil {
				return c, nil
			}

			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			return c, cmd
		}

		if !c.browsing && c.upload == nil {
			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// inViewport reports whether viewport-relative (x, y) is inside the transcript area
func (c *Chat) inViewport(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.viewport.Width() && y < c.viewport.Height()
}

// clampToViewport pins a drag position to the transcript area
func (c *Chat) clampToViewport(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w := c.viewport.Width(); x > w {
		x = w
	}
	if h := c.viewport.Height(); y >= h {
		y = h - 1
	}
	return x, y
}

// renderInputArea renders the textarea, or the upload status while a file is sent
func (c *Chat) renderInputArea() string {
	inputStyle := ChatInputStyle
	if c.focused && !c.browsing {
		inputStyle = ChatInputFocusedStyle
	}

	if c.upload != nil {
		status := "Uploading " + c.upload.Filename
		if c.upload.Size > 0 {
			status += " (" + humanize.Bytes(uint64(c.upload.Size)) + ")"
		}
		status += "..."
		return inputStyle.Width(c.width).Height(TextareaHeight + TextareaBorderHeight).
			Render(StatusLoadingStyle.Render(status))
	}

	if c.browsing {
		hint := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true).
			Render("Browsing messages. Esc to type.")
		return inputStyle.Width(c.width).Height(TextareaHeight + TextareaBorderHeight).Render(hint)
	}

	return inputStyle.Width(c.width).Render(c.input.View())
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	if !c.hasChat {
		return panelStyle.Width(c.width).Height(c.height).Render(renderNoChatMessage())
	}

	chatPanelHeight := c.height - InputTotalHeight
	chatPanel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(c.selectionView(c.viewport.View()))

	return lipgloss.JoinVertical(lipgloss.Left, chatPanel, c.renderInputArea())
}
