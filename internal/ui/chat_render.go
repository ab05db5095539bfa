package ui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/zhubert/messly/internal/api"
)

// Compiled regex patterns for message markup
var (
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underscoreItalic  = regexp.MustCompile(`(?:^|[^a-zA-Z0-9_])_([^_]+)_(?:[^a-zA-Z0-9_]|$)`)
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Gutter drawn to the left of every transcript line. The cursor variant marks
// the message selected in browse mode.
const (
	gutterWidth  = 2
	gutterPlain  = "  "
	gutterCursor = "▌ "
)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(CurrentTheme().CodeStyle)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return strings.TrimRight(buf.String(), "\n")
}

// renderInlineMarkdown applies inline formatting (bold, italic, code, links) to a line
func renderInlineMarkdown(line string) string {
	// Code spans are swapped for placeholders so no other markup applies inside them
	var codeSpans []string
	line = inlineCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		code := inlineCodePattern.FindStringSubmatch(match)[1]
		placeholder := fmt.Sprintf("\x00CODE%d\x00", len(codeSpans))
		codeSpans = append(codeSpans, InlineCodeStyle.Render(code))
		return placeholder
	})

	line = boldPattern.ReplaceAllStringFunc(line, func(match string) string {
		return BoldStyle.Render(boldPattern.FindStringSubmatch(match)[1])
	})

	// Underscores only count at word boundaries, so snake_case stays intact
	italic := lipgloss.NewStyle().Italic(true)
	line = underscoreItalic.ReplaceAllStringFunc(line, func(match string) string {
		text := underscoreItalic.FindStringSubmatch(match)[1]
		start := strings.Index(match, "_"+text+"_")
		end := start + len(text) + 2
		return match[:start] + italic.Render(text) + match[end:]
	})

	line = linkPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		return LinkStyle.Render(parts[1]) + " (" + LinkStyle.Render(parts[2]) + ")"
	})

	for i, rendered := range codeSpans {
		line = strings.Replace(line, fmt.Sprintf("\x00CODE%d\x00", i), rendered, 1)
	}

	return line
}

// wrapText wraps text to the specified width, handling ANSI escape codes.
// Words longer than the width are broken.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}

// renderMarkdown renders message content with syntax-highlighted code blocks
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var result strings.Builder
	inCodeBlock := false
	codeBlockLang := ""
	var codeBlockContent strings.Builder

	flushCode := func() {
		highlighted := highlightCode(codeBlockContent.String(), codeBlockLang)
		for _, l := range strings.Split(highlighted, "\n") {
			result.WriteString(ansi.Truncate(l, width, "…"))
			result.WriteString("\n")
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
				codeBlockContent.Reset()
			} else {
				inCodeBlock = false
				flushCode()
				codeBlockLang = ""
			}
			continue
		}

		if inCodeBlock {
			if codeBlockContent.Len() > 0 {
				codeBlockContent.WriteString("\n")
			}
			codeBlockContent.WriteString(line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "> ") {
			quote := lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
			result.WriteString(quote.Render(wrapText("│ "+renderInlineMarkdown(trimmed[2:]), width)))
		} else {
			result.WriteString(ChatMessageStyle.Render(wrapText(renderInlineMarkdown(line), width)))
		}
		result.WriteString("\n")
	}

	// An unterminated block still shows what was typed
	if inCodeBlock {
		flushCode()
	}

	return strings.TrimRight(result.String(), "\n")
}

// formatMessageTime shows the clock time for today's messages and the date
// for older ones.
func formatMessageTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.Local()
	n := now.Local()
	if local.Year() == n.Year() && local.YearDay() == n.YearDay() {
		return local.Format("15:04")
	}
	if local.Year() == n.Year() {
		return local.Format("Jan 2 15:04")
	}
	return local.Format("Jan 2 2006")
}

// likeCount counts the like reactions on a message
func likeCount(m api.Message) int {
	n := 0
	for _, r := range m.Reactions {
		if r.ReactionName == api.ReactionLike {
			n++
		}
	}
	return n
}

// renderMessage renders one transcript entry without its gutter.
// resolve turns backend-relative asset paths into absolute URLs.
func renderMessage(m api.Message, me string, width int, now time.Time, resolve func(string) string) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	if m.IsSystem {
		text := ChatSystemStyle.Render(wrapText("· "+m.Content+" ·", width))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
	}

	var sb strings.Builder

	authorStyle := ChatOtherStyle
	if m.Author == me {
		authorStyle = ChatOwnStyle
	}
	sb.WriteString(authorStyle.Render(m.Author))
	if ts := formatMessageTime(m.SentAt.Time, now); ts != "" {
		sb.WriteString("  ")
		sb.WriteString(ChatTimestampStyle.Render(ts))
	}
	if m.Author == me {
		switch m.Status {
		case api.StatusRead:
			sb.WriteString(" " + OnlineStyle.Render("✓✓"))
		case api.StatusUnread:
			sb.WriteString(" " + ChatTimestampStyle.Render("✓"))
		}
	}

	if strings.TrimSpace(m.Content) != "" {
		sb.WriteString("\n")
		sb.WriteString(renderMarkdown(m.Content, width))
	}

	if m.HasFile() {
		label := "📎 " + m.DisplayFilename()
		if m.IsImage {
			label = "🖼 " + m.DisplayFilename()
		}
		url := m.FileURL
		if resolve != nil {
			url = resolve(url)
		}
		sb.WriteString("\n")
		sb.WriteString(AttachmentStyle.Render(ansi.Truncate(label, width, "…")))
		sb.WriteString("\n")
		sb.WriteString(ChatTimestampStyle.Render(ansi.Truncate(url, width, "…")))
	}

	if n := likeCount(m); n > 0 {
		like := fmt.Sprintf("♥ %d", n)
		if m.LikedBy(me) {
			like += " · you"
		}
		sb.WriteString("\n")
		sb.WriteString(ReactionStyle.Render(like))
	}

	return sb.String()
}

// withGutter prefixes every line of block with the plain or cursor gutter
func withGutter(block string, selected bool) string {
	gutter := gutterPlain
	if selected {
		gutter = ChatCursorStyle.Render(gutterCursor)
	}
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = gutter + l
	}
	return strings.Join(lines, "\n")
}

// renderNoChatMessage renders the placeholder shown when no chat is open
func renderNoChatMessage() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(msgStyle.Italic(true).Render("No chat selected"))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("To get started:"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Pick a chat and press "))
	sb.WriteString(keyStyle.Render("enter"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("n"))
	sb.WriteString(msgStyle.Render(" to start a new chat"))
	return sb.String()
}
