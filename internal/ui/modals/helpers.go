package modals

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// RenderSelectableList renders a simple list with selection highlighting.
// Returns the rendered list string. selectedIndex indicates which item is selected.
func RenderSelectableList(items []string, selectedIndex int) string {
	var result strings.Builder
	for i, item := range items {
		style := SidebarItemStyle
		prefix := "  "
		if i == selectedIndex {
			style = SidebarSelectedStyle
			prefix = "> "
		}
		result.WriteString(style.Render(prefix+item) + "\n")
	}
	return result.String()
}

// visibleWindow returns the [start, end) range of a list of n items that keeps
// selected inside a window of max rows.
func visibleWindow(n, selected, max int) (int, int) {
	if n <= max {
		return 0, n
	}
	start := 0
	if selected >= max {
		start = selected - max + 1
	}
	return start, min(start+max, n)
}

// TruncateString truncates a string to a display width with an ellipsis
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// orDash renders an empty value as a dash.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
