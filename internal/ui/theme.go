package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/zhubert/messly/internal/logger"
)

// Theme defines a complete color palette for the application.
// Custom themes are YAML files using the same keys as the yaml tags below.
type Theme struct {
	Name string `yaml:"name"`

	// Primary is the main accent color (focus, highlights, header)
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`

	Bg         string `yaml:"bg"`
	BgSelected string `yaml:"bg_selected"` // defaults to Primary

	Text        string `yaml:"text"`
	TextMuted   string `yaml:"text_muted"`
	TextInverse string `yaml:"text_inverse"`

	// Message authors
	Own    string `yaml:"own"`    // messages from the current user
	Other  string `yaml:"other"`  // messages from everyone else
	System string `yaml:"system"` // server notices

	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
	Info    string `yaml:"info"`
	Success string `yaml:"success"`

	Border      string `yaml:"border"`
	BorderFocus string `yaml:"border_focus"` // defaults to Primary

	Online string `yaml:"online"`
	Badge  string `yaml:"badge"`

	Code      string `yaml:"code"`
	CodeBg    string `yaml:"code_bg"`
	Link      string `yaml:"link"`
	CodeStyle string `yaml:"code_style"` // chroma style name for fenced blocks

	SelectionBg string `yaml:"selection_bg"`
	SelectionFg string `yaml:"selection_fg"`
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemeDarkPurple ThemeName = "dark-purple"
	ThemeNord       ThemeName = "nord"
	ThemeDracula    ThemeName = "dracula"
	ThemeGruvbox    ThemeName = "gruvbox"
	ThemeCatppuccin ThemeName = "catppuccin"
	ThemeLight      ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDarkPurple

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDarkPurple: {
		Name:        "Dark Purple",
		Primary:     "#7C3AED",
		Secondary:   "#06B6D4",
		Bg:          "#1F2937",
		Text:        "#F9FAFB",
		TextMuted:   "#9CA3AF",
		TextInverse: "#1F2937",
		Own:         "#A78BFA",
		Other:       "#22D3EE",
		System:      "#9CA3AF",
		Warning:     "#F59E0B",
		Error:       "#EF4444",
		Info:        "#06B6D4",
		Success:     "#10B981",
		Border:      "#374151",
		Online:      "#4ADE80",
		Badge:       "#F472B6",
		Code:        "#67E8F9",
		CodeBg:      "#1E1E2E",
		Link:        "#67E8F9",
		CodeStyle:   "monokai",
		SelectionBg: "#4C1D95",
		SelectionFg: "#F9FAFB",
	},
	ThemeNord: {
		Name:        "Nord",
		Primary:     "#88C0D0",
		Secondary:   "#81A1C1",
		Bg:          "#2E3440",
		Text:        "#ECEFF4",
		TextMuted:   "#D8DEE9",
		TextInverse: "#2E3440",
		Own:         "#A3BE8C",
		Other:       "#88C0D0",
		System:      "#4C566A",
		Warning:     "#EBCB8B",
		Error:       "#BF616A",
		Info:        "#81A1C1",
		Success:     "#A3BE8C",
		Border:      "#4C566A",
		Online:      "#A3BE8C",
		Badge:       "#B48EAD",
		Code:        "#A3BE8C",
		CodeBg:      "#242933",
		Link:        "#88C0D0",
		CodeStyle:   "nord",
		SelectionBg: "#434C5E",
		SelectionFg: "#ECEFF4",
	},
	ThemeDracula: {
		Name:        "Dracula",
		Primary:     "#BD93F9",
		Secondary:   "#8BE9FD",
		Bg:          "#282A36",
		Text:        "#F8F8F2",
		TextMuted:   "#6272A4",
		TextInverse: "#282A36",
		Own:         "#FF79C6",
		Other:       "#8BE9FD",
		System:      "#6272A4",
		Warning:     "#FFB86C",
		Error:       "#FF5555",
		Info:        "#8BE9FD",
		Success:     "#50FA7B",
		Border:      "#44475A",
		Online:      "#50FA7B",
		Badge:       "#FF79C6",
		Code:        "#50FA7B",
		CodeBg:      "#21222C",
		Link:        "#8BE9FD",
		CodeStyle:   "dracula",
		SelectionBg: "#44475A",
		SelectionFg: "#F8F8F2",
	},
	ThemeGruvbox: {
		Name:        "Gruvbox Dark",
		Primary:     "#FE8019",
		Secondary:   "#83A598",
		Bg:          "#282828",
		Text:        "#EBDBB2",
		TextMuted:   "#A89984",
		TextInverse: "#282828",
		Own:         "#FABD2F",
		Other:       "#83A598",
		System:      "#928374",
		Warning:     "#FE8019",
		Error:       "#FB4934",
		Info:        "#83A598",
		Success:     "#B8BB26",
		Border:      "#504945",
		Online:      "#B8BB26",
		Badge:       "#D3869B",
		Code:        "#B8BB26",
		CodeBg:      "#1D2021",
		Link:        "#83A598",
		CodeStyle:   "gruvbox",
		SelectionBg: "#504945",
		SelectionFg: "#FBF1C7",
	},
	ThemeCatppuccin: {
		Name:        "Catppuccin Mocha",
		Primary:     "#CBA6F7",
		Secondary:   "#89DCEB",
		Bg:          "#1E1E2E",
		Text:        "#CDD6F4",
		TextMuted:   "#6C7086",
		TextInverse: "#1E1E2E",
		Own:         "#F5C2E7",
		Other:       "#89DCEB",
		System:      "#6C7086",
		Warning:     "#FAB387",
		Error:       "#F38BA8",
		Info:        "#89DCEB",
		Success:     "#A6E3A1",
		Border:      "#313244",
		Online:      "#A6E3A1",
		Badge:       "#F5C2E7",
		Code:        "#A6E3A1",
		CodeBg:      "#181825",
		Link:        "#89DCEB",
		CodeStyle:   "catppuccin-mocha",
		SelectionBg: "#45475A",
		SelectionFg: "#CDD6F4",
	},
	ThemeLight: {
		Name:        "Light",
		Primary:     "#6366F1",
		Secondary:   "#0891B2",
		Bg:          "#FFFFFF",
		BgSelected:  "#E0E7FF",
		Text:        "#1F2937",
		TextMuted:   "#6B7280",
		TextInverse: "#FFFFFF",
		Own:         "#7C3AED",
		Other:       "#0891B2",
		System:      "#9CA3AF",
		Warning:     "#D97706",
		Error:       "#DC2626",
		Info:        "#0891B2",
		Success:     "#16A34A",
		Border:      "#D1D5DB",
		BorderFocus: "#6366F1",
		Online:      "#16A34A",
		Badge:       "#DB2777",
		Code:        "#059669",
		CodeBg:      "#F3F4F6",
		Link:        "#0891B2",
		CodeStyle:   "github",
		SelectionBg: "#C7D2FE",
		SelectionFg: "#1F2937",
	},
}

// customThemes holds themes loaded from the user's themes directory.
var customThemes = map[ThemeName]Theme{}

// ThemeNames returns all available theme names: built-ins in display order,
// then custom themes sorted by name.
func ThemeNames() []ThemeName {
	names := []ThemeName{
		ThemeDarkPurple,
		ThemeNord,
		ThemeDracula,
		ThemeGruvbox,
		ThemeCatppuccin,
		ThemeLight,
	}
	var custom []ThemeName
	for name := range customThemes {
		custom = append(custom, name)
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i] < custom[j] })
	return append(names, custom...)
}

// GetTheme returns a theme by name, defaulting to DarkPurple if not found
func GetTheme(name ThemeName) Theme {
	if theme, ok := BuiltinThemes[name]; ok {
		return theme
	}
	if theme, ok := customThemes[name]; ok {
		return theme
	}
	return BuiltinThemes[DefaultTheme]
}

// LoadCustomThemes registers every *.yaml / *.yml file in dir as a theme
// named after the file. Missing colors are filled from the default theme.
// A missing directory is not an error. Files that fail to parse are skipped
// and reported in the returned error; the rest still load.
func LoadCustomThemes(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read themes dir: %w", err)
	}

	log := logger.WithComponent("theme")
	var failed []string
	loaded := 0
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			failed = append(failed, e.Name())
			continue
		}
		var t Theme
		if err := yaml.Unmarshal(data, &t); err != nil {
			log.Warn("invalid theme file", "path", path, "error", err)
			failed = append(failed, e.Name())
			continue
		}
		name := ThemeName(strings.TrimSuffix(e.Name(), ext))
		if _, builtin := BuiltinThemes[name]; builtin {
			log.Warn("custom theme shadows a built-in, skipping", "name", name)
			failed = append(failed, e.Name())
			continue
		}
		if t.Name == "" {
			t.Name = string(name)
		}
		customThemes[name] = withDefaults(t)
		loaded++
	}
	log.Debug("custom themes loaded", "dir", dir, "count", loaded)

	if len(failed) > 0 {
		return loaded, fmt.Errorf("could not load themes: %s", strings.Join(failed, ", "))
	}
	return loaded, nil
}

// withDefaults fills empty colors from the default theme.
func withDefaults(t Theme) Theme {
	d := BuiltinThemes[DefaultTheme]
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&t.Primary, d.Primary)
	fill(&t.Secondary, d.Secondary)
	fill(&t.Bg, d.Bg)
	fill(&t.Text, d.Text)
	fill(&t.TextMuted, d.TextMuted)
	fill(&t.TextInverse, d.TextInverse)
	fill(&t.Own, d.Own)
	fill(&t.Other, d.Other)
	fill(&t.System, d.System)
	fill(&t.Warning, d.Warning)
	fill(&t.Error, d.Error)
	fill(&t.Info, d.Info)
	fill(&t.Success, d.Success)
	fill(&t.Border, d.Border)
	fill(&t.Online, d.Online)
	fill(&t.Badge, d.Badge)
	fill(&t.Code, d.Code)
	fill(&t.CodeBg, d.CodeBg)
	fill(&t.Link, d.Link)
	fill(&t.CodeStyle, d.CodeStyle)
	fill(&t.SelectionBg, d.SelectionBg)
	fill(&t.SelectionFg, d.SelectionFg)
	return t
}

// currentTheme holds the active theme
var currentTheme = BuiltinThemes[DefaultTheme]
var currentThemeName = DefaultTheme

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// CurrentThemeName returns the name of the current theme
func CurrentThemeName() ThemeName {
	return currentThemeName
}

// SetTheme sets the active theme and regenerates all styles
func SetTheme(name ThemeName) {
	if _, ok := BuiltinThemes[name]; !ok {
		if _, ok := customThemes[name]; !ok {
			name = DefaultTheme
		}
	}
	currentThemeName = name
	currentTheme = GetTheme(name)
	regenerateStyles()
	RefreshModalStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

// NextTheme returns the theme after current in ThemeNames order, wrapping around
func NextTheme(current ThemeName) ThemeName {
	names := ThemeNames()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
