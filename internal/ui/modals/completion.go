package modals

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions are the file types accepted for avatars and chat photos.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// IsImagePath reports whether path has an image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// PathCompleter completes filesystem paths for the file pickers. Directories
// always complete with a trailing slash; files can be restricted to images.
type PathCompleter struct {
	imagesOnly  bool
	completions []string
	prefix      string
}

// NewPathCompleter creates a new path completer.
func NewPathCompleter(imagesOnly bool) *PathCompleter {
	return &PathCompleter{imagesOnly: imagesOnly}
}

// Reset clears the current completion state.
// Call this when the input changes (not via tab completion).
func (pc *PathCompleter) Reset() {
	pc.completions = nil
	pc.prefix = ""
}

// Completions returns the current list of completions.
func (pc *PathCompleter) Completions() []string {
	return pc.completions
}

// CommonPrefix returns the longest common prefix of all completions.
func (pc *PathCompleter) CommonPrefix() string {
	return commonPrefix(pc.completions)
}

// Generate populates the completions for path, expanding a leading ~.
func (pc *PathCompleter) Generate(path string) {
	path = ExpandHome(path)
	pc.prefix = path
	pc.completions = nil

	if path == "" {
		path = "./"
	}

	var dir, base string
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if !strings.HasSuffix(path, "/") {
			pc.completions = []string{path + "/"}
			return
		}
		dir = path
	} else {
		dir = filepath.Dir(path)
		base = filepath.Base(path)
		if strings.HasSuffix(path, "/") {
			base = ""
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(base)) {
			continue
		}
		full := filepath.Join(dir, name)
		if entry.IsDir() {
			pc.completions = append(pc.completions, full+"/")
			continue
		}
		if pc.imagesOnly && !IsImagePath(name) {
			continue
		}
		pc.completions = append(pc.completions, full)
	}

	sort.Strings(pc.completions)
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// commonPrefix finds the longest common prefix among all strings.
func commonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	prefix := strs[0]
	for _, s := range strs[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
