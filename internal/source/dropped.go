package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
)

// MaxDroppedFileSize bounds the files read from a drop. Files of this size
// or larger are skipped whole, never truncated.
const MaxDroppedFileSize = 10 * 1024 * 1024

// fileSeparator is placed between the contents of consecutive files.
const fileSeparator = "\n\n\n"

// Skipped describes a dropped path that contributed no text.
type Skipped struct {
	Path   string
	Reason string
	Size   int64
}

func (s Skipped) String() string {
	if s.Size > 0 {
		return fmt.Sprintf("%s: %s (%s)", s.Path, s.Reason, humanize.IBytes(uint64(s.Size))) //nolint:gosec
	}
	return fmt.Sprintf("%s: %s", s.Path, s.Reason)
}

// ReadDropped reads every path in payload, one per line, and joins the
// contents of the readable regular files. Markdown files are converted to
// speech text first. Paths that could not be used are reported in skipped.
func ReadDropped(payload string) (text string, skipped []Skipped) {
	var parts []string
	for _, path := range droppedPaths(payload) {
		body, skip := readDroppedFile(path)
		if skip != nil {
			log.Debug("Skipping dropped file", "path", skip.Path, "reason", skip.Reason)
			skipped = append(skipped, *skip)
			continue
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, fileSeparator), skipped
}

// LooksLikeDrop reports whether every non-empty line of paste names an
// existing file. Terminals paste the paths of files dragged onto them.
func LooksLikeDrop(paste string) bool {
	paths := droppedPaths(paste)
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// droppedPaths splits a payload into cleaned, expanded paths. Terminals
// quote or escape paths containing spaces; both forms are undone.
func droppedPaths(payload string) []string {
	var paths []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = unquotePath(line)
		line = strings.TrimPrefix(line, "file://")
		if expanded, err := homedir.Expand(line); err == nil {
			line = expanded
		}
		paths = append(paths, filepath.Clean(line))
	}
	return paths
}

func unquotePath(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}

func readDroppedFile(path string) (string, *Skipped) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Skipped{Path: path, Reason: "not found"}
	}
	if !info.Mode().IsRegular() {
		return "", &Skipped{Path: path, Reason: "not a regular file"}
	}
	if info.Size() >= MaxDroppedFileSize {
		return "", &Skipped{Path: path, Reason: "too large", Size: info.Size()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Skipped{Path: path, Reason: "unreadable"}
	}
	if !utf8.Valid(data) {
		return "", &Skipped{Path: path, Reason: "not text", Size: info.Size()}
	}

	if IsMarkdown(path) {
		return MarkdownToSpeech(string(data)), nil
	}
	return string(data), nil
}
