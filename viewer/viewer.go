// Package viewer handles content dropped onto the load-pulse text pane.
// In a terminal a drop arrives as a bracketed paste (most terminals paste
// the path of a file dragged onto them) or as command-line arguments.
package viewer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// DropKind classifies a dropped payload.
type DropKind int

const (
	DropText DropKind = iota
	DropFiles
	DropURL
)

func (k DropKind) String() string {
	switch k {
	case DropFiles:
		return "files"
	case DropURL:
		return "url"
	default:
		return "text"
	}
}

// Drop is a classified payload.
type Drop struct {
	Kind  DropKind
	Paths []string // DropFiles only
	URL   string   // DropURL only
	Text  string   // the raw payload
}

// DefaultExtensions are the file types the viewer accepts.
var DefaultExtensions = []string{"java", "class", "txt", "log", "css"}

// Classify decides what a payload is. It is DropFiles when every non-empty
// line names an existing regular file, DropURL when the payload is a single
// http, https or ftp URL, and DropText otherwise.
func Classify(payload string) Drop {
	d := Drop{Kind: DropText, Text: payload}

	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return d
	}

	if paths, ok := existingPaths(trimmed); ok {
		d.Kind = DropFiles
		d.Paths = paths
		return d
	}

	if !strings.ContainsAny(trimmed, " \t\n") {
		if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
			switch u.Scheme {
			case "http", "https", "ftp":
				d.Kind = DropURL
				d.URL = u.String()
				return d
			}
		}
	}

	return d
}

// existingPaths returns the cleaned paths when every line of s names files.
// A line is one path as a whole, or a shell-quoted list of paths, which is
// how terminals paste several files dragged at once.
func existingPaths(s string) ([]string, bool) {
	var paths []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if p := cleanPath(line); isRegularFile(p) {
			paths = append(paths, p)
			continue
		}
		words, err := shlex.Split(strings.TrimRight(line, "\r"))
		if err != nil || len(words) == 0 {
			return nil, false
		}
		for _, w := range words {
			p := cleanPath(w)
			if !isRegularFile(p) {
				return nil, false
			}
			paths = append(paths, p)
		}
	}
	return paths, len(paths) > 0
}

func isRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// cleanPath strips what terminals add around dragged paths: surrounding
// quotes, a file:// scheme, and backslash-escaped spaces.
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "\r")
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}

// Matcher validates file extensions.
type Matcher struct {
	patterns []string
}

// NewMatcher builds a Matcher for the given extensions, with or without a
// leading dot. An empty list selects DefaultExtensions.
func NewMatcher(exts []string) *Matcher {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	m := &Matcher{}
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e == "" {
			continue
		}
		m.patterns = append(m.patterns, "*."+e)
	}
	return m
}

// Match reports whether path has an accepted extension.
func (m *Matcher) Match(path string) bool {
	base := filepath.Base(path)
	for _, p := range m.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// AllSupported reports whether every path matches. An empty list is not
// supported.
func (m *Matcher) AllSupported(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !m.Match(p) {
			return false
		}
	}
	return true
}

// Extensions returns the accepted extensions without dots.
func (m *Matcher) Extensions() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = strings.TrimPrefix(p, "*.")
	}
	return out
}

// Reader loads dropped files into a single text body.
type Reader struct {
	logger *slog.Logger
	open   func(string) (io.ReadCloser, error)
}

// NewReader creates a Reader. If logger is nil, a no-op logger is used.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{
		logger: logger,
		open: func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		},
	}
}

// ReadFiles joins the lines of each file with "\n" and the files with "\n".
// A file that cannot be read contributes an empty string and is reported
// in the returned error count; reading never stops early.
func (r *Reader) ReadFiles(paths []string) (string, int) {
	parts := make([]string, 0, len(paths))
	failed := 0
	for _, p := range paths {
		text, err := r.readFile(p)
		if err != nil {
			r.logger.Warn("read dropped file", "path", p, "error", err)
			failed++
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), failed
}

func (r *Reader) readFile(path string) (string, error) {
	f, err := r.open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("viewer: read %s: %w", path, err)
	}
	return strings.Join(lines, "\n"), nil
}
