package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"
)

// Loader resolves document paths against include/exclude glob patterns and
// extracts plain text from the supported formats.
type Loader struct {
	includes []string
	excludes []string
}

func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.txt", "**/*.md", "**/*.pdf"}
	}
	return &Loader{
		includes: includes,
		excludes: excludes,
	}
}

// Resolve expands the given arguments into concrete file paths. Plain file
// paths pass through as-is; directories are walked recursively with the
// include/exclude patterns applied to paths relative to each directory.
func (l *Loader) Resolve(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		walked, err := l.walk(arg)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		paths = append(paths, walked...)
	}
	return paths, nil
}

func (l *Loader) walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && l.matchAny(l.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if l.matchAny(l.includes, relPath) && !l.matchAny(l.excludes, relPath) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (l *Loader) matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// Load reads a file and returns its name and extracted plain text. PDF
// content goes through text extraction; everything else is read verbatim.
func (l *Loader) Load(path string) (name, text string, err error) {
	name = filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = ExtractPDF(path)
		return name, text, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return name, "", err
	}
	return name, string(data), nil
}

// ExtractPDF pulls the plain text out of a PDF file.
func ExtractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}
