package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.md"), "beta")
	writeFile(t, filepath.Join(dir, "c.csv"), "gamma")
	writeFile(t, filepath.Join(dir, "sub", "d.txt"), "delta")
	writeFile(t, filepath.Join(dir, "skip", "e.txt"), "epsilon")

	l := NewLoader([]string{"**/*.txt", "**/*.md"}, []string{"skip/**"})
	paths, err := l.Resolve([]string{dir})
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)

	want := []string{"a.txt", "b.md", "d.txt"}
	if len(names) != len(want) {
		t.Fatalf("resolved %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("resolved %v, want %v", names, want)
		}
	}
}

func TestLoaderResolvePlainFileBypassesPatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	writeFile(t, path, "data")

	l := NewLoader([]string{"**/*.txt"}, nil)
	paths, err := l.Resolve([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Errorf("explicit file path should resolve as-is, got %v", paths)
	}
}

func TestLoaderResolveMissingPath(t *testing.T) {
	l := NewLoader(nil, nil)
	if _, err := l.Resolve([]string{"/nonexistent/path"}); err == nil {
		t.Error("expected an error for a missing path")
	}
}

func TestLoaderLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "# Notes\n\nSome content.")

	name, text, err := NewLoader(nil, nil).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if name != "notes.md" {
		t.Errorf("name %q, want notes.md", name)
	}
	if text != "# Notes\n\nSome content." {
		t.Errorf("unexpected text %q", text)
	}
}
