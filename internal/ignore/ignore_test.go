package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, ".secscanignore")
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\r\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 patterns, got %d", m.Len())
	}
	cases := map[string]bool{
		"node_modules/pkg/index.js": true,
		"certs/key.pem":             true,
		"secret.env":                true,
		"src/app.go":                false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if m.Match("anything") {
		t.Fatal("empty matcher matched")
	}
}

func TestLoadRoot_MergesAndNegates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".secscanignore"), []byte("fixtures/\n!keep.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Match("debug.log") {
		t.Fatal("expected *.log from .gitignore to apply")
	}
	if !m.Match("fixtures/aws.txt") {
		t.Fatal("expected fixtures/ from .secscanignore to apply")
	}
	if m.Match("keep.log") {
		t.Fatal("expected !keep.log to re-include")
	}
}

func TestMatcher_ZeroValue(t *testing.T) {
	var m Matcher
	if m.Len() != 0 || m.Match("any/path.go") {
		t.Fatal("zero Matcher should match nothing")
	}
	m.Add("*.go")
	if !m.Match("any/path.go") {
		t.Fatal("zero Matcher should accept patterns via Add")
	}
}
