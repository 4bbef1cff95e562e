package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscover_IgnoreGlobs(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("a.txt", "hello")
	mustWrite("b.go", "package main\n")
	mustWrite("docs/c.md", "doc")
	mustWrite("fixtures/keys/d.txt", "x")

	cfg := Config{Root: dir, Ignore: []string{"**/*.md", "fixtures/**"}, MaxBytes: 1 << 20}
	files, errs, err := Discover(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected read errors: %v", errs)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.Path)
	}
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "b.go" {
		t.Fatalf("ignore globs failed, got %v", got)
	}
}

func TestMatchAnyGlob(t *testing.T) {
	cases := []struct {
		rel  string
		glob string
		want bool
	}{
		{"src/key.pem", "*.pem", true},
		{"src/key.pem", "**/*.pem", true},
		{"key.pem", "./*.pem", true},
		{"src/app.js", "*.pem", false},
		{"test/fixtures/a.js", "test/**", true},
	}
	for _, c := range cases {
		if got := matchAnyGlob(c.rel, []string{c.glob}); got != c.want {
			t.Fatalf("matchAnyGlob(%q, %q)=%v want %v", c.rel, c.glob, got, c.want)
		}
	}
}
