// Package ignore matches slash-separated paths against gitignore-style
// pattern files such as .gitignore and .secscanignore.
package ignore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileNames lists the ignore files read from a scan root, in order.
var FileNames = []string{".gitignore", ".secscanignore"}

// Matcher holds parsed gitignore patterns. The zero value matches nothing.
type Matcher struct{ ps []gitignore.Pattern }

// Load reads one ignore file. A missing file yields an empty matcher; any
// other read failure is returned.
func Load(path string) (Matcher, error) {
	var m Matcher
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	m.Add(strings.Split(string(data), "\n")...)
	return m, nil
}

// LoadRoot merges every file in FileNames found directly under root.
func LoadRoot(root string) (Matcher, error) {
	var m Matcher
	for _, name := range FileNames {
		one, err := Load(filepath.Join(root, name))
		if err != nil {
			return m, err
		}
		m.ps = append(m.ps, one.ps...)
	}
	return m, nil
}

// Add appends patterns in gitignore syntax. Blank lines and comments are
// skipped.
func (m *Matcher) Add(lines ...string) {
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.ps = append(m.ps, gitignore.ParsePattern(line, nil))
	}
}

// Match reports whether the slash-separated relative path p is ignored.
// Later patterns win, so a "!pattern" can re-include a path.
func (m Matcher) Match(p string) bool {
	if len(m.ps) == 0 {
		return false
	}
	return gitignore.NewMatcher(m.ps).Match(strings.Split(p, "/"), false)
}

// Len returns the number of loaded patterns.
func (m Matcher) Len() int { return len(m.ps) }
