package engine

import (
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".next":        true,
	".nuxt":        true,
}

// suffixes treated as generated or noisy when default excludes are enabled
var defaultExcludeFileSuffixes = []string{
	".min.js", ".min.css", ".map",
	".lock",
}

// exact filenames commonly safe to exclude when default excludes enabled
var defaultExcludeFileNames = map[string]bool{
	"package-lock.json":   true,
	"pnpm-lock.yaml":      true,
	"npm-shrinkwrap.json": true,
	".DS_Store":           true,
}

// binaryExtensions are never read, default excludes or not.
var binaryExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".class": true, ".pyc": true,
	".o": true, ".a": true, ".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return defaultExcludeFileNames[path.Base(lowerRel)]
}

func hasBinaryExtension(lowerRel string) bool {
	return binaryExtensions[path.Ext(lowerRel)]
}

// matchAnyGlob matches a slash-separated relative path against doublestar
// globs. A glob also matches against the base name, and a leading "./" or
// "**/" is optional, so "*.pem", "**/*.pem" and "./*.pem" behave alike.
func matchAnyGlob(rel string, globs []string) bool {
	base := path.Base(rel)
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		for _, cand := range []string{g, trimGlobPrefix(g)} {
			if ok, _ := doublestar.Match(cand, rel); ok {
				return true
			}
			if ok, _ := doublestar.Match(cand, base); ok {
				return true
			}
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
