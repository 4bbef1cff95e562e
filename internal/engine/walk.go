package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
	"github.com/secscan/secscan/internal/ignore"
	"github.com/secscan/secscan/internal/types"
)

// IgnoreFileDirective anywhere in a file excludes the whole file.
const IgnoreFileDirective = "secscan:ignore-file"

const sniffLen = 8000

// Discover walks cfg.Root and returns every eligible text file, read into
// memory, in lexical walk order. Files that exist but cannot be read are
// reported as "Error reading <path>: <err>" strings and left out. A root
// that does not exist yields no files and no error.
func Discover(cfg Config) ([]types.FileContent, []string, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", root).Msg("scan path does not exist")
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", root, err)
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	var (
		files    []types.FileContent
		readErrs []string
	)
	if !info.IsDir() {
		rel := filepath.Base(root)
		fc, skip, err := readCandidate(root, rel, info.Size(), maxBytes)
		if err != nil {
			readErrs = append(readErrs, readError(rel, err))
		} else if !skip {
			files = append(files, fc)
		}
		return files, readErrs, nil
	}

	ign, err := ignore.LoadRoot(root)
	if err != nil {
		return nil, nil, fmt.Errorf("load ignore files: %w", err)
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			rel, _ := filepath.Rel(root, p)
			log.Warn().Err(err).Str("path", rel).Msg("skipping unreadable path")
			readErrs = append(readErrs, readError(filepath.ToSlash(rel), err))
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchAnyGlob(rel, cfg.Ignore) || ign.Match(rel) {
			return nil
		}
		lower := strings.ToLower(rel)
		if cfg.DefaultExcludes && isDefaultFileExcluded(lower) {
			return nil
		}
		if hasBinaryExtension(lower) {
			return nil
		}
		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		fc, skip, err := readCandidate(p, rel, size, maxBytes)
		if err != nil {
			readErrs = append(readErrs, readError(rel, err))
			return nil
		}
		if !skip {
			files = append(files, fc)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	log.Debug().Str("root", root).Int("files", len(files)).Int("ignorePatterns", ign.Len()).Msg("discovery finished")
	return files, readErrs, nil
}

// readCandidate loads one file. skip is true for oversized, binary or
// opted-out files.
func readCandidate(abs, rel string, size, maxBytes int64) (types.FileContent, bool, error) {
	if size > maxBytes {
		log.Debug().Str("file", rel).Int64("size", size).Msg("skipping large file")
		return types.FileContent{}, true, nil
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return types.FileContent{}, false, err
	}
	if looksBinary(b) || bytes.Contains(b, []byte(IgnoreFileDirective)) {
		return types.FileContent{}, true, nil
	}
	return NewFileContent(rel, string(b)), false, nil
}

func readError(p string, err error) string {
	return fmt.Sprintf("Error reading %s: %v", p, err)
}

// looksBinary reports a NUL byte in the leading bytes or a magic number
// known to filetype.
func looksBinary(b []byte) bool {
	head := b[:min(len(b), sniffLen)]
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	kind, _ := filetype.Match(head)
	return kind != filetype.Unknown
}
