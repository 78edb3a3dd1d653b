// Package envvars lists the SE_* environment variables referenced by shell
// scripts and writes them as a YAML manifest.
package envvars

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// VariablePattern matches an SE_ variable name starting at a word boundary
var VariablePattern = regexp.MustCompile(`\bSE_[A-Z0-9_]+`)

// ScriptExt is the extension of the files that are scanned
const ScriptExt = ".sh"

// Scanner finds SE_* variable names in shell scripts
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan walks root and returns the distinct variable names found in every
// script below it, sorted.
func (s *Scanner) Scan(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", root)
	}

	seen := make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && s.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsScript(path) {
			return nil
		}

		names, err := ScanFile(path)
		if err != nil {
			return err
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// ScanFile returns every variable name in the file at path, in order of appearance
func ScanFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return VariablePattern.FindAllString(string(content), -1), nil
}

// IsScript reports whether path is a shell script by extension
func IsScript(path string) bool {
	return strings.HasSuffix(path, ScriptExt)
}
