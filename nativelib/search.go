package nativelib

import (
	"os"
	"path/filepath"
)

// DefaultMaxDepth bounds the recursive directory search
const DefaultMaxDepth = 4

// FindDir returns the first directory under root, root included, that holds a
// file from every group of required names
// Directories are visited depth-first in lexical order; root is depth 0 and
// subdirectories deeper than maxDepth are not entered.
func FindDir(root string, required [][]string, maxDepth int) (string, bool) {
	if maxDepth < 0 {
		return "", false
	}
	return findDir(root, required, 0, maxDepth)
}

func findDir(dir string, required [][]string, depth, maxDepth int) (string, bool) {
	if hasAll(dir, required) {
		return dir, true
	}
	if depth >= maxDepth {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if found, ok := findDir(filepath.Join(dir, entry.Name()), required, depth+1, maxDepth); ok {
			return found, true
		}
	}
	return "", false
}

// hasAll reports whether dir holds at least one file of every group
func hasAll(dir string, required [][]string) bool {
	for _, group := range required {
		if _, ok := firstFile(dir, group); !ok {
			return false
		}
	}
	return true
}

// firstFile returns the path of the first name in names that is a regular file in dir
func firstFile(dir string, names []string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
