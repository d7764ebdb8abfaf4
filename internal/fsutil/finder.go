// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScriptExtension is the file extension of Lox source files.
const ScriptExtension = ".lox"

// FindFilesByExtension recursively searches the given root path for all files
// ending with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ResolveModule finds the source file for an import name, trying each search
// directory in order. The name may omit the script extension.
func ResolveModule(name string, searchPaths []string) (string, error) {
	candidate := name
	if !strings.HasSuffix(candidate, ScriptExtension) {
		candidate += ScriptExtension
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, candidate)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("error accessing %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("module %q not found in %d search path(s)", name, len(searchPaths))
}
