package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether path exists, directories count too.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile copies src to dst preserving the source mode.
func CopyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, info.Mode())
}

// FindFilesBySuffix walks root and returns every file whose name ends with
// suffix, compared case insensitively. Unreadable directories are skipped.
func FindFilesBySuffix(root, suffix string) []string {
	var matches []string
	suffix = strings.ToLower(suffix)
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches
}

// JoinIfRelative resolves path against base unless it is already absolute.
func JoinIfRelative(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
