// Package fsutil has small filesystem helpers shared by the build-tree
// and media code.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exists reports whether path exists at all.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies a regular file, creating or truncating dst. The parent
// of dst must already exist.
func CopyFile(src, dst string) error {
	input, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open %q: %v", src, err)
	}
	defer input.Close()

	output, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cannot create %q: %v", dst, err)
	}

	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		return fmt.Errorf("cannot copy %q to %q: %v", src, dst, err)
	}
	return output.Close()
}

// CopyTree recursively copies the directory at src into dst, creating dst
// if needed. Symlinks are not expected in the trees this handles and are
// rejected.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case entry.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("cannot create directory %q: %v", target, err)
			}
			return nil
		case entry.Type().IsRegular():
			return CopyFile(path, target)
		default:
			return fmt.Errorf("cannot copy %q: unsupported file type", path)
		}
	})
}
