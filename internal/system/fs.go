package system

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS operates on the local filesystem.
type LocalFS struct{}

func (l *LocalFS) MkdirAll(ctx context.Context, path string) error {
	return os.MkdirAll(path, 0755)
}

func (l *LocalFS) RemoveAll(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}

func (l *LocalFS) WriteFile(ctx context.Context, path string, content []byte) error {
	return writeFile(path, bytes.NewReader(content), 0644)
}

// CopyRecursive copies the tree under src into dst, preserving modes and symlinks.
func (l *LocalFS) CopyRecursive(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			os.Remove(target)
			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			// Sockets, devices
			return nil
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, in, perm)
}
