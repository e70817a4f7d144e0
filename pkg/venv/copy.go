package venv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// copyTree copies the directory src to dst, preserving file modes and
// recreating symlinks as links. dst must not exist.
func copyTree(fsys afero.Fs, src, dst string) error {
	return afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(fsys, path, target)
		case info.IsDir():
			return fsys.MkdirAll(target, info.Mode().Perm())
		case info.Mode().IsRegular():
			return copyFile(fsys, path, target, info.Mode().Perm())
		default:
			// sockets and devices do not occur in virtualenvs
			return nil
		}
	})
}

func copyFile(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copySymlink(fsys afero.Fs, src, dst string) error {
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return fmt.Errorf("filesystem cannot read symlink %s", src)
	}
	linker, ok := fsys.(afero.Linker)
	if !ok {
		return fmt.Errorf("filesystem cannot create symlink %s", dst)
	}
	link, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return err
	}
	return linker.SymlinkIfPossible(link, dst)
}
