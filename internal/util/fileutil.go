package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

const TempSuffix = ".filemerge.tmp"

// AtomicWrite writes r to dst through a temp file in the same directory.
func AtomicWrite(dst string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp := dst + TempSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

// CopyFile copies src to dst atomically, keeping the source permission bits.
func CopyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open src: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat src: %w", err)
	}

	return AtomicWrite(dst, f, info.Mode().Perm())
}

// MoveFile renames src to dst, falling back to copy and remove across devices.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move: %w", err)
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied but failed to remove src: %w", err)
	}

	return nil
}

// MakeReadOnly clears every write bit on path.
func MakeReadOnly(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}

	if err := os.Chmod(path, info.Mode().Perm()&^0222); err != nil {
		return fmt.Errorf("failed to set read-only: %w", err)
	}

	return nil
}

func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}
