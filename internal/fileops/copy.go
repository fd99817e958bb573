package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// copyFile copies src to dst, syncing the result to disk. A partial target
// is removed on failure. Permissions follow the source file.
func copyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create target: %w", err)
	}

	size, err := io.Copy(dstFile, srcFile)
	if err != nil {
		_ = dstFile.Close()
		_ = os.Remove(dst)
		return 0, fmt.Errorf("copy content: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		_ = dstFile.Close()
		_ = os.Remove(dst)
		return 0, fmt.Errorf("sync target: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("close target: %w", err)
	}

	return size, nil
}

// isCrossDevice reports whether a rename failed because source and target
// live on different filesystems.
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
