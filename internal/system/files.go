package system

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"
)

// BackupSuffix is appended to a path to derive its backup slot. There is one
// slot per path; each backup replaces the previous one.
const BackupSuffix = ".backup"

// ReadFile returns the content of path as text. Content that is not valid
// UTF-8 is rejected rather than silently altered.
func (s *Service) ReadFile(path string) (string, error) {
	const op = "read_file"

	data, err := os.ReadFile(path) // #nosec G304 - caller-supplied path is the contract
	if err != nil {
		return "", newError(KindIO, op, "Failed to read file", err)
	}
	if !utf8.Valid(data) {
		return "", newError(KindIO, op, "Failed to read file", fmt.Errorf("%s: %w", path, ErrInvalidUTF8))
	}
	return string(data), nil
}

// WriteFile replaces the content of path. No backup is taken and the write
// is not atomic.
func (s *Service) WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // #nosec G306
		return newError(KindIO, "write_file", "Failed to write file", err)
	}
	return nil
}

// FileExists reports whether path can be statted. It never fails: anything
// that cannot be seen, including permission errors, is reported as absent.
func (s *Service) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BackupFile copies path to path+BackupSuffix and returns the backup path.
// A missing source fails before anything is created.
func (s *Service) BackupFile(path string) (string, error) {
	const op = "backup_file"

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError(KindNotFound, op, "File not found: "+path, nil)
		}
		return "", newError(KindIO, op, "Failed to backup file", err)
	}

	backupPath := path + BackupSuffix
	if err := copyFile(path, backupPath); err != nil {
		return "", newError(KindIO, op, "Failed to backup file", err)
	}
	return backupPath, nil
}

// RestoreFile copies backupPath over originalPath. Any readable file is
// accepted as the source.
func (s *Service) RestoreFile(backupPath, originalPath string) error {
	if err := copyFile(backupPath, originalPath); err != nil {
		return newError(KindIO, "restore_file", "Failed to restore file", err)
	}
	return nil
}

// GetFileSize returns the size of path in bytes.
func (s *Service) GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, newError(KindIO, "get_file_size", "Failed to get file size", err)
	}
	return uint64(info.Size()), nil // #nosec G115 - file sizes are non-negative
}

// copyFile opens src before touching dst so a bad source never truncates
// the destination. Copying a file onto itself is refused.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%s and %s are the same file", src, dst)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
