package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// lockFileName sits next to tasks.yaml. It carries no data.
const lockFileName = ".tasks.lock"

// Lock takes an exclusive advisory lock shared by every process using the
// same base directory. Callers hold it across Load, mutation and Save.
func (s *fileTaskStore) Lock() (unlock func() error, err error) {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return nil, fmt.Errorf("locking tasks: creating directory: %w", err)
	}
	return lockFile(filepath.Join(s.basePath, lockFileName))
}

// lockFile blocks until it holds LOCK_EX on path. The returned func releases
// the lock and closes the file.
func lockFile(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer func() { _ = f.Close() }()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
