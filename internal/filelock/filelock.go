// Package filelock guards harness runs against each other and writes state
// files without exposing partial content to readers.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another harness run holds the run lock.
var ErrLocked = errors.New("another harness run is in progress")

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file location.
func (fl *FileLock) Path() string {
	return fl.path
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// RunLock is the exclusive lock held for the duration of one harness run.
type RunLock struct {
	lock *FileLock
}

// AcquireRunLock takes the run lock at path without blocking.
// The holder's PID is written into the lock file so a refused run can say who
// holds it. Returns an error wrapping ErrLocked when the lock is taken.
func AcquireRunLock(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := NewFileLock(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		if pid := HolderPID(path); pid > 0 {
			return nil, fmt.Errorf("%w (lock %s held by pid %d)", ErrLocked, path, pid)
		}
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}

	// Best effort: the lock is valid even if the PID cannot be recorded.
	_ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)

	return &RunLock{lock: lock}, nil
}

// Release unlocks and removes the lock file. Safe to call on a nil RunLock.
func (r *RunLock) Release() error {
	if r == nil {
		return nil
	}
	path := r.lock.Path()
	// Truncate before unlocking so a waiting run never reads a stale PID.
	_ = os.Truncate(path, 0)
	if err := r.lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", path, err)
	}
	return nil
}

// HolderPID returns the PID recorded in the lock file, or 0 if none.
func HolderPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// AtomicWrite writes data to a file atomically using a temp file and rename strategy.
// Parent directories are created. If the operation fails at any point, the
// original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
