// Package filelock serializes access to files shared between the watch
// daemon and one-shot commands, and provides atomic writes so readers
// never observe a partially written settings file.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned by LockWithTimeout when the lock stayed held
// past the deadline.
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// retryInterval is how often LockWithTimeout re-attempts a held lock.
const retryInterval = 10 * time.Millisecond

// LockMetrics describes one acquisition: how many attempts it took, how
// long the caller waited, and whether it gave up.
type LockMetrics struct {
	Attempts int
	Wait     time.Duration
	TimedOut bool
}

// Monitor observes lock acquisitions, successful or not.
type Monitor func(path string, metrics LockMetrics)

// FileLock wraps a flock advisory lock on a dedicated lock file.
type FileLock struct {
	flock *flock.Flock
	path  string

	mu      sync.Mutex
	monitor Monitor
	last    LockMetrics
}

// NewFileLock creates a lock handle for the given path. The lock file is
// created on first acquisition.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// SetMonitor installs a callback invoked after every acquisition attempt
// sequence. A nil monitor disables reporting.
func (fl *FileLock) SetMonitor(m Monitor) {
	fl.mu.Lock()
	fl.monitor = m
	fl.mu.Unlock()
}

// LastMetrics returns the metrics of the most recent acquisition.
func (fl *FileLock) LastMetrics() LockMetrics {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.last
}

func (fl *FileLock) record(m LockMetrics) {
	fl.mu.Lock()
	fl.last = m
	monitor := fl.monitor
	fl.mu.Unlock()
	if monitor != nil {
		monitor(fl.path, m)
	}
}

// Lock acquires the lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	start := time.Now()
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	fl.record(LockMetrics{Attempts: 1, Wait: time.Since(start)})
	return nil
}

// LockWithTimeout polls for the lock until it is acquired or the timeout
// elapses. On timeout it returns an error wrapping ErrLockTimeout.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	start := time.Now()
	deadline := start.Add(timeout)
	attempts := 0
	for {
		attempts++
		acquired, err := fl.flock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
		}
		if acquired {
			fl.record(LockMetrics{Attempts: attempts, Wait: time.Since(start)})
			return nil
		}
		if time.Now().After(deadline) {
			fl.record(LockMetrics{Attempts: attempts, Wait: time.Since(start), TimedOut: true})
			return fmt.Errorf("%w: %s after %v", ErrLockTimeout, fl.path, timeout)
		}
		time.Sleep(retryInterval)
	}
}

// TryLock attempts the lock without blocking and reports whether it was
// acquired.
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

// AtomicWrite writes data via a temp file in the target's directory plus a
// rename, so concurrent readers see either the old content or the new,
// never a partial write. Parent directories are created as needed; the
// target ends up with 0644 permissions.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory as the target keeps the rename on one filesystem.
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

// LockAndWrite locks path+".lock", writes data atomically, then releases
// and removes the lock file. Concurrent writers serialize on the lock;
// each one's write lands whole.
func LockAndWrite(path string, data []byte) error {
	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)

	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		os.Remove(lockPath)
	}()

	return AtomicWrite(path, data)
}
