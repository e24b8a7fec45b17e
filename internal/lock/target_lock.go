// Package lock keeps two mkservice processes from generating into the same
// target directory at the same time.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// LockInfo contains the metadata stored in a lock file.
type LockInfo struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
	Target    string    `json:"target"`
}

// ErrLocked indicates a non-stale lock is held by someone else.
type ErrLocked struct {
	Target string
	Info   *LockInfo // nil if lock file is unreadable
	Path   string
}

func (e *ErrLocked) Error() string {
	if e.Info != nil {
		return fmt.Sprintf("%s is being generated by pid %d since %s (lock file: %s)",
			e.Target, e.Info.PID, e.Info.CreatedAt.Format(time.RFC3339), e.Path)
	}
	return fmt.Sprintf("%s is being generated by another process (lock file: %s)", e.Target, e.Path)
}

// TargetLock provides per-target locking around project generation.
type TargetLock struct {
	Dir        string // directory holding lock files
	StaleAfter time.Duration
	Now        func() time.Time
	IsPIDAlive func(pid int) bool
}

// NewTargetLock returns a TargetLock with defaults:
// - StaleAfter: 1h
// - Now: time.Now
// - IsPIDAlive: platform impl (best-effort)
func NewTargetLock(dir string) TargetLock {
	return TargetLock{
		Dir:        dir,
		StaleAfter: time.Hour,
		Now:        time.Now,
		IsPIDAlive: isPIDAlive,
	}
}

// lockPath returns the lock file for target: a hash of its cleaned path, so
// any absolute path maps to one flat file name.
func (l TargetLock) lockPath(target string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(target)))
	return filepath.Join(l.Dir, hex.EncodeToString(sum[:8])+".lock")
}

// Lock acquires the lock for target and returns an unlock function.
// If already locked and not stale: returns *ErrLocked.
func (l TargetLock) Lock(target string) (unlock func() error, err error) {
	lockPath := l.lockPath(target)
	maxRetries := 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := os.MkdirAll(l.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}

		// O_EXCL makes acquisition atomic
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			info := LockInfo{
				PID:       os.Getpid(),
				CreatedAt: l.Now(),
				Target:    target,
			}
			data, _ := json.Marshal(info)
			if _, writeErr := f.Write(data); writeErr != nil {
				f.Close()
				os.Remove(lockPath)
				return nil, fmt.Errorf("failed to write lock file: %w", writeErr)
			}
			if closeErr := f.Close(); closeErr != nil {
				os.Remove(lockPath)
				return nil, fmt.Errorf("failed to close lock file: %w", closeErr)
			}

			return func() error {
				err := os.Remove(lockPath)
				if err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		info, readErr := l.readLockInfo(lockPath)
		if readErr != nil {
			// Unreadable: fall back to mtime for staleness
			stat, statErr := os.Stat(lockPath)
			if statErr != nil {
				return nil, &ErrLocked{Target: target, Path: lockPath}
			}
			if l.Now().Sub(stat.ModTime()) <= l.StaleAfter {
				return nil, &ErrLocked{Target: target, Path: lockPath}
			}
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, &ErrLocked{Target: target, Path: lockPath}
			}
			continue
		}

		if l.isStale(info) {
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, &ErrLocked{Target: target, Info: info, Path: lockPath}
			}
			continue
		}

		return nil, &ErrLocked{Target: target, Info: info, Path: lockPath}
	}

	return nil, &ErrLocked{Target: target, Path: lockPath}
}

// readLockInfo reads and parses the lock file.
func (l TargetLock) readLockInfo(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// isStale returns true if the holder is gone or the lock is too old.
func (l TargetLock) isStale(info *LockInfo) bool {
	if !l.IsPIDAlive(info.PID) {
		return true
	}
	return l.Now().Sub(info.CreatedAt) > l.StaleAfter
}

// isPIDAlive checks if a process with the given pid is alive.
// Uses the Unix signal 0 trick: sending signal 0 to a process succeeds
// if the process exists and we have permission to signal it.
func isPIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means process exists but we don't have permission - treat as alive
	return errors.Is(err, syscall.EPERM)
}
