package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// InstanceLock is a file lock that keeps two bridges for the same bot on one host from
// running at once, since both would relay every event.
type InstanceLock struct {
	lockFile *flock.Flock
	lockPath string
}

// lockName derives a filename from key without leaking it onto disk.
func lockName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8]) + ".lock"
}

// NewInstanceLock creates a lock for key inside dir, creating dir when needed.
// Nothing is locked until TryLock.
func NewInstanceLock(dir, key string) (*InstanceLock, error) {
	AssertInvariant(key != "", "instance lock key cannot be empty")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, lockName(key))
	return &InstanceLock{
		lockFile: flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// TryLock acquires the lock without blocking.
func (l *InstanceLock) TryLock() error {
	locked, err := l.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another accord instance is already running for this bot (lock %s)", l.lockPath)
	}

	return nil
}

// Unlock releases the lock and removes the lock file
func (l *InstanceLock) Unlock() error {
	if l.lockFile == nil {
		return nil
	}

	if err := l.lockFile.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	return nil
}

func (l *InstanceLock) LockPath() string {
	return l.lockPath
}
