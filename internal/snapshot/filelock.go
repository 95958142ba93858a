package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/invsync/internal/shared"
)

var errLockHeld = errors.New("lock held")

const lockPollInterval = 25 * time.Millisecond

// FileLock is an advisory lock on "<path>.lock" that keeps two runs from sharing a snapshot.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock for the file at path. Nothing is acquired until [FileLock.Lock].
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Lock acquires the lock, polling until ctx is done. A zero wait fails at once when the lock is held.
func (l *FileLock) Lock(ctx context.Context, wait time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return &StoreError{Op: "lock", Path: l.path, Err: err}
	}

	deadline := time.Now().Add(wait)
	for {
		ok, err := l.try()
		if err != nil {
			return &StoreError{Op: "lock", Path: l.path, Err: err}
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", shared.ErrRunLocked, l.path)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *FileLock) try() (bool, error) {
	f, err := openLockFile(l.path)
	if errors.Is(err, errLockHeld) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := tryLock(f)
	if err != nil || !ok {
		f.Close()
		return false, err
	}

	l.file = f
	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
	}
	return true, nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	err := unlock(l.file)
	l.file.Close()
	removeLockFile(l.path)
	l.file = nil
	return err
}
