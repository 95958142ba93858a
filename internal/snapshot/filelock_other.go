//go:build !unix

package snapshot

import (
	"errors"
	"os"
)

// Without flock, the lock is the exclusive creation of the lock file itself.

func openLockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil, errLockHeld
	}
	return f, err
}

func tryLock(*os.File) (bool, error) {
	return true, nil
}

func unlock(*os.File) error {
	return nil
}

func removeLockFile(path string) {
	os.Remove(path)
}
