// Package workspace guards a working directory against concurrent pipcheck
// runs and writes result files atomically.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ajxudir/pipcheck/pkg/verbose"
)

// LockFile is the lock file created in the working directory.
const LockFile = ".pipcheck.lock"

// ErrLocked is returned by Acquire when another process holds the lock.
type ErrLocked struct {
	Path string
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("another pipcheck run is using %s (lock %s is held)", filepath.Dir(e.Path), e.Path)
}

// Lock is an exclusive lock on a working directory.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the lock for dir without blocking.
//
// Returns:
//   - *Lock: The held lock; call Release when done
//   - error: *ErrLocked if the lock is held elsewhere, or an I/O error
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFile)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, &ErrLocked{Path: path}
	}
	verbose.Debugf("Workspace lock acquired: %s", path)
	return &Lock{flock: fl, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the lock file. The file itself stays in place: removing it
// would let a waiting process hold a lock on the unlinked inode while a new
// run locks a fresh file at the same path.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	verbose.Debugf("Workspace lock released: %s", l.path)
	return nil
}

// AtomicWrite writes data to path through a temporary file in the same
// directory and a rename, so readers never see a partial file.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	committed = true
	return nil
}
