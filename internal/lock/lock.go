// Package lock enforces a single running instance per data directory.
//
// The lock is an advisory flock on a PID file. The kernel drops it when the
// holding process exits for any reason, so a file left behind by a crashed
// run never blocks the next one.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// errWouldBlock is returned by tryLock when another holder exists.
var errWouldBlock = errors.New("lock held")

// Info describes the current holder of a lock file.
type Info struct {
	PID        int
	AcquiredAt time.Time
}

// Lock is a held instance lock. The zero value is not usable.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path without blocking. If another process
// holds it the error wraps domain.ErrInstanceLocked and names that PID.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
		if err != nil {
			return nil, fmt.Errorf("open lock file: %w", err)
		}

		if err := tryLock(f); err != nil {
			f.Close()
			if errors.Is(err, errWouldBlock) {
				return nil, lockedError(path)
			}
			return nil, fmt.Errorf("flock: %w", err)
		}

		// A releasing holder may have removed the file between our open and
		// flock; in that case we locked an orphaned inode and must retry.
		if !sameFile(f, path) {
			_ = unlock(f)
			f.Close()
			continue
		}

		if err := writeInfo(f); err != nil {
			_ = unlock(f)
			f.Close()
			return nil, err
		}
		return &Lock{path: path, file: f}, nil
	}
	return nil, lockedError(path)
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	// Remove before unlocking so a new holder never loses its file.
	rmErr := os.Remove(l.path)
	_ = unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil

	if rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", rmErr)
	}
	return closeErr
}

// Holder reads the lock file at path. It reports what was written by the
// last holder and does not check that the lock is still held.
func Holder(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lock file: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty lock file", domain.ErrParse)
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: lock file pid: %v", domain.ErrParse, err)
	}
	info := &Info{PID: pid}
	if len(fields) > 1 {
		if ts, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			info.AcquiredAt = time.Unix(ts, 0)
		}
	}
	return info, nil
}

func writeInfo(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d %d\n", os.Getpid(), time.Now().Unix()); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return f.Sync()
}

func sameFile(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}

func lockedError(path string) error {
	if info, err := Holder(path); err == nil {
		return fmt.Errorf("%w: held by pid %d (%s)", domain.ErrInstanceLocked, info.PID, path)
	}
	return fmt.Errorf("%w: %s", domain.ErrInstanceLocked, path)
}
