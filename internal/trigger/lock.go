package trigger

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("another ticksel process is running these tasks")

// FileLock keeps two processes from driving the same task list at once. It
// is the cross-process counterpart of Gate: a second process is refused,
// never queued. A lock left behind by a dead process is taken over.
type FileLock struct {
	path string
}

// NewFileLock creates a lock stored at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// LockPathFor returns the lock file used for a config file.
func LockPathFor(configPath string) string {
	return configPath + ".lock"
}

// Path returns the lock file location.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire takes the lock or returns an error wrapping ErrLocked.
func (l *FileLock) Acquire() error {
	err := l.create()
	if !errors.Is(err, os.ErrExist) {
		return err
	}

	pid, ok, err := l.holder()
	if err != nil {
		return err
	}
	if ok && alive(pid) {
		return fmt.Errorf("%w (PID %d, lock %s)", ErrLocked, pid, l.path)
	}
	if err := l.Release(); err != nil {
		return err
	}

	// One retry; a racing process that wins keeps the lock.
	err = l.create()
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w (lock %s taken during retry)", ErrLocked, l.path)
	}
	return err
}

// Release removes the lock file. Releasing twice is not an error.
func (l *FileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Held reports whether a live process holds the lock.
func (l *FileLock) Held() (bool, error) {
	pid, ok, err := l.holder()
	if err != nil || !ok {
		return false, err
	}
	return alive(pid), nil
}

func (l *FileLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return os.ErrExist
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	_, err = fmt.Fprintf(f, "%d", os.Getpid())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// holder reads the PID in the lock file. ok is false when there is no
// file or its content is not a PID.
func (l *FileLock) holder() (pid int, ok bool, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}
	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, nil
	}
	return pid, true, nil
}

// alive uses signal 0, which checks for the process without signalling it.
func alive(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
