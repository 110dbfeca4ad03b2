// Package instance keeps a single GUI process per user and lets other
// invocations talk to it over a unix socket.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	lockFileName   = "webhub.lock"
	socketFileName = "webhub.sock"
	lockDirPerm    = 0o700
	lockFilePerm   = 0o600
)

// ErrAlreadyRunning is returned by Acquire when another process holds the lock.
var ErrAlreadyRunning = errors.New("webhub is already running")

// Lock is an exclusive flock on the runtime directory's lock file.
type Lock struct {
	f    *os.File
	path string
}

// LockPath returns the lock file inside dir.
func LockPath(dir string) string {
	return filepath.Join(dir, lockFileName)
}

// SocketPath returns the control socket inside dir.
func SocketPath(dir string) string {
	return filepath.Join(dir, socketFileName)
}

// Acquire takes the instance lock in dir without blocking.
func Acquire(dir string) (*Lock, error) {
	if dir == "" {
		return nil, errors.New("lock dir is empty")
	}
	if err := os.MkdirAll(dir, lockDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	path := LockPath(dir)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	locked, err := tryLockExclusiveNonBlocking(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		_ = f.Close()
		return nil, ErrAlreadyRunning
	}

	if err := f.Truncate(0); err == nil {
		_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	}
	return &Lock{f: f, path: path}, nil
}

func tryLockExclusiveNonBlocking(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}
	return false, err
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return f.Close()
}
