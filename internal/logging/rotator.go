package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Rotator is an io.Writer appending to <dir>/<name> that shifts the file to
// <name>.1, <name>.2, ... once it grows past maxSize bytes. At most maxBackups
// old files are kept.
type Rotator struct {
	mu         sync.Mutex
	dir        string
	name       string
	maxSize    int64
	maxBackups int
	file       *os.File
	size       int64
}

// NewRotator opens (or creates) the current log file.
func NewRotator(dir, name string, maxSizeMB, maxBackups int) (*Rotator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	r := &Rotator{
		dir:        dir,
		name:       name,
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the current log file.
func (r *Rotator) Path() string {
	return filepath.Join(r.dir, r.name)
}

func (r *Rotator) backup(n int) string {
	return fmt.Sprintf("%s.%d", r.Path(), n)
}

func (r *Rotator) open() error {
	file, err := os.OpenFile(r.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.file = file
	r.size = info.Size()
	return nil
}

func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *Rotator) rotate() error {
	if err := r.file.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close log file: %v\n", err)
	}
	r.file = nil

	if r.maxBackups <= 0 {
		if err := os.Remove(r.Path()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to truncate log file: %w", err)
		}
		return r.open()
	}

	_ = os.Remove(r.backup(r.maxBackups))
	for i := r.maxBackups - 1; i >= 1; i-- {
		if err := os.Rename(r.backup(i), r.backup(i+1)); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to shift log backup: %v\n", err)
		}
	}
	if err := os.Rename(r.Path(), r.backup(1)); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return r.open()
}

// Close closes the current file. A later Write reopens it.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
