// Package lock keeps a single daemon per session with an advisory flock.
package lock

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrHeld is matched by a HeldError via errors.Is.
var ErrHeld = errors.New("lock held")

// HeldError reports the owner of a lock that is already taken.
type HeldError struct {
	Path    string
	Owner   Owner
	Unknown bool
}

func (e *HeldError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("%s is locked by another wppviewd", e.Path)
	}
	return fmt.Sprintf("%s is locked by wppviewd pid %d since %s",
		e.Path, e.Owner.PID, e.Owner.Since.Format(time.RFC3339))
}

func (e *HeldError) Is(target error) bool { return target == ErrHeld }

// Owner is what a holder writes into the lock file.
type Owner struct {
	PID   int
	Since time.Time
}

// Lock is a held lock file.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive lock on path, creating it and its parent
// directory when missing.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		held := &HeldError{Path: path}
		owner, rerr := ReadOwner(path)
		if rerr != nil {
			held.Unknown = true
		} else {
			held.Owner = owner
		}
		return nil, held
	}

	if err := writeOwner(f, Owner{PID: os.Getpid(), Since: time.Now().UTC()}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write lock owner: %w", err)
	}
	return &Lock{file: f, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock and removes the file. A nil or released Lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadOwner parses the owner written by Acquire.
func ReadOwner(path string) (Owner, error) {
	f, err := os.Open(path)
	if err != nil {
		return Owner{}, err
	}
	defer func() { _ = f.Close() }()

	var o Owner
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			o.PID, _ = strconv.Atoi(val)
		case "since":
			o.Since, _ = time.Parse(time.RFC3339, val)
		}
	}
	if err := sc.Err(); err != nil {
		return Owner{}, err
	}
	if o.PID == 0 {
		return Owner{}, fmt.Errorf("no owner in %s", path)
	}
	return o, nil
}

func writeOwner(f *os.File, o Owner) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f, "pid=%d\nsince=%s\n", o.PID, o.Since.Format(time.RFC3339))
	return err
}
