package lock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/logger"
)

const (
	// Suffix is appended to the store path to build the marker filename.
	Suffix = ".lock"

	// MaxAge is how long a marker without a readable owner is honoured.
	MaxAge = 30 * time.Second
)

var (
	// ErrLocked is returned when another live process holds the marker.
	ErrLocked = errors.New("state is locked by another catpoint process")

	// errMalformedMarker is returned when the marker does not hold a PID.
	errMalformedMarker = errors.New("malformed lock marker")
)

// Lock is a held marker file.
type Lock struct {
	path string
	pid  int
}

// PathFor returns the marker path guarding storePath.
func PathFor(storePath string) string {
	return filepath.Clean(storePath) + Suffix
}

// Acquire creates the marker at path. A stale marker is moved aside once
// and creation is retried.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	l := &Lock{
		path: filepath.Clean(path),
		pid:  os.Getpid(),
	}

	err := l.create()
	if err == nil {
		return l, nil
	}

	if !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	observed, stale := inspect(ctx, l.path)
	if !stale {
		return nil, fmt.Errorf("%w: %s", ErrLocked, l.path)
	}

	if err = l.takeOver(ctx, observed); err != nil {
		return nil, err
	}

	if err = l.create(); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, l.path)
		}

		return nil, err
	}

	return l, nil
}

// Release removes the marker if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	contents, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	pid, err := parseOwner(contents)
	if err != nil {
		return nil
	}

	if pid != l.pid {
		return nil
	}

	if err = os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock: %w", err)
	}

	return nil
}

func (l *Lock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("create lock: %w", err)
	}

	if _, err = f.WriteString(strconv.Itoa(l.pid)); err != nil {
		_ = f.Close()
		_ = os.Remove(l.path)

		return fmt.Errorf("write lock: %w", err)
	}

	return f.Close()
}

// takeOver moves the stale marker aside. The marker is renamed rather than
// removed so that exactly one contender claims it; if the claimed file no
// longer holds the observed contents, another process replaced it in the
// meantime and it is put back.
func (l *Lock) takeOver(ctx context.Context, observed []byte) error {
	aside := fmt.Sprintf("%s.%d.stale", l.path, l.pid)

	if err := os.Rename(l.path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("move stale lock: %w", err)
	}

	defer func() {
		_ = os.Remove(aside)
	}()

	claimed, err := os.ReadFile(aside)
	if err != nil {
		return fmt.Errorf("read stale lock: %w", err)
	}

	if !bytes.Equal(claimed, observed) {
		if err = os.Link(aside, l.path); err != nil && !errors.Is(err, os.ErrExist) {
			logger.WarnKV(ctx, "Unable to restore lock marker", "path", l.path, "error", err)
		}

		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}

	logger.InfoKV(ctx, "Removed stale lock marker", "path", l.path)

	return nil
}

// inspect reads the marker at path and reports whether it can be taken over.
// A marker naming a live owner is never stale, whatever its age.
func inspect(ctx context.Context, path string) ([]byte, bool) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, true
		}

		logger.WarnKV(ctx, "Unable to read lock marker", "path", path, "error", err)

		return nil, false
	}

	pid, err := parseOwner(contents)
	if err == nil {
		return contents, !ownerAlive(pid)
	}

	info, err := os.Stat(path)
	if err != nil {
		return contents, errors.Is(err, os.ErrNotExist)
	}

	// The owner may still be writing its PID.
	if time.Since(info.ModTime()) <= MaxAge {
		return contents, false
	}

	logger.WarnKV(ctx, "Lock marker has no owner", "path", path, "contents", string(contents))

	return contents, true
}

// ownerAlive reports whether pid is a running process of this executable.
func ownerAlive(pid int) bool {
	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return false
	}

	self, err := ps.FindProcess(os.Getpid())
	if err != nil || self == nil {
		// Cannot compare executables; trust the PID.
		return true
	}

	return process.Executable() == self.Executable()
}

func parseOwner(contents []byte) (int, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", errMalformedMarker, contents)
	}

	return pid, nil
}
