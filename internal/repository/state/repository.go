package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// Repository defines persistence operations for the security system.
type Repository interface {
	// LoadState returns ErrNotFound when nothing was saved yet.
	LoadState(ctx context.Context) (*domain.State, error)
	// LoadSensors returns the sensors sorted by name.
	LoadSensors(ctx context.Context) ([]*domain.Sensor, error)
	// Commit atomically replaces the state and the full sensor set.
	Commit(ctx context.Context, state *domain.State, sensors []*domain.Sensor) error
	Close() error
}

var (
	// ErrNotFound is returned when no state has been stored yet.
	ErrNotFound = errors.New("state not found")
	// ErrInconsistentState is returned for a stored state no transition can produce.
	ErrInconsistentState = errors.New("inconsistent state")
)

// Open creates the repository selected by cfg.Storage.
//
//nolint:ireturn // Callers only need the Repository behaviour.
func Open(cfg *config.Config) (Repository, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return NewSQLiteRepository(cfg.DatabaseFile)
	case config.StorageFile, "":
		return NewFileRepository(cfg.StateFile), nil
	default:
		return nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}
