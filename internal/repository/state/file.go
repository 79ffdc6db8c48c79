package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// FileRepository persists state and sensors to a YAML document on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML document.
	path string
	// mu protects concurrent access to the document.
	mu sync.Mutex
}

// document is the on-disk layout.
type document struct {
	State   *domain.State    `yaml:"state"`
	Sensors []*domain.Sensor `yaml:"sensors"`
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// LoadState reads the state from disk.
func (r *FileRepository) LoadState(_ context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	if doc.State == nil {
		return nil, ErrNotFound
	}

	return doc.State, nil
}

// LoadSensors reads the sensors from disk. A missing document yields no sensors.
func (r *FileRepository) LoadSensors(_ context.Context) ([]*domain.Sensor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	domain.SortSensors(doc.Sensors)

	return doc.Sensors, nil
}

// Commit writes state and sensors to a temporary file and renames it over the document.
func (r *FileRepository) Commit(_ context.Context, state *domain.State, sensors []*domain.Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(&document{
		State:   state,
		Sensors: sensors,
	})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary state file: %w", err)
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write state file: %w", err)
	}

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("chmod state file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// Close is a no-op; the document is not kept open.
func (r *FileRepository) Close() error {
	return nil
}

func (r *FileRepository) read() (*document, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc document
	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	if doc.State != nil {
		if err = validateState(doc.State); err != nil {
			return nil, err
		}
	}

	for _, sensor := range doc.Sensors {
		if !sensor.Type.Valid() {
			return nil, fmt.Errorf("decode sensor %q: %w", sensor.Name, domain.ErrInvalidSensorType)
		}
	}

	return &doc, nil
}

// validateState rejects stores edited by hand into an unknown status or into
// an alarm while disarmed.
func validateState(state *domain.State) error {
	if !state.AlarmStatus.Valid() {
		return fmt.Errorf("decode state: %w: %q", domain.ErrInvalidAlarmStatus, state.AlarmStatus)
	}

	if !state.ArmingStatus.Valid() {
		return fmt.Errorf("decode state: %w: %q", domain.ErrInvalidArmingStatus, state.ArmingStatus)
	}

	if state.ArmingStatus == domain.Disarmed && state.AlarmStatus != domain.NoAlarm {
		return fmt.Errorf("decode state: %w: %s while %s", ErrInconsistentState, state.AlarmStatus, state.ArmingStatus)
	}

	return nil
}
