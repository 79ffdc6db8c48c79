package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every catpoint command.
type Config struct {
	// Storage selects the persistence backend: "file" or "sqlite".
	Storage string `yaml:"storage"`
	// StateFile is the YAML document used by the file backend.
	StateFile string `yaml:"state_file"`
	// DatabaseFile is the SQLite database used by the sqlite backend.
	DatabaseFile string `yaml:"database_file"`
	// CatThreshold is the minimum classifier confidence, in percent, for a cat verdict.
	CatThreshold float32 `yaml:"cat_threshold"`
	// LogLevel is the minimum level of emitted log lines.
	LogLevel string `yaml:"log_level"`
}

const (
	// StorageFile keeps state and sensors in a single YAML document.
	StorageFile = "file"
	// StorageSQLite keeps state and sensors in an SQLite database.
	StorageSQLite = "sqlite"

	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "catpoint-settings.yaml"

	// DefaultStateFilename is the default filename for the YAML state document.
	DefaultStateFilename = "catpoint-state.yaml"

	// DefaultDatabaseFilename is the default filename for the SQLite database.
	DefaultDatabaseFilename = "catpoint.db"

	// DefaultCatThreshold is the confidence the camera check requires by default.
	DefaultCatThreshold float32 = 50

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStorage is returned for an unsupported storage backend.
	errUnknownStorage = errors.New("unknown storage backend")
	// errThresholdOutOfRange is returned when the threshold is not a percentage.
	errThresholdOutOfRange = errors.New("cat threshold must be within 0..100")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for empty fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	settings.Storage = strings.ToLower(strings.TrimSpace(settings.Storage))
	switch settings.Storage {
	case "":
		settings.Storage = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownStorage, settings.Storage)
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.DatabaseFile == "" {
		settings.DatabaseFile = DefaultDatabaseFilename
	}

	if settings.CatThreshold < 0 || settings.CatThreshold > 100 {
		return fmt.Errorf("%w: %v", errThresholdOutOfRange, settings.CatThreshold)
	}

	// Zero means "not configured"; a real zero threshold would flag every image.
	if settings.CatThreshold == 0 {
		settings.CatThreshold = DefaultCatThreshold
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	return nil
}

// StorePath returns the file the selected backend writes to.
func (c *Config) StorePath() string {
	if c.Storage == StorageSQLite {
		return c.DatabaseFile
	}

	return c.StateFile
}
