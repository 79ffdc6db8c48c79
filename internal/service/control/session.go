package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	repository "github.com/oshokin/catpoint/internal/repository/state"
	"github.com/oshokin/catpoint/internal/service/lock"
	"github.com/oshokin/catpoint/internal/service/security"
	"github.com/oshokin/catpoint/internal/vision"
)

// Options controls how a Session is opened.
type Options struct {
	// ConfigPath specifies the path to settings YAML file; a missing file means defaults.
	ConfigPath string
	// LogLevel overrides the level from the settings file when not empty.
	LogLevel string
	// Mutating sessions hold the state lock until Close.
	Mutating bool
	// Classifier overrides the default random classifier.
	Classifier vision.Classifier
	// Listeners receive committed changes.
	Listeners []security.Listener
}

// Session is an open security service plus the resources behind it.
type Session struct {
	// Config is the effective configuration.
	Config *config.Config
	// Service applies events.
	Service *security.Service
	// Actor is who runs this session.
	Actor *domain.Actor

	repo repository.Repository
	lock *lock.Lock
}

var errUnknownLogLevel = errors.New("unknown log level")

// Open loads the configuration and opens the service. Callers must Close the session.
func Open(ctx context.Context, opts *Options) (*Session, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, levelName)
	}

	logger.SetLevel(level)

	actor, err := DetectActor()
	if err != nil {
		return nil, fmt.Errorf("detect actor: %w", err)
	}

	s := &Session{
		Config: cfg,
		Actor:  actor,
	}

	if opts.Mutating {
		if s.lock, err = lock.Acquire(ctx, lock.PathFor(cfg.StorePath())); err != nil {
			return nil, err
		}
	}

	if s.repo, err = repository.Open(cfg); err != nil {
		_ = s.Close()

		return nil, fmt.Errorf("open storage: %w", err)
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = vision.NewFakeClassifier(uint64(time.Now().UnixNano())) //nolint:gosec // Seed only.
	}

	serviceOptions := []security.Option{security.WithThreshold(cfg.CatThreshold)}
	for _, l := range opts.Listeners {
		serviceOptions = append(serviceOptions, security.WithListener(l))
	}

	if s.Service, err = security.NewService(ctx, s.repo, classifier, serviceOptions...); err != nil {
		_ = s.Close()

		return nil, fmt.Errorf("initialise service: %w", err)
	}

	logger.DebugKV(ctx, "Session opened", "storage", cfg.Storage, "store", cfg.StorePath(), "mutating", opts.Mutating)

	return s, nil
}

// Close releases the storage and the lock.
func (s *Session) Close() error {
	var errs []error

	if s.repo != nil {
		errs = append(errs, s.repo.Close())
	}

	if s.lock != nil {
		errs = append(errs, s.lock.Release())
	}

	return errors.Join(errs...)
}
