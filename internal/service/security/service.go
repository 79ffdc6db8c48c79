package security

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	repo "github.com/oshokin/catpoint/internal/repository/state"
	"github.com/oshokin/catpoint/internal/vision"
)

var (
	// ErrSensorNotFound is returned when a reference matches no sensor.
	ErrSensorNotFound = domain.ErrSensorNotFound
	// ErrAmbiguousSensor is returned when a name matches several sensors.
	ErrAmbiguousSensor = errors.New("sensor name is ambiguous, use its ID")
	// ErrSensorNameRequired is returned when a sensor is added without a name.
	ErrSensorNameRequired = errors.New("sensor name must be provided")
	// ErrNoClassifier is returned by ProcessImage when no classifier is configured.
	ErrNoClassifier = errors.New("image classifier is not configured")
)

const loggerName = "security"

// Service applies events to the security system and persists the outcome.
type Service struct {
	// repo handles persistent storage; nil keeps everything in memory.
	repo repo.Repository
	// classifier answers the camera check.
	classifier vision.Classifier
	// threshold is passed to the classifier.
	threshold float32
	// listeners are notified after every committed change.
	listeners []Listener
	// now stamps committed states.
	now func() time.Time

	// snapshot is the current committed state and sensor set.
	snapshot *domain.Snapshot
	// mu serializes every event.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithThreshold sets the classifier confidence threshold in percent.
func WithThreshold(threshold float32) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithListener registers a listener for committed changes.
func WithListener(l Listener) Option {
	return func(s *Service) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// withClock overrides the clock used for state timestamps.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a service backed by the provided repository. A store
// without saved state starts disarmed with no alarm.
func NewService(
	ctx context.Context,
	repository repo.Repository,
	classifier vision.Classifier,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		repo:       repository,
		classifier: classifier,
		threshold:  vision.DefaultThreshold,
		now:        time.Now,
		snapshot: &domain.Snapshot{
			State: domain.DefaultState(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if repository == nil {
		return s, nil
	}

	state, err := repository.LoadState(ctx)
	switch {
	case err == nil:
		if state != nil {
			s.snapshot.State = state
		}
	case errors.Is(err, repo.ErrNotFound):
		// Keep default state.
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	sensors, err := repository.LoadSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sensors: %w", err)
	}

	s.snapshot.Sensors = sensors

	return s, nil
}

// State returns the current state.
func (s *Service) State(_ context.Context) *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot.State.Clone()
}

// Sensors returns the current sensors sorted by name.
func (s *Service) Sensors(_ context.Context) []*domain.Sensor {
	s.mu.Lock()
	defer s.mu.Unlock()

	sensors := domain.CloneSensors(s.snapshot.Sensors)
	domain.SortSensors(sensors)

	return sensors
}

// FindSensor resolves ref, a sensor ID or a unique sensor name.
func (s *Service) FindSensor(ref string) (*domain.Sensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sensor, err := findSensor(s.snapshot, ref)
	if err != nil {
		return nil, err
	}

	return sensor.Clone(), nil
}

// AddSensor registers a new inactive sensor.
func (s *Service) AddSensor(
	ctx context.Context,
	actor *domain.Actor,
	name string,
	sensorType domain.SensorType,
) (*domain.Sensor, error) {
	ctx = withActor(ctx, actor)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSensorNameRequired
	}

	if !sensorType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSensorType, sensorType)
	}

	sensor := domain.NewSensor(name, sensorType)

	_, err := s.commit(ctx, actor, func(next *domain.Snapshot) error {
		next.Sensors = append(next.Sensors, sensor.Clone())

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Sensor added", "sensor", sensor.Name, "type", sensor.Type, "id", sensor.ID)

	return sensor, nil
}

// RemoveSensor deletes the sensor matching ref.
func (s *Service) RemoveSensor(ctx context.Context, actor *domain.Actor, ref string) (*domain.Sensor, error) {
	ctx = withActor(ctx, actor)

	var removed *domain.Sensor

	_, err := s.commit(ctx, actor, func(next *domain.Snapshot) error {
		sensor, err := findSensor(next, ref)
		if err != nil {
			return err
		}

		removed = sensor.Clone()
		next.Sensors = slices.DeleteFunc(next.Sensors, func(item *domain.Sensor) bool {
			return item.ID == sensor.ID
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Sensor removed", "sensor", removed.Name, "id", removed.ID)

	return removed, nil
}

// ChangeSensorActivation activates or deactivates the sensor matching ref.
func (s *Service) ChangeSensorActivation(
	ctx context.Context,
	actor *domain.Actor,
	ref string,
	active bool,
) (*domain.State, error) {
	ctx = withActor(ctx, actor)

	return s.commit(ctx, actor, func(next *domain.Snapshot) error {
		sensor, err := findSensor(next, ref)
		if err != nil {
			return err
		}

		event := domain.SensorDeactivated(sensor.ID)
		if active {
			event = domain.SensorActivated(sensor.ID)
		}

		return domain.NewMachine(next).Dispatch(event)
	})
}

// SetArmingStatus changes the arming status.
func (s *Service) SetArmingStatus(
	ctx context.Context,
	actor *domain.Actor,
	status domain.ArmingStatus,
) (*domain.State, error) {
	return s.Dispatch(ctx, actor, domain.ArmingChanged(status))
}

// ProcessImage runs the camera check on img and applies the verdict.
func (s *Service) ProcessImage(ctx context.Context, actor *domain.Actor, img image.Image) (*domain.State, error) {
	if s.classifier == nil {
		return nil, ErrNoClassifier
	}

	ctx = withActor(ctx, actor)

	// The classifier may be slow; it runs outside the lock.
	containsCat, err := s.classifier.ContainsCat(ctx, img, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}

	logger.InfoKV(ctx, "Image classified", "contains_cat", containsCat, "threshold", s.threshold)

	state, err := s.dispatch(ctx, actor, domain.ImageClassified(containsCat))
	if err != nil {
		return nil, err
	}

	for _, l := range s.listeners {
		l.CatDetected(ctx, containsCat)
	}

	return state, nil
}

// Dispatch applies a single event and returns the committed state.
func (s *Service) Dispatch(ctx context.Context, actor *domain.Actor, event domain.Event) (*domain.State, error) {
	return s.dispatch(withActor(ctx, actor), actor, event)
}

func (s *Service) dispatch(ctx context.Context, actor *domain.Actor, event domain.Event) (*domain.State, error) {
	return s.commit(ctx, actor, func(next *domain.Snapshot) error {
		return domain.NewMachine(next).Dispatch(event)
	})
}

// commit applies mutate to a copy of the snapshot, persists the copy and
// swaps it in. Nothing is changed when mutate or the write fails.
func (s *Service) commit(
	ctx context.Context,
	actor *domain.Actor,
	mutate func(next *domain.Snapshot) error,
) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	next.State.Timestamp = s.now()
	next.State.LastActor = actor.Clone()

	if s.repo != nil {
		if err := s.repo.Commit(ctx, next.State, next.Sensors); err != nil {
			logger.Errorf(ctx, "Failed to persist security state: %v", err)

			return nil, fmt.Errorf("persist state: %w", err)
		}
	}

	previous := s.snapshot
	s.snapshot = next

	s.notify(ctx, previous, next)

	return next.State.Clone(), nil
}

// withActor names the logger after the service and tags it with the actor.
func withActor(ctx context.Context, actor *domain.Actor) context.Context {
	ctx = logger.WithName(ctx, loggerName)
	if actor == nil {
		return ctx
	}

	return logger.WithKV(ctx, "user", actor.Username, "host", actor.Hostname)
}

// notify tells listeners what differs between two committed snapshots.
func (s *Service) notify(ctx context.Context, previous, next *domain.Snapshot) {
	from, to := previous.State.AlarmStatus, next.State.AlarmStatus
	if from != to {
		logger.InfoKV(ctx, "Alarm status changed", "from", from, "to", to)
	}

	sensorsChanged := sensorsDiffer(previous.Sensors, next.Sensors)

	for _, l := range s.listeners {
		if from != to {
			l.AlarmStatusChanged(ctx, from, to)
		}

		if sensorsChanged {
			l.SensorsChanged(ctx, domain.CloneSensors(next.Sensors))
		}
	}
}

func sensorsDiffer(a, b []*domain.Sensor) bool {
	if len(a) != len(b) {
		return true
	}

	byID := lo.Associate(a, func(item *domain.Sensor) (uuid.UUID, domain.Sensor) {
		return item.ID, *item
	})

	return lo.SomeBy(b, func(item *domain.Sensor) bool {
		before, ok := byID[item.ID]

		return !ok || before != *item
	})
}

// findSensor resolves ref against the sensors of snapshot.
func findSensor(snapshot *domain.Snapshot, ref string) (*domain.Sensor, error) {
	ref = strings.TrimSpace(ref)

	if id, err := uuid.Parse(ref); err == nil {
		if sensor := snapshot.Sensor(id); sensor != nil {
			return sensor, nil
		}
	}

	matches := lo.Filter(snapshot.Sensors, func(item *domain.Sensor, _ int) bool {
		return strings.EqualFold(item.Name, ref)
	})

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrSensorNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d sensors", ErrAmbiguousSensor, ref, len(matches))
	}
}
