package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// stateRowID is the primary key of the single alarm_state row.
const stateRowID = 1

// SQLiteRepository persists state and sensors in an SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at path and migrates it.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)

	r := &SQLiteRepository{db: db}
	if err = r.migrate(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

// migrate runs idempotent schema migrations.
func (r *SQLiteRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alarm_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		alarm_status TEXT NOT NULL,
		arming_status TEXT NOT NULL,
		cat_detected INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL DEFAULT '',
		actor_hostname TEXT,
		actor_username TEXT
	);

	CREATE TABLE IF NOT EXISTS sensors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sensor_type TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sensors_name ON sensors(name);
	`

	_, err := r.db.Exec(schema)

	return err
}

// LoadState reads the single state row.
func (r *SQLiteRepository) LoadState(ctx context.Context) (*domain.State, error) {
	var (
		state              domain.State
		updatedAt          string
		hostname, username sql.NullString
	)

	err := r.db.QueryRowContext(
		ctx,
		`SELECT alarm_status, arming_status, cat_detected, updated_at, actor_hostname, actor_username
		 FROM alarm_state WHERE id = ?`,
		stateRowID,
	).Scan(&state.AlarmStatus, &state.ArmingStatus, &state.CatDetected, &updatedAt, &hostname, &username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}

	if err = validateState(&state); err != nil {
		return nil, err
	}

	if updatedAt != "" {
		if state.Timestamp, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse state timestamp: %w", err)
		}
	}

	if hostname.Valid || username.Valid {
		state.LastActor = &domain.Actor{
			Hostname: hostname.String,
			Username: username.String,
		}
	}

	return &state, nil
}

// LoadSensors reads every sensor ordered by name.
func (r *SQLiteRepository) LoadSensors(ctx context.Context) ([]*domain.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sensor_type, active FROM sensors ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query sensors: %w", err)
	}
	defer rows.Close()

	var sensors []*domain.Sensor

	for rows.Next() {
		sensor := new(domain.Sensor)
		if err = rows.Scan(&sensor.ID, &sensor.Name, &sensor.Type, &sensor.Active); err != nil {
			return nil, fmt.Errorf("scan sensor: %w", err)
		}

		if !sensor.Type.Valid() {
			return nil, fmt.Errorf("scan sensor %q: %w", sensor.Name, domain.ErrInvalidSensorType)
		}

		sensors = append(sensors, sensor)
	}

	return sensors, rows.Err()
}

// Commit replaces the state row and the sensor table in one transaction.
func (r *SQLiteRepository) Commit(ctx context.Context, state *domain.State, sensors []*domain.Sensor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	var updatedAt string
	if !state.Timestamp.IsZero() {
		updatedAt = state.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	var hostname, username sql.NullString
	if state.LastActor != nil {
		hostname = sql.NullString{String: state.LastActor.Hostname, Valid: true}
		username = sql.NullString{String: state.LastActor.Username, Valid: true}
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO alarm_state (id, alarm_status, arming_status, cat_detected, updated_at, actor_hostname, actor_username)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			alarm_status = excluded.alarm_status,
			arming_status = excluded.arming_status,
			cat_detected = excluded.cat_detected,
			updated_at = excluded.updated_at,
			actor_hostname = excluded.actor_hostname,
			actor_username = excluded.actor_username`,
		stateRowID, string(state.AlarmStatus), string(state.ArmingStatus), state.CatDetected, updatedAt, hostname, username,
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM sensors`); err != nil {
		return fmt.Errorf("clear sensors: %w", err)
	}

	for _, sensor := range sensors {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO sensors (id, name, sensor_type, active) VALUES (?, ?, ?, ?)`,
			sensor.ID.String(), sensor.Name, string(sensor.Type), sensor.Active,
		)
		if err != nil {
			return fmt.Errorf("insert sensor %q: %w", sensor.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
