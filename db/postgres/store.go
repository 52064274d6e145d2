// Package postgres persists scenarios: a named intake record that can be
// recalculated on demand. The engine never reads this store; the API and CLI
// load a scenario, run the engine, and archive the result.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"massbal/pkg/api"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		Database: "massbal",
		Username: "postgres",
		Password: "",
		SSLMode:  "disable",
	}
}

// DSN renders the config as a lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode)
}

// Scenario is a saved intake with identity and timestamps.
type Scenario struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	ProjectType string      `json:"project_type"`
	Intake      *api.Intake `json:"intake"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Store implements scenario CRUD over PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool against the configured database.
func NewStore(cfg *Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &Store{db: db}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the scenarios table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scenarios (
			id           UUID PRIMARY KEY,
			name         TEXT NOT NULL,
			project_type TEXT NOT NULL,
			intake       JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// CreateScenario stores a new scenario and returns it with identity and
// timestamps filled in.
func (s *Store) CreateScenario(ctx context.Context, name string, intake *api.Intake) (*Scenario, error) {
	payload, err := json.Marshal(intake)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intake: %w", err)
	}

	sc := &Scenario{
		ID:          uuid.New(),
		Name:        name,
		ProjectType: string(intake.ProjectType),
		Intake:      intake,
	}
	query := `
		INSERT INTO scenarios (id, name, project_type, intake)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query, sc.ID, sc.Name, sc.ProjectType, payload).
		Scan(&sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario: %w", err)
	}
	return sc, nil
}

// GetScenario retrieves one scenario by ID. Returns nil when not found.
func (s *Store) GetScenario(ctx context.Context, id uuid.UUID) (*Scenario, error) {
	query := `
		SELECT id, name, project_type, intake, created_at, updated_at
		FROM scenarios
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	var sc Scenario
	var payload []byte
	err := row.Scan(&sc.ID, &sc.Name, &sc.ProjectType, &payload, &sc.CreatedAt, &sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if err := json.Unmarshal(payload, &sc.Intake); err != nil {
		return nil, fmt.Errorf("failed to decode intake: %w", err)
	}
	return &sc, nil
}

// UpdateScenario replaces the name and intake of an existing scenario.
// Returns false when no scenario with the ID exists.
func (s *Store) UpdateScenario(ctx context.Context, id uuid.UUID, name string, intake *api.Intake) (bool, error) {
	payload, err := json.Marshal(intake)
	if err != nil {
		return false, fmt.Errorf("failed to marshal intake: %w", err)
	}
	query := `
		UPDATE scenarios
		SET name = $2, project_type = $3, intake = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, name, string(intake.ProjectType), payload)
	if err != nil {
		return false, fmt.Errorf("failed to update scenario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteScenario removes a scenario. Returns false when it did not exist.
func (s *Store) DeleteScenario(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete scenario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListScenarios lists scenarios newest first, optionally filtered by project
// type. limit caps the result; zero means 100. Intake payloads are included.
func (s *Store) ListScenarios(ctx context.Context, projectType string, limit int) ([]*Scenario, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, project_type, intake, created_at, updated_at
		FROM scenarios
	`
	args := []any{}
	if projectType != "" {
		query += " WHERE project_type = $1"
		args = append(args, projectType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []*Scenario
	for rows.Next() {
		var sc Scenario
		var payload []byte
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.ProjectType, &payload, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		if err := json.Unmarshal(payload, &sc.Intake); err != nil {
			return nil, fmt.Errorf("failed to decode intake: %w", err)
		}
		scenarios = append(scenarios, &sc)
	}
	return scenarios, rows.Err()
}
