// Package clickhouse archives completed calculation runs for analytics:
// run-level metrics in columns, the full results record as JSON.
package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"massbal/internal/engine"
	"massbal/pkg/api"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "massbal",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// RunRecord is one archived calculation run.
type RunRecord struct {
	ID          uuid.UUID  `ch:"id"`
	ProjectType string     `ch:"project_type"`
	ProjectName string     `ch:"project_name"`
	ScenarioID  *uuid.UUID `ch:"scenario_id"`

	StartedAt time.Time `ch:"started_at"`
	ElapsedMS int64     `ch:"elapsed_ms"`

	Converged    bool `ch:"converged"`
	Iterations   int  `ch:"iterations"`
	StageCount   int  `ch:"stage_count"`
	WarningCount int  `ch:"warning_count"`
	ErrorCount   int  `ch:"error_count"`

	Results   string    `ch:"results"` // full results record, JSON
	CreatedAt time.Time `ch:"created_at"`
}

// Store archives runs in ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore connects and returns a run archive store.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// InitSchema creates the run archive table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS calculation_runs (
			id            UUID,
			project_type  LowCardinality(String),
			project_name  String,
			scenario_id   Nullable(UUID),
			started_at    DateTime64(3),
			elapsed_ms    Int64,
			converged     UInt8,
			iterations    Int32,
			stage_count   Int32,
			warning_count Int32,
			error_count   Int32,
			results       String,
			created_at    DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (project_type, started_at)
	`
	return s.conn.Exec(ctx, query)
}

// ArchiveRun writes one completed run. scenarioID may be nil for ad-hoc runs.
func (s *Store) ArchiveRun(ctx context.Context, run *engine.Run, scenarioID *uuid.UUID) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	payload, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	errorCount := 0
	for _, w := range run.Results.Warnings {
		if w.Severity == api.SeverityError {
			errorCount++
		}
	}

	query := `
		INSERT INTO calculation_runs (
			id, project_type, project_name, scenario_id, started_at, elapsed_ms,
			converged, iterations, stage_count, warning_count, error_count,
			results, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		id,
		string(run.ProjectType),
		run.ProjectName,
		scenarioID,
		run.StartedAt,
		run.ElapsedMS,
		boolToUInt8(run.Results.Convergence.Achieved),
		int32(run.Results.Convergence.Iterations),
		int32(len(run.Results.LiquidStages)+len(run.Results.ADStages)),
		int32(len(run.Results.Warnings)),
		int32(errorCount),
		string(payload),
		time.Now(),
	)
}

// GetRun retrieves one archived run by ID. Returns nil when not found.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, project_type, project_name, scenario_id, started_at,
			   elapsed_ms, converged, iterations, stage_count, warning_count,
			   error_count, results, created_at
		FROM calculation_runs
		WHERE id = ?
		LIMIT 1
	`
	row := s.conn.QueryRow(ctx, query, id)

	var rec RunRecord
	var converged uint8
	var iterations, stageCount, warningCount, errorCount int32
	err := row.Scan(
		&rec.ID, &rec.ProjectType, &rec.ProjectName, &rec.ScenarioID,
		&rec.StartedAt, &rec.ElapsedMS, &converged, &iterations, &stageCount,
		&warningCount, &errorCount, &rec.Results, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	rec.Converged = converged == 1
	rec.Iterations = int(iterations)
	rec.StageCount = int(stageCount)
	rec.WarningCount = int(warningCount)
	rec.ErrorCount = int(errorCount)
	return &rec, nil
}

// ListRuns lists archived runs newest first, optionally filtered by project
// type. limit caps the result; zero means 100.
func (s *Store) ListRuns(ctx context.Context, projectType string, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, project_type, project_name, scenario_id, started_at,
			   elapsed_ms, converged, iterations, stage_count, warning_count,
			   error_count, results, created_at
		FROM calculation_runs
	`
	args := []any{}
	if projectType != "" {
		query += " WHERE project_type = ?"
		args = append(args, projectType)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var rec RunRecord
		var converged uint8
		var iterations, stageCount, warningCount, errorCount int32
		if err := rows.Scan(
			&rec.ID, &rec.ProjectType, &rec.ProjectName, &rec.ScenarioID,
			&rec.StartedAt, &rec.ElapsedMS, &converged, &iterations, &stageCount,
			&warningCount, &errorCount, &rec.Results, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Converged = converged == 1
		rec.Iterations = int(iterations)
		rec.StageCount = int(stageCount)
		rec.WarningCount = int(warningCount)
		rec.ErrorCount = int(errorCount)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// UnmarshalResults decodes the archived results payload.
func (r *RunRecord) UnmarshalResults() (*api.Results, error) {
	var res api.Results
	if err := json.Unmarshal([]byte(r.Results), &res); err != nil {
		return nil, fmt.Errorf("failed to decode archived results: %w", err)
	}
	return &res, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
