package tracking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grocerscan/tesco_scraper/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Tracker persists one row per scrape run so partial failures can be spotted
// after the fact (the pipeline itself surfaces them only through logs).
type Tracker struct {
	conn *sqlx.DB
}

type RunStats struct {
	TotalRequests   int64
	HandledRequests int64
	FailedRequests  int64
	RecordsEmitted  int64
}

// Run is one persisted scrape run. The counters stay nil until the run
// finished.
type Run struct {
	ID              string `db:"id"`
	Region          string `db:"region"`
	TotalQueries    int    `db:"total_queries"`
	TotalRequests   *int64 `db:"total_requests"`
	HandledRequests *int64 `db:"handled_requests"`
	FailedRequests  *int64 `db:"failed_requests"`
	RecordsEmitted  *int64 `db:"records_emitted"`
}

func NewTracker(cfg *config.PostgresConfig) (*Tracker, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s ", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
	if cfg.SSL {
		dsn += "sslmode=require"
	} else {
		dsn += "sslmode=disable"
	}
	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db connection error :%v", err)
	}
	if _, err := conn.Exec(createRunsTable); err != nil {
		return nil, fmt.Errorf("failed to ensure scrape_runs table: %w", err)
	}
	return &Tracker{conn: conn}, nil
}

// NewTrackerFromDB wraps an existing connection. The caller owns the schema.
func NewTrackerFromDB(conn *sqlx.DB) *Tracker {
	return &Tracker{conn: conn}
}

func (t *Tracker) StartRun(ctx context.Context, region string, totalQueries int) (string, error) {
	runID := uuid.NewString()
	if _, err := t.conn.ExecContext(ctx, insertRun, runID, region, totalQueries); err != nil {
		return "", fmt.Errorf("failed to insert scrape run: %w", err)
	}
	return runID, nil
}

func (t *Tracker) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	_, err := t.conn.ExecContext(ctx, finishRun, runID,
		stats.TotalRequests, stats.HandledRequests, stats.FailedRequests, stats.RecordsEmitted)
	if err != nil {
		return fmt.Errorf("failed to update scrape run %s: %w", runID, err)
	}
	return nil
}

func (t *Tracker) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	if err := t.conn.GetContext(ctx, &run, getRun, runID); err != nil {
		return nil, fmt.Errorf("failed to read scrape run %s: %w", runID, err)
	}
	return &run, nil
}

func (t *Tracker) Close() error {
	return t.conn.Close()
}
