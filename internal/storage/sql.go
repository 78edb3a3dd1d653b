package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Supported history drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

const createCaseResults = `CREATE TABLE IF NOT EXISTS case_results (
	run_id VARCHAR(36) NOT NULL,
	name VARCHAR(255) NOT NULL,
	attempt INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	started_at VARCHAR(40) NOT NULL,
	duration_seconds DOUBLE NOT NULL,
	error TEXT,
	PRIMARY KEY (run_id, name, attempt)
)`

const insertCaseResult = `INSERT INTO case_results
	(run_id, name, attempt, passed, started_at, duration_seconds, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectCaseHistory = `SELECT name,
	SUM(CASE WHEN attempt = 1 THEN 1 ELSE 0 END),
	SUM(CASE WHEN attempt = 1 AND passed = 1 THEN 1 ELSE 0 END),
	SUM(CASE WHEN attempt = 2 AND passed = 1 THEN 1 ELSE 0 END),
	SUM(CASE WHEN attempt = 2 AND passed = 0 THEN 1 ELSE 0 END),
	AVG(CASE WHEN attempt = 1 THEN duration_seconds END)
	FROM case_results
	GROUP BY name
	ORDER BY 5 DESC, 4 DESC, name`

// CaseHistory aggregates every recorded run of one case
type CaseHistory struct {
	Name       string
	Runs       int // First-pass executions
	Passed     int // Passed on the first pass
	Flaky      int // Failed, then passed on rerun
	Failed     int // Failed twice
	AvgSeconds float64
}

// History appends every run's case results to a SQL database
type History struct {
	db *sql.DB
}

// OpenHistory connects to the history database and creates the table if needed
func OpenHistory(ctx context.Context, driver, dsn string) (*History, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported history driver %q (want %s or %s)", driver, DriverMySQL, DriverSQLite)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if driver == DriverSQLite {
		// sqlite serializes writers; one connection also keeps :memory: databases alive
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	h := &History{db: db}
	if _, err := db.ExecContext(ctx, createCaseResults); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return h, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

// Record stores every first-pass and rerun result of report in one transaction
func (h *History) Record(ctx context.Context, report *domain.Report) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertCaseResult)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, results := range [][]domain.CaseResult{report.Results, report.Reruns} {
		for _, r := range results {
			var errText sql.NullString
			if r.Error != "" {
				errText = sql.NullString{String: r.Error, Valid: true}
			}
			passed := 0
			if r.Passed {
				passed = 1
			}
			if _, err := stmt.ExecContext(ctx,
				report.RunID,
				r.Name,
				r.Attempt,
				passed,
				r.StartedAt.UTC().Format(time.RFC3339Nano),
				r.Seconds,
				errText,
			); err != nil {
				return fmt.Errorf("record %s: %w", r.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Cases returns the aggregated history of every recorded case, most failing first
func (h *History) Cases(ctx context.Context) ([]CaseHistory, error) {
	rows, err := h.db.QueryContext(ctx, selectCaseHistory)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []CaseHistory
	for rows.Next() {
		var c CaseHistory
		var avg sql.NullFloat64
		if err := rows.Scan(&c.Name, &c.Runs, &c.Passed, &c.Flaky, &c.Failed, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		c.AvgSeconds = avg.Float64
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history iteration error: %w", err)
	}
	return out, nil
}
