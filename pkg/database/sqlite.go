package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// Config holds reference store configuration
type Config struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  time.Duration
}

// SQLiteDB wraps sqlx.DB with monitoring and metrics. The reference store is
// a local SQLite file loaded at startup and mostly read thereafter.
type SQLiteDB struct {
	db     *sqlx.DB
	logger *logging.StructuredLogger
	mc     *metrics.Collector
	config *Config
}

// NewSQLiteDB opens the reference store file, creating it when absent
func NewSQLiteDB(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*SQLiteDB, error) {
	busyTimeout := cfg.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, busyTimeout.Milliseconds())

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference store: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping reference store: %w", err)
	}

	logger.Info(context.Background(), "[DB_INIT] Reference store opened", logging.Fields{
		"path":           cfg.Path,
		"max_open_conns": maxOpen,
	})

	return &SQLiteDB{
		db:     db,
		logger: logger,
		mc:     metricsCollector,
		config: cfg,
	}, nil
}

// Close closes the reference store
func (s *SQLiteDB) Close() error {
	s.logger.Info(context.Background(), "[DB_CLOSE] Closing reference store", logging.Fields{
		"path": s.config.Path,
	})
	return s.db.Close()
}

// DB returns the underlying sqlx.DB instance
func (s *SQLiteDB) DB() *sqlx.DB {
	return s.db
}

// ExecContext executes a command with context and metrics
func (s *SQLiteDB) ExecContext(ctx context.Context, queryType, query string, args ...interface{}) (sql.Result, error) {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		s.mc.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())

		s.logger.Debug(ctx, "[DB_EXEC] Command executed", logging.Fields{
			"query_type":  queryType,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.mc.RecordDBError("exec_error")
		s.logger.Error(ctx, "[DB_EXEC_ERROR] Command failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return nil, err
	}

	return result, nil
}

// GetContext executes a query that returns a single row
func (s *SQLiteDB) GetContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		s.mc.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := s.db.GetContext(ctx, dest, query, args...)
	if err != nil && err != sql.ErrNoRows {
		s.mc.RecordDBError("get_error")
		s.logger.Error(ctx, "[DB_GET_ERROR] Get query failed", logging.Fields{
			"query_type": queryType,
		}, err)
	}

	return err
}

// SelectContext executes a query that returns multiple rows
func (s *SQLiteDB) SelectContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		s.mc.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := s.db.SelectContext(ctx, dest, query, args...)
	if err != nil {
		s.mc.RecordDBError("select_error")
		s.logger.Error(ctx, "[DB_SELECT_ERROR] Select query failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return err
	}

	return nil
}

// BeginTx begins a new transaction for bulk reference loads
func (s *SQLiteDB) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.mc.RecordDBError("transaction_begin_error")
		s.logger.Error(ctx, "[DB_TX_ERROR] Failed to begin transaction", logging.Fields{}, err)
		return nil, err
	}

	return tx, nil
}

// HealthCheck performs a reference store health check
func (s *SQLiteDB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("reference store health check failed: %w", err)
	}

	return nil
}
