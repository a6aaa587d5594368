package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"MarketLens/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log logrus.FieldLogger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log logrus.FieldLogger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id      TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			bars        INTEGER,
			start_price REAL,
			end_price   REAL,
			return_pct  REAL,
			high        REAL,
			low         REAL,
			position    REAL,
			last_sma    REAL,
			last_ema    REAL,
			last_rsi    REAL,
			total_score REAL,
			tier_label  TEXT,
			rsi_zone    TEXT,
			warning     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol_ts ON analysis_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS indicator_points (
			run_id TEXT NOT NULL REFERENCES analysis_runs(run_id),
			day    TEXT NOT NULL,
			close  REAL NOT NULL,
			sma    REAL,
			ema    REAL NOT NULL,
			rsi    REAL,
			PRIMARY KEY (run_id, day)
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_runs (
			run_id    TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			mode      TEXT NOT NULL,
			query     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_ts ON recommendation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS recommendation_items (
			run_id  TEXT NOT NULL REFERENCES recommendation_runs(run_id),
			rank    INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			name    TEXT,
			score   REAL,
			PRIMARY KEY (run_id, rank)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis stores the run summary and every indicator point in one transaction.
func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, a *model.Analysis) (string, error) {
	if a == nil || a.Series == nil {
		return "", fmt.Errorf("record nil analysis: %w", model.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	var (
		lastSMA, lastRSI null.Float
		lastEMA          null.Float
		score            null.Float
		tier, zone, warn null.String
	)
	if last, ok := a.Indicators.Last(); ok {
		lastSMA, lastRSI, lastEMA = last.SMA, last.RSI, null.FloatFrom(last.EMA)
	}
	if sig := a.Signal; sig != nil {
		score = null.FloatFrom(sig.TotalScore)
		tier = null.StringFrom(sig.Tier.Label)
		zone = null.StringFrom(string(sig.Zone))
		warn = null.NewString(sig.WarningMsg, sig.WarningMsg != "")
	}
	s := a.Summary

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO analysis_runs
		(run_id, timestamp, symbol, bars, start_price, end_price, return_pct, high, low, position,
		 last_sma, last_ema, last_rsi, total_score, tier_label, rsi_zone, warning)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, r.now().Unix(), a.Series.Symbol, s.Bars, s.StartPrice, s.EndPrice, s.ReturnPct,
		s.High, s.Low, s.Position, lastSMA, lastEMA, lastRSI, score, tier, zone, warn,
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO indicator_points
		(run_id, day, close, sma, ema, rsi) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare indicator insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range a.Indicators {
		if _, err := stmt.ExecContext(ctx, runID, p.Time.Format("2006-01-02"), p.Close, p.SMA, p.EMA, p.RSI); err != nil {
			return "", fmt.Errorf("insert indicator point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.log.WithFields(logrus.Fields{"run_id": runID, "symbol": a.Series.Symbol, "points": len(a.Indicators)}).Debug("analysis recorded")
	return runID, nil
}

// RecordRecommendations stores a recommendation query and its ranked items.
func (r *SQLiteRecorder) RecordRecommendations(ctx context.Context, run *RecommendationRun) (string, error) {
	if run == nil {
		return "", fmt.Errorf("record nil recommendation run: %w", model.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO recommendation_runs
		(run_id, timestamp, mode, query) VALUES (?,?,?,?)`,
		runID, r.now().Unix(), run.Mode, run.Query,
	); err != nil {
		return "", fmt.Errorf("insert recommendation run: %w", err)
	}
	for i, rec := range run.Items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO recommendation_items
			(run_id, rank, item_id, name, score) VALUES (?,?,?,?,?)`,
			runID, i+1, rec.Item.ID, rec.Item.Name, rec.Score,
		); err != nil {
			return "", fmt.Errorf("insert recommendation item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// IndicatorHistory returns the points stored for a run in date order.
func (r *SQLiteRecorder) IndicatorHistory(ctx context.Context, runID string) ([]model.IndicatorPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day, close, sma, ema, rsi
		FROM indicator_points WHERE run_id = ? ORDER BY day`, runID)
	if err != nil {
		return nil, fmt.Errorf("query indicator points: %w", err)
	}
	defer rows.Close()

	var out []model.IndicatorPoint
	for rows.Next() {
		var (
			day string
			p   model.IndicatorPoint
		)
		if err := rows.Scan(&day, &p.Close, &p.SMA, &p.EMA, &p.RSI); err != nil {
			return nil, fmt.Errorf("scan indicator point: %w", err)
		}
		if p.Time, err = time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestRun returns the newest run id and tier label recorded for symbol.
func (r *SQLiteRecorder) LatestRun(ctx context.Context, symbol string) (runID string, tier null.String, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT run_id, tier_label FROM analysis_runs
		WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT 1`, symbol).Scan(&runID, &tier)
	if err == sql.ErrNoRows {
		return "", tier, fmt.Errorf("no runs for %s: %w", symbol, model.ErrNotFound)
	}
	return runID, tier, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
