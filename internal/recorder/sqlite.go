package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"CoinRadar/internal/model"
)

// SQLiteRecorder archives snapshots and cycle events to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL mode for concurrent readers while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id         TEXT NOT NULL,
			coin_id          TEXT NOT NULL,
			symbol           TEXT,
			name             TEXT,
			image            TEXT,
			current_price    REAL,
			price_change_24h REAL,
			market_cap       REAL,
			total_volume     REAL,
			prices           TEXT,
			volumes          TEXT,
			fetched_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_cycle ON snapshots(cycle_id)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			duration_ms INTEGER,
			source      TEXT,
			result      TEXT,
			assets      INTEGER,
			ranked      INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshots(ctx context.Context, cycleID string, snaps []model.AssetSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshots
		(cycle_id, coin_id, symbol, name, image, current_price, price_change_24h,
		 market_cap, total_volume, prices, volumes, fetched_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range snaps {
		prices, err := json.Marshal(s.Prices)
		if err != nil {
			return fmt.Errorf("encode prices for %s: %w", s.ID, err)
		}
		var volumes []byte
		if s.Volumes != nil {
			if volumes, err = json.Marshal(s.Volumes); err != nil {
				return fmt.Errorf("encode volumes for %s: %w", s.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx,
			cycleID, s.ID, s.Symbol, s.Name, s.Image, s.CurrentPrice, s.PriceChange24h,
			s.MarketCap, s.TotalVolume, string(prices), nullString(volumes), s.FetchedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordCycle(ctx context.Context, evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO cycles
		(cycle_id, timestamp, duration_ms, source, result, assets, ranked, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.CycleID, evt.StartedAt.Unix(), evt.Duration.Milliseconds(),
		evt.Source, evt.Result, evt.Assets, evt.Ranked, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) LatestSnapshots(ctx context.Context) (string, []model.AssetSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cycleID string
	err := r.db.QueryRowContext(ctx, `SELECT cycle_id FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&cycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoArchive
	}
	if err != nil {
		return "", nil, fmt.Errorf("latest cycle: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT coin_id, symbol, name, image, current_price, price_change_24h,
		market_cap, total_volume, prices, volumes, fetched_at
		FROM snapshots WHERE cycle_id = ? ORDER BY id`, cycleID)
	if err != nil {
		return "", nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.AssetSnapshot
	for rows.Next() {
		var (
			s         model.AssetSnapshot
			prices    string
			volumes   sql.NullString
			fetchedAt int64
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Name, &s.Image, &s.CurrentPrice, &s.PriceChange24h,
			&s.MarketCap, &s.TotalVolume, &prices, &volumes, &fetchedAt); err != nil {
			return "", nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(prices), &s.Prices); err != nil {
			return "", nil, fmt.Errorf("decode prices for %s: %w", s.ID, err)
		}
		if volumes.Valid {
			if err := json.Unmarshal([]byte(volumes.String), &s.Volumes); err != nil {
				return "", nil, fmt.Errorf("decode volumes for %s: %w", s.ID, err)
			}
		}
		s.FetchedAt = time.UnixMilli(fetchedAt)
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}
	return cycleID, snaps, nil
}

func (r *SQLiteRecorder) Prune(ctx context.Context, keepCycles int) error {
	if keepCycles <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE cycle_id NOT IN (
		SELECT cycle_id FROM snapshots GROUP BY cycle_id ORDER BY MAX(id) DESC LIMIT ?)`, keepCycles)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.log.Debug().Int64("rows", n).Msg("pruned archived snapshots")
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullString(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
