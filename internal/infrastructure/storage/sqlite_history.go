package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

// SQLiteHistory persists served predictions. Inputs are stored as JSON and
// come back as json.RawMessage.
type SQLiteHistory struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteHistory(path string, log logger.Logger) (*SQLiteHistory, error) {
	log = logger.Component(log, "sqlite_history")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	h := &SQLiteHistory{db: db, logger: log}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("Prediction history opened: %s", path)
	return h, nil
}

func (h *SQLiteHistory) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			kind       TEXT NOT NULL,
			input      TEXT NOT NULL,
			result     TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at)`,
	}

	for _, s := range stmts {
		if _, err := h.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (h *SQLiteHistory) Save(ctx context.Context, p *entities.Prediction) error {
	input, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction input: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `INSERT INTO predictions
		(id, user_id, kind, input, result, created_at)
		VALUES (?,?,?,?,?,?)`,
		p.ID, p.UserID, string(p.Kind), string(input), p.Result, p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// ListByUser returns newest first.
func (h *SQLiteHistory) ListByUser(ctx context.Context, userID string, limit int) ([]entities.Prediction, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT id, user_id, kind, input, result, created_at
		FROM predictions WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := []entities.Prediction{}
	for rows.Next() {
		var (
			p         entities.Prediction
			kind      string
			input     string
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &kind, &input, &p.Result, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p.Kind = entities.PredictionKind(kind)
		p.Input = json.RawMessage(input)
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return predictions, nil
}

func (h *SQLiteHistory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx, `DELETE FROM predictions WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	return res.RowsAffected()
}

func (h *SQLiteHistory) HealthCheck(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite health check failed: %w", err)
	}
	return nil
}

func (h *SQLiteHistory) Close() error {
	h.logger.Info("Closing prediction history")
	return h.db.Close()
}
