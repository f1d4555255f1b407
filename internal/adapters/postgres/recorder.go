package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/unitpass/passbot/pkg/domain"
)

// Recorder appends completed dialogs to the pass_codes table, creating
// it on first use. Column order is fixed: chat id, name parts, serial
// number, date, its decomposition, code.
type Recorder struct {
	db *sql.DB

	mu    sync.Mutex
	ready bool
}

// NewRecorder creates a recorder over an existing pool.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

const createPassCodesSQL = `
CREATE TABLE IF NOT EXISTS pass_codes (
	id            BIGSERIAL PRIMARY KEY,
	chat_id       BIGINT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	user_name     TEXT NOT NULL DEFAULT '',
	serial_number TEXT NOT NULL,
	date          TEXT NOT NULL,
	day           INT NOT NULL,
	month         INT NOT NULL,
	year          INT NOT NULL,
	pass_code     INT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertPassCodeSQL = `
INSERT INTO pass_codes
	(chat_id, first_name, last_name, user_name, serial_number, date, day, month, year, pass_code)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// ensureTable creates the backing table once per process. A failed
// attempt is retried on the next append rather than remembered.
func (r *Recorder) ensureTable(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createPassCodesSQL); err != nil {
		return err
	}
	r.ready = true
	return nil
}

// Append persists one completed dialog.
func (r *Recorder) Append(ctx context.Context, rec *domain.PassCodeRecord) error {
	if err := r.ensureTable(ctx); err != nil {
		return fmt.Errorf("ensure pass_codes table: %w", err)
	}

	_, err := r.db.ExecContext(ctx, insertPassCodeSQL,
		rec.ChatID,
		rec.FirstName,
		rec.LastName,
		rec.UserName,
		rec.SerialNumber,
		rec.Date,
		rec.Day,
		rec.Month,
		rec.Year,
		rec.PassCode,
	)
	if err != nil {
		return fmt.Errorf("insert pass code: %w", err)
	}
	return nil
}
