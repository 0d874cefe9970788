package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// PreferenceRepository keeps per-chat overrides in a local sqlite file.
// A missing row means the chat runs on service defaults.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// sqlite handles one writer at a time; keep the pool at one connection
	// so concurrent upserts queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return db, nil
}

func (r *PreferenceRepository) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS chats (
	chat_id INTEGER PRIMARY KEY,
	pipeline TEXT,
	verbose BOOLEAN
);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) Get(ctx context.Context, chatID int64) (*domain.ChatPreference, error) {
	pref := domain.ChatPreference{ChatID: chatID}

	row := r.db.QueryRowContext(ctx, `
SELECT pipeline, verbose FROM chats WHERE chat_id = ?
`, chatID)
	err := row.Scan(&pref.Pipeline, &pref.Verbose)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat preference: %w", err)
	}
	return &pref, nil
}

// SetPipeline upserts only the pipeline column; a stored verbose flag
// survives untouched.
func (r *PreferenceRepository) SetPipeline(ctx context.Context, chatID int64, pipeline string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chats (chat_id, pipeline) VALUES (?, ?)
ON CONFLICT(chat_id) DO UPDATE SET pipeline = excluded.pipeline
`, chatID, pipeline)
	if err != nil {
		return fmt.Errorf("set chat pipeline: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) SetVerbose(ctx context.Context, chatID int64, verbose bool) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chats (chat_id, verbose) VALUES (?, ?)
ON CONFLICT(chat_id) DO UPDATE SET verbose = excluded.verbose
`, chatID, verbose)
	if err != nil {
		return fmt.Errorf("set chat verbose: %w", err)
	}
	return nil
}
