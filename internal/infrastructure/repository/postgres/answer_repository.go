package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// AnswerRepository is the append-on-answer, update-on-feedback log keyed
// by answer identifier. No deletion path.
type AnswerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AnswerRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across gateway replicas.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS answers (
	answer_id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	pipeline TEXT NOT NULL,
	answer TEXT NOT NULL,
	class_1 TEXT NOT NULL DEFAULT '',
	class_2 TEXT NOT NULL DEFAULT '',
	answered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	feedback INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_answers_answered_at ON answers(answered_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AnswerRepository) SaveAnswer(ctx context.Context, record domain.AnswerRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO answers (answer_id, question, pipeline, answer, class_1, class_2, answered_at, feedback)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		record.AnswerID, record.Question, record.Pipeline, record.Answer,
		record.Class1, record.Class2, record.AnsweredAt, record.Feedback,
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

// SetFeedback overwrites the feedback value in place; repeated votes are
// last-write-wins. Touching zero rows means the identifier never existed.
func (r *AnswerRepository) SetFeedback(ctx context.Context, answerID string, feedback int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE answers
SET feedback = $2
WHERE answer_id = $1
`, answerID, feedback)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update feedback rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrAnswerNotFound, "set feedback", fmt.Errorf("answer_id=%s", answerID))
	}
	return nil
}

// GetAnswer reads one log row, mostly for operational checks.
func (r *AnswerRepository) GetAnswer(ctx context.Context, answerID string) (*domain.AnswerRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT answer_id, question, pipeline, answer, class_1, class_2, answered_at, feedback
FROM answers
WHERE answer_id = $1
`, answerID)

	var record domain.AnswerRecord
	err := row.Scan(
		&record.AnswerID, &record.Question, &record.Pipeline, &record.Answer,
		&record.Class1, &record.Class2, &record.AnsweredAt, &record.Feedback,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.WrapError(domain.ErrAnswerNotFound, "get answer", fmt.Errorf("answer_id=%s", answerID))
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return &record, nil
}
