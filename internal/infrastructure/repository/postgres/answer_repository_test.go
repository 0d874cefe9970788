package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/airndlab/support-qna/internal/core/domain"
)

func TestAnswerRepositorySaveAnswerInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAnswerRepository(db)
	record := domain.AnswerRecord{
		AnswerID:   "a-1",
		Question:   "как сменить пароль",
		Pipeline:   "faq",
		Answer:     "нажмите «забыли пароль»",
		AnsweredAt: time.Now(),
	}

	mock.ExpectExec("INSERT INTO answers").
		WithArgs(record.AnswerID, record.Question, record.Pipeline, record.Answer,
			"", "", record.AnsweredAt, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveAnswer(context.Background(), record); err != nil {
		t.Fatalf("SaveAnswer() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAnswerRepositorySetFeedbackOverwrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAnswerRepository(db)
	mock.ExpectExec("UPDATE answers").
		WithArgs("a-1", domain.FeedbackDislike).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetFeedback(context.Background(), "a-1", domain.FeedbackDislike); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAnswerRepositorySetFeedbackUnknownIDReturnsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAnswerRepository(db)
	mock.ExpectExec("UPDATE answers").
		WithArgs("missing", domain.FeedbackLike).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SetFeedback(context.Background(), "missing", domain.FeedbackLike)
	if !domain.IsKind(err, domain.ErrAnswerNotFound) {
		t.Fatalf("expected ErrAnswerNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAnswerRepositoryGetAnswerMissingReturnsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAnswerRepository(db)
	mock.ExpectQuery("FROM answers").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"answer_id", "question", "pipeline", "answer", "class_1", "class_2", "answered_at", "feedback",
		}))

	_, err = repo.GetAnswer(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrAnswerNotFound) {
		t.Fatalf("expected ErrAnswerNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
