package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*bridge.Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return bridge.NewPostgres(gormDB), mock
}

func TestPostgresUpsertStudent(t *testing.T) {
	pg, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "students"`).
		WithArgs("s1", "Ann", "pass123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := pg.UpsertStudent(context.Background(), model.Student{ID: "s1", Name: "Ann", Password: "pass123"})
	if err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresGradeAnswer(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		pg, mock := setupMockDB(t)

		// The update is scoped to long answers so a review can never touch a
		// multiple-choice verdict.
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "submission_answers"`).
			WithArgs("ok", true, true, "sub1", 0, string(model.QuestionLongAnswer)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := pg.GradeAnswer(context.Background(), "sub1", 0, true, "ok"); err != nil {
			t.Fatalf("GradeAnswer: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		pg, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "submission_answers"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := pg.GradeAnswer(context.Background(), "sub1", 9, true, "")
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("zero rows affected should map to ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresDeleteCategory(t *testing.T) {
	pg, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "question_categories"`).
		WithArgs("Database").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "categories"`).
		WithArgs("Database").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := pg.DeleteCategory(context.Background(), "Database"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresLoadQuestions(t *testing.T) {
	t.Run("JoinsCategories", func(t *testing.T) {
		pg, mock := setupMockDB(t)

		questions := sqlmock.NewRows([]string{"id", "type", "text"}).
			AddRow("q1", "multiple-choice", "pick")
		mock.ExpectQuery(`SELECT \* FROM "questions"`).WillReturnRows(questions)
		links := sqlmock.NewRows([]string{"question_id", "category_name"}).
			AddRow("q1", "Database").
			AddRow("q1", "Networking")
		mock.ExpectQuery(`SELECT \* FROM "question_categories"`).WillReturnRows(links)

		out, err := pg.LoadQuestions(context.Background())
		if err != nil {
			t.Fatalf("LoadQuestions: %v", err)
		}
		if len(out) != 1 || len(out[0].Categories) != 2 {
			t.Errorf("questions = %+v", out)
		}
	})

	t.Run("CategoryLoadErrorPropagates", func(t *testing.T) {
		pg, mock := setupMockDB(t)

		questions := sqlmock.NewRows([]string{"id", "type", "text"}).
			AddRow("q1", "multiple-choice", "pick")
		mock.ExpectQuery(`SELECT \* FROM "questions"`).WillReturnRows(questions)
		mock.ExpectQuery(`SELECT \* FROM "question_categories"`).
			WillReturnError(errors.New("connection reset"))

		if _, err := pg.LoadQuestions(context.Background()); err == nil {
			t.Error("a failed category load should fail the whole load")
		}
	})
}

func TestPostgresLoadStudents(t *testing.T) {
	pg, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name", "password"}).
		AddRow("s1", "Ann", "pass123").
		AddRow("s2", "Ben", "pass123")
	mock.ExpectQuery(`SELECT \* FROM "students"`).WillReturnRows(rows)

	students, err := pg.LoadStudents(context.Background())
	if err != nil {
		t.Fatalf("LoadStudents: %v", err)
	}
	if len(students) != 2 || students[0].ID != "s1" || students[1].Name != "Ben" {
		t.Errorf("students = %v", students)
	}
}
