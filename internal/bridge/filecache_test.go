package bridge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/model"
)

func newCache(t *testing.T) (*bridge.Filecache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	f, err := bridge.NewFilecache(path)
	if err != nil {
		t.Fatalf("NewFilecache: %v", err)
	}
	return f, path
}

func TestFilecacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	f, path := newCache(t)

	if err := f.UpsertCategory(ctx, "Database"); err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if _, err := f.UpsertQuestion(ctx, model.Question{
		ID: "q1", Type: model.QuestionMultipleChoice, Text: "pick",
		Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A",
		Categories: []string{"Database"},
	}); err != nil {
		t.Fatalf("UpsertQuestion: %v", err)
	}
	if err := f.UpsertStudent(ctx, model.Student{ID: "s1", Name: "Ann", Password: "p"}); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	if _, err := f.CreateTest(ctx, model.Test{ID: "t1", Name: "Midterm", Duration: 30}); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	// A fresh instance over the same file sees everything.
	reopened, err := bridge.NewFilecache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	questions, err := reopened.LoadQuestions(ctx)
	if err != nil || len(questions) != 1 || questions[0].ID != "q1" {
		t.Errorf("questions = %v, err = %v", questions, err)
	}
	students, err := reopened.LoadStudents(ctx)
	if err != nil || len(students) != 1 || students[0].Password != "p" {
		t.Errorf("students = %v, err = %v", students, err)
	}
	tests, err := reopened.LoadTests(ctx)
	if err != nil || len(tests) != 1 {
		t.Errorf("tests = %v, err = %v", tests, err)
	}
	categories, err := reopened.LoadCategories(ctx)
	if err != nil || len(categories) != 1 {
		t.Errorf("categories = %v, err = %v", categories, err)
	}
}

func TestFilecacheGradeAndSubmissions(t *testing.T) {
	ctx := context.Background()
	f, path := newCache(t)

	essay := "my answer"
	if _, err := f.UpsertSubmission(ctx, model.Submission{
		ID: "sub1", TestID: "t1", StudentID: "s1",
		Answers: []model.Answer{{QuestionIndex: 0, Type: model.QuestionLongAnswer, Answer: &essay}},
	}); err != nil {
		t.Fatalf("UpsertSubmission: %v", err)
	}
	if err := f.GradeAnswer(ctx, "sub1", 0, true, "fine"); err != nil {
		t.Fatalf("GradeAnswer: %v", err)
	}
	if err := f.GradeAnswer(ctx, "missing", 0, true, ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("grade of unknown submission: %v", err)
	}

	reopened, err := bridge.NewFilecache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	subs, err := reopened.LoadSubmissions(ctx)
	if err != nil || len(subs) != 1 {
		t.Fatalf("submissions = %v, err = %v", subs, err)
	}
	a := subs[0].AnswerAt(0)
	if a == nil || !a.Reviewed || !a.Correct || a.Comment != "fine" {
		t.Errorf("persisted grade = %+v", a)
	}
}

func TestFilecacheRenameStudent(t *testing.T) {
	ctx := context.Background()
	f, path := newCache(t)

	if err := f.UpsertStudent(ctx, model.Student{ID: "s1", Name: "Ann"}); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	if _, err := f.UpsertSubmission(ctx, model.Submission{ID: "sub1", TestID: "t1", StudentID: "s1"}); err != nil {
		t.Fatalf("UpsertSubmission: %v", err)
	}
	if err := f.RenameStudent(ctx, "s1", "s2"); err != nil {
		t.Fatalf("RenameStudent: %v", err)
	}

	reopened, err := bridge.NewFilecache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	students, _ := reopened.LoadStudents(ctx)
	if len(students) != 1 || students[0].ID != "s2" {
		t.Errorf("students = %v", students)
	}
	subs, _ := reopened.LoadSubmissions(ctx)
	if len(subs) != 1 || subs[0].StudentID != "s2" {
		t.Errorf("submissions = %v", subs)
	}
}

func TestFilecacheMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	f, err := bridge.NewFilecache(path)
	if err != nil {
		t.Fatalf("NewFilecache on missing file: %v", err)
	}
	questions, err := f.LoadQuestions(context.Background())
	if err != nil || len(questions) != 0 {
		t.Errorf("fresh cache should be empty, got %v (%v)", questions, err)
	}
}

func TestFilecacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := bridge.NewFilecache(path); err == nil {
		t.Error("corrupt snapshot should fail to open")
	}
}
