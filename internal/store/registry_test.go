package store_test

import (
	"errors"
	"testing"

	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/store"
)

func seeded() *store.Registry {
	r := store.NewRegistry()
	r.UpsertQuestion(model.Question{
		ID: "q1", Type: model.QuestionMultipleChoice, Text: "mc",
		Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A",
		Categories: []string{"Database"},
	})
	r.UpsertQuestion(model.Question{
		ID: "q2", Type: model.QuestionLongAnswer, Text: "essay",
		Categories: []string{"Database", "Networking"},
	})
	r.UpsertStudent(model.Student{ID: "s1", Name: "Ann", Password: "pass123"})
	r.UpsertStudent(model.Student{ID: "s2", Name: "Ben", Password: "pass123"})
	r.AddTest(model.Test{
		ID: "t1", Name: "Midterm", Duration: 30,
		Questions:        []model.Question{{ID: "q1", Type: model.QuestionMultipleChoice}},
		AssignedStudents: []string{"s1", "s2"},
	})
	return r
}

func TestUpsertQuestionRegistersCategories(t *testing.T) {
	r := seeded()
	cats := r.Categories()
	if len(cats) != 2 {
		t.Fatalf("categories = %v, want Database and Networking", cats)
	}
	// Adding again must not duplicate.
	r.AddCategory("Database")
	if got := len(r.Categories()); got != 2 {
		t.Errorf("duplicate category registered, count = %d", got)
	}
}

func TestDeleteCategoryStripsQuestions(t *testing.T) {
	r := seeded()
	r.DeleteCategory("Database")

	q1, _ := r.QuestionByID("q1")
	if len(q1.Categories) != 0 {
		t.Errorf("q1 categories = %v, want none", q1.Categories)
	}
	q2, _ := r.QuestionByID("q2")
	if len(q2.Categories) != 1 || q2.Categories[0] != "Networking" {
		t.Errorf("q2 categories = %v, want [Networking]", q2.Categories)
	}
}

func TestDeleteQuestionKeepsTestSnapshots(t *testing.T) {
	r := seeded()
	if !r.DeleteQuestion("q1") {
		t.Fatal("delete should report success")
	}
	if r.DeleteQuestion("q1") {
		t.Error("second delete should report failure")
	}
	test, _ := r.TestByID("t1")
	if len(test.Questions) != 1 {
		t.Error("test snapshot must survive catalog deletion")
	}
}

func TestPutSubmissionAtMostOne(t *testing.T) {
	r := seeded()
	r.PutSubmission(model.Submission{ID: "a", TestID: "t1", StudentID: "s1"})
	r.PutSubmission(model.Submission{ID: "b", TestID: "t1", StudentID: "s1"})
	r.PutSubmission(model.Submission{ID: "c", TestID: "t1", StudentID: "s2"})

	if got := len(r.Submissions()); got != 2 {
		t.Fatalf("submissions = %d, want 2 (one per student)", got)
	}
	sub, ok := r.SubmissionFor("t1", "s1")
	if !ok || sub.ID != "b" {
		t.Errorf("later submission should supersede, got %q", sub.ID)
	}
}

func TestGradeAnswer(t *testing.T) {
	r := seeded()
	essay := "ok"
	choice := "B"
	r.PutSubmission(model.Submission{
		ID: "sub1", TestID: "t1", StudentID: "s1",
		Answers: []model.Answer{
			{QuestionIndex: 0, Type: model.QuestionLongAnswer, Answer: &essay},
			{QuestionIndex: 1, Type: model.QuestionMultipleChoice, Answer: &choice, Correct: false},
		},
	})

	if err := r.GradeAnswer("sub1", 0, true, "well argued"); err != nil {
		t.Fatalf("GradeAnswer: %v", err)
	}
	sub, _ := r.SubmissionByID("sub1")
	a := sub.AnswerAt(0)
	if !a.Reviewed || !a.Correct || a.Comment != "well argued" {
		t.Errorf("graded answer = %+v", a)
	}

	// Re-grading overwrites the verdict.
	if err := r.GradeAnswer("sub1", 0, false, ""); err != nil {
		t.Fatalf("re-grade: %v", err)
	}
	sub, _ = r.SubmissionByID("sub1")
	if sub.AnswerAt(0).Correct {
		t.Error("re-grade should overwrite the previous verdict")
	}

	t.Run("MissingTargets", func(t *testing.T) {
		if err := r.GradeAnswer("nope", 0, true, ""); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("unknown submission: %v", err)
		}
		if err := r.GradeAnswer("sub1", 9, true, ""); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("unknown answer index: %v", err)
		}
	})

	t.Run("MultipleChoiceRefused", func(t *testing.T) {
		if err := r.GradeAnswer("sub1", 1, true, "flip"); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("grading a multiple-choice answer: %v", err)
		}
		sub, _ := r.SubmissionByID("sub1")
		a := sub.AnswerAt(1)
		if a.Correct || a.Reviewed || a.Comment != "" {
			t.Errorf("multiple-choice verdict mutated: %+v", a)
		}
	})
}

func TestRenameStudentCascades(t *testing.T) {
	r := seeded()
	r.PutSubmission(model.Submission{ID: "sub1", TestID: "t1", StudentID: "s1"})

	if err := r.RenameStudent("s1", "s9"); err != nil {
		t.Fatalf("RenameStudent: %v", err)
	}
	if _, ok := r.StudentByID("s1"); ok {
		t.Error("old id should be gone")
	}
	if _, ok := r.StudentByID("s9"); !ok {
		t.Error("new id should exist")
	}
	test, _ := r.TestByID("t1")
	if !test.IsAssigned("s9") || test.IsAssigned("s1") {
		t.Errorf("assignments not renamed: %v", test.AssignedStudents)
	}
	if _, ok := r.SubmissionFor("t1", "s9"); !ok {
		t.Error("submissions not renamed")
	}

	t.Run("DuplicateTarget", func(t *testing.T) {
		if err := r.RenameStudent("s9", "s2"); !errors.Is(err, model.ErrDuplicateID) {
			t.Errorf("rename onto taken id: %v", err)
		}
	})
	t.Run("UnknownSource", func(t *testing.T) {
		if err := r.RenameStudent("ghost", "s10"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("rename of unknown student: %v", err)
		}
	})
}

func TestDeleteStudentCascades(t *testing.T) {
	r := seeded()
	r.PutSubmission(model.Submission{ID: "sub1", TestID: "t1", StudentID: "s1"})

	if !r.DeleteStudent("s1") {
		t.Fatal("delete should report success")
	}
	if got := len(r.Submissions()); got != 0 {
		t.Errorf("submissions remaining = %d, want 0", got)
	}
	test, _ := r.TestByID("t1")
	if test.IsAssigned("s1") {
		t.Error("assignment should be removed")
	}
	if r.DeleteStudent("s1") {
		t.Error("second delete should report failure")
	}
}

func TestDeleteTestCascades(t *testing.T) {
	r := seeded()
	r.PutSubmission(model.Submission{ID: "sub1", TestID: "t1", StudentID: "s1"})

	if !r.DeleteTest("t1") {
		t.Fatal("delete should report success")
	}
	if got := len(r.Submissions()); got != 0 {
		t.Errorf("submissions remaining = %d, want 0", got)
	}
}

func TestSetAssignments(t *testing.T) {
	r := seeded()
	if err := r.SetAssignments("t1", []string{"s2"}); err != nil {
		t.Fatalf("SetAssignments: %v", err)
	}
	test, _ := r.TestByID("t1")
	if test.IsAssigned("s1") || !test.IsAssigned("s2") {
		t.Errorf("assignments = %v, want [s2]", test.AssignedStudents)
	}
	if err := r.SetAssignments("missing", nil); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown test: %v", err)
	}
}

func TestUnsyncedCounter(t *testing.T) {
	r := store.NewRegistry()
	r.MarkUnsynced()
	r.MarkUnsynced()
	if r.UnsyncedCount() != 2 {
		t.Errorf("count = %d, want 2", r.UnsyncedCount())
	}
	r.ClearUnsynced()
	if r.UnsyncedCount() != 0 {
		t.Errorf("count after clear = %d, want 0", r.UnsyncedCount())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := seeded()
	snap := r.Snapshot()
	snap.Questions[0].Text = "mutated"
	snap.Tests[0].AssignedStudents[0] = "mutated"

	q, _ := r.QuestionByID("q1")
	if q.Text == "mutated" {
		t.Error("snapshot shares question memory with the registry")
	}
	test, _ := r.TestByID("t1")
	if test.AssignedStudents[0] == "mutated" {
		t.Error("snapshot shares assignment memory with the registry")
	}
}

func TestCounts(t *testing.T) {
	r := seeded()
	r.PutSubmission(model.Submission{
		ID: "sub1", TestID: "t1", StudentID: "s1",
		Answers: []model.Answer{{QuestionIndex: 0, Type: model.QuestionLongAnswer}},
	})
	tests, students, questions, pending := r.Counts()
	if tests != 1 || students != 2 || questions != 2 || pending != 1 {
		t.Errorf("counts = %d/%d/%d/%d", tests, students, questions, pending)
	}
}
