package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/service"
	"github.com/ldtran/examdesk/internal/session"
	"github.com/ldtran/examdesk/internal/store"
)

type fixture struct {
	reg     *store.Registry
	mgr     *session.Manager
	catalog service.CatalogService
	student service.StudentService
	tests   service.TestService
	exam    service.SessionService
	grading service.GradingService
	sync    service.SyncService
}

// newFixture wires the services over a JSON snapshot bridge and a manager
// whose background ticker is disabled, so tests drive the clock themselves.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	br, err := bridge.NewFilecache(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("NewFilecache: %v", err)
	}
	reg := store.NewRegistry()
	mgr := session.NewManager(0)
	return &fixture{
		reg:     reg,
		mgr:     mgr,
		catalog: service.NewCatalogService(reg, br),
		student: service.NewStudentService(reg, br),
		tests:   service.NewTestService(reg, br),
		exam:    service.NewSessionService(reg, br, mgr),
		grading: service.NewGradingService(reg, br),
		sync:    service.NewSyncService(reg, br, "file"),
	}
}

func (f *fixture) seedExam(t *testing.T) string {
	t.Helper()
	q1, _, err := f.catalog.SaveQuestion(dto.QuestionRequest{
		Type: "multiple-choice", Text: "pick one",
		Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	q2, _, err := f.catalog.SaveQuestion(dto.QuestionRequest{
		Type: "long-answer", Text: "explain",
	})
	if err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	if _, err := f.student.SaveStudent(dto.StudentRequest{ID: "s1", Name: "Ann"}); err != nil {
		t.Fatalf("SaveStudent: %v", err)
	}
	test, _, err := f.tests.CreateTest(dto.CreateTestRequest{
		Name: "Midterm", Duration: 1, QuestionIDs: []string{q1.ID, q2.ID},
	})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if _, err := f.tests.Assign(test.ID, []string{"s1"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return test.ID
}

func TestBootstrapSeedsEmptyBackend(t *testing.T) {
	f := newFixture(t)
	if err := f.sync.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	counts := f.sync.Counts()
	if counts.Questions != 5 || counts.Students != 3 || counts.Categories != 5 {
		t.Errorf("seed counts = %+v", counts)
	}
	// Seeded students can log in with the default password.
	if _, err := f.student.Authenticate("student1", "pass123"); err != nil {
		t.Errorf("seeded student login: %v", err)
	}
}

func TestSaveQuestionValidation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.catalog.SaveQuestion(dto.QuestionRequest{
		Type: "multiple-choice", Text: "bad", Options: []string{"a", "b"}, CorrectAnswer: "A",
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("short options: %v", err)
	}

	_, _, err = f.catalog.SaveQuestion(dto.QuestionRequest{
		Type: "multiple-choice", Text: "bad",
		Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "E",
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad letter: %v", err)
	}

	// Long answers carry no options even when the client sends some.
	q, _, err := f.catalog.SaveQuestion(dto.QuestionRequest{
		Type: "long-answer", Text: "essay", Options: []string{"x"}, CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	if len(q.Options) != 0 || q.CorrectAnswer != "" {
		t.Errorf("long answer kept mc fields: %+v", q)
	}
}

func TestExamFlow(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	assigned := f.exam.AssignedTests("s1")
	if len(assigned) != 1 || assigned[0].Completed {
		t.Fatalf("assigned = %+v", assigned)
	}

	sess, err := f.exam.Start("s1", testID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Remaining != 60 || sess.State != string(session.StateInProgress) {
		t.Errorf("session = %+v", sess)
	}
	// The exam view must not leak answer keys.
	for _, q := range sess.Questions {
		if q.Type == "multiple-choice" && len(q.Options) != 4 {
			t.Errorf("question view = %+v", q)
		}
	}

	if err := f.exam.SetAnswer("s1", dto.AnswerRequest{QuestionIndex: 0, Answer: "a"}); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	// Submit is refused without confirmation, confirmed submit goes through.
	_, err = f.exam.Submit("s1", false)
	if !errors.Is(err, model.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed submit: %v", err)
	}
	sub, err := f.exam.Submit("s1", true)
	if err != nil {
		t.Fatalf("confirmed submit: %v", err)
	}
	if sub.AutoSubmitted {
		t.Error("manual submit flagged as auto")
	}
	if len(sub.Answers) != 2 {
		t.Fatalf("answers = %d", len(sub.Answers))
	}
	if !sub.Answers[0].Correct {
		t.Error("normalized answer should match the key")
	}

	// Session is gone; the test reads as completed and cannot restart.
	if _, err := f.exam.Current("s1"); !errors.Is(err, model.ErrNoActiveSession) {
		t.Errorf("Current after submit: %v", err)
	}
	if _, err := f.exam.Start("s1", testID); !errors.Is(err, model.ErrSessionClosed) {
		t.Errorf("restart after submit: %v", err)
	}
	if assigned := f.exam.AssignedTests("s1"); !assigned[0].Completed {
		t.Error("test should read as completed")
	}

	// Grade the pending long answer and check the rollup.
	score, err := f.exam.Result("s1", testID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if score.Pending != 1 {
		t.Errorf("pending = %d, want 1", score.Pending)
	}
	if _, err := f.grading.Grade(sub.ID, dto.GradeRequest{QuestionIndex: 1, IsCorrect: true}); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	// The multiple-choice verdict is fixed at submit time and cannot be
	// overwritten by a review.
	if _, err := f.grading.Grade(sub.ID, dto.GradeRequest{QuestionIndex: 0, IsCorrect: false}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("grading a multiple-choice answer: %v", err)
	}
	score, _ = f.exam.Result("s1", testID)
	if score.MC != 100 || score.Long != 100 || score.Total != 100 || score.Pending != 0 {
		t.Errorf("score = %+v", score)
	}

	rows, err := f.tests.Results(testID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != "Completed" || rows[0].LongCorrect != 1 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSubmitAlwaysNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatal(err)
	}
	// Answer everything; confirmation is still required.
	if err := f.exam.SetAnswer("s1", dto.AnswerRequest{QuestionIndex: 0, Answer: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := f.exam.SetAnswer("s1", dto.AnswerRequest{QuestionIndex: 1, Answer: "because"}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.exam.Submit("s1", false); !errors.Is(err, model.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed submit with all answers in: %v", err)
	}
	// The refusal changes nothing: no submission, session still running.
	if _, ok := f.reg.SubmissionFor(testID, "s1"); ok {
		t.Fatal("unconfirmed submit must not persist a submission")
	}
	if _, err := f.exam.Current("s1"); err != nil {
		t.Fatalf("session should survive the refused submit: %v", err)
	}

	if _, err := f.exam.Submit("s1", true); err != nil {
		t.Fatalf("confirmed submit: %v", err)
	}
}

func TestStudentReviewAndOverview(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Submission("s1", testID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("review before submitting: %v", err)
	}

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatal(err)
	}
	if err := f.exam.SetAnswer("s1", dto.AnswerRequest{QuestionIndex: 0, Answer: "A"}); err != nil {
		t.Fatal(err)
	}
	sub, err := f.exam.Submit("s1", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.grading.Grade(sub.ID, dto.GradeRequest{QuestionIndex: 1, IsCorrect: true, Comment: "well argued"}); err != nil {
		t.Fatal(err)
	}

	// The student's review shows the verdict and comment.
	review, err := f.exam.Submission("s1", testID)
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if a := review.Answers[1]; !a.Reviewed || !a.Correct || a.Comment != "well argued" {
		t.Errorf("reviewed answer = %+v", a)
	}

	overview := f.exam.Overview("s1")
	if len(overview.History) != 1 {
		t.Fatalf("history = %+v", overview.History)
	}
	row := overview.History[0]
	if row.TestName != "Midterm" || row.MC != 100 || row.Long != 100 || row.Total != 100 {
		t.Errorf("row = %+v", row)
	}
	if overview.AverageMC != 100 || overview.AverageLong != 100 || overview.AverageTotal != 100 {
		t.Errorf("averages = %+v", overview)
	}

	// A student with no submissions gets an empty history, not a nil one.
	if other := f.exam.Overview("s2"); other.History == nil || len(other.History) != 0 {
		t.Errorf("empty overview = %+v", other)
	}
}

func TestAutoSubmitOnExpiry(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess, ok := f.mgr.Get("s1")
	if !ok {
		t.Fatal("no live session")
	}
	if err := sess.SetAnswer(0, "B"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	// Drive the full countdown by hand.
	for i := 0; i < 60; i++ {
		sess.Tick()
	}

	sub, ok := f.reg.SubmissionFor(testID, "s1")
	if !ok {
		t.Fatal("expiry should have auto-submitted")
	}
	if !sub.AutoSubmitted {
		t.Error("submission should be flagged auto-submitted")
	}
	if a := sub.AnswerAt(0); a == nil || a.Answer == nil || *a.Answer != "B" {
		t.Error("captured answer lost on auto submit")
	}
	if _, err := f.exam.Current("s1"); !errors.Is(err, model.ErrNoActiveSession) {
		t.Errorf("session should be dropped after auto submit: %v", err)
	}
}

func TestSupersededSessionNeverSubmits(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatal(err)
	}
	old, ok := f.mgr.Get("s1")
	if !ok {
		t.Fatal("no live session")
	}
	// Restarting the test replaces the session; the old one is closed.
	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatalf("restart: %v", err)
	}

	for i := 0; i < 60; i++ {
		old.Tick()
	}
	if _, ok := f.reg.SubmissionFor(testID, "s1"); ok {
		t.Fatal("superseded session must not auto-submit")
	}
	sess, err := f.exam.Current("s1")
	if err != nil {
		t.Fatalf("live session lost: %v", err)
	}
	if sess.Remaining != 60 {
		t.Errorf("live session remaining = %d, want a fresh countdown", sess.Remaining)
	}
}

func TestStartGuards(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.student.SaveStudent(dto.StudentRequest{ID: "s2", Name: "Ben"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.exam.Start("s2", testID); !errors.Is(err, model.ErrNotAssigned) {
		t.Errorf("unassigned start: %v", err)
	}
	if _, err := f.exam.Start("s1", "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown test: %v", err)
	}
}

func TestRenameStudentKeepsHistory(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.exam.Submit("s1", true); err != nil {
		t.Fatal(err)
	}

	if _, err := f.student.RenameStudent("s1", dto.RenameStudentRequest{NewID: "s1b", NewName: "Ann B"}); err != nil {
		t.Fatalf("RenameStudent: %v", err)
	}
	if _, ok := f.reg.SubmissionFor(testID, "s1b"); !ok {
		t.Error("submission should follow the renamed id")
	}
	test, _ := f.reg.TestByID(testID)
	if !test.IsAssigned("s1b") {
		t.Error("assignment should follow the renamed id")
	}
}

func TestClearSubmissionsAllowsRetake(t *testing.T) {
	f := newFixture(t)
	testID := f.seedExam(t)

	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.exam.Submit("s1", true); err != nil {
		t.Fatal(err)
	}
	if _, err := f.exam.Start("s1", testID); !errors.Is(err, model.ErrSessionClosed) {
		t.Fatal("retake should be blocked before the reset")
	}

	if _, err := f.student.ClearSubmissions("s1"); err != nil {
		t.Fatalf("ClearSubmissions: %v", err)
	}
	if _, err := f.exam.Start("s1", testID); err != nil {
		t.Errorf("retake after reset: %v", err)
	}
}

func TestForceSyncResetsCounter(t *testing.T) {
	f := newFixture(t)
	f.seedExam(t)

	f.reg.MarkUnsynced()
	if f.sync.Status().Unsynced != 1 {
		t.Fatal("counter should reflect the failed write")
	}
	if err := f.sync.ForceSync(context.Background()); err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	status := f.sync.Status()
	if status.Unsynced != 0 {
		t.Errorf("unsynced after sync = %d", status.Unsynced)
	}
	if status.Backend != "file" {
		t.Errorf("backend = %q", status.Backend)
	}
	// State reloaded from the snapshot file still holds the exam.
	if counts := f.sync.Counts(); counts.Tests != 1 || counts.Questions != 2 {
		t.Errorf("counts after sync = %+v", counts)
	}
}
