// Package bridge defines the narrow persistence contract the core depends
// on, plus its two implementations: a Postgres store and a local JSON
// snapshot cache. All operations may fail; callers treat failure as "local
// state stands, remote state unknown" and reconcile on the next full sync.
package bridge

import (
	"context"

	"github.com/ldtran/examdesk/internal/model"
)

// Bridge is the request/response contract between the core and whatever
// persists it. Load* operations return full collection snapshots; mutations
// mirror the core's commands one to one.
type Bridge interface {
	LoadCategories(ctx context.Context) ([]string, error)
	LoadQuestions(ctx context.Context) ([]model.Question, error)
	LoadStudents(ctx context.Context) ([]model.Student, error)
	LoadTests(ctx context.Context) ([]model.Test, error)
	LoadSubmissions(ctx context.Context) ([]model.Submission, error)

	UpsertQuestion(ctx context.Context, q model.Question) (string, error)
	UpsertStudent(ctx context.Context, s model.Student) error
	UpsertCategory(ctx context.Context, name string) error
	CreateTest(ctx context.Context, t model.Test) (string, error)

	DeleteQuestion(ctx context.Context, id string) error
	DeleteStudent(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, name string) error
	DeleteTest(ctx context.Context, id string) error

	SetTestAssignments(ctx context.Context, testID string, studentIDs []string) error
	UpsertSubmission(ctx context.Context, sub model.Submission) (string, error)
	GradeAnswer(ctx context.Context, submissionID string, questionIndex int, isCorrect bool, comment string) error
	DeleteSubmissionsByStudent(ctx context.Context, studentID string) error
	RenameStudent(ctx context.Context, oldID, newID string) error
}
