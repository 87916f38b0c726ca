package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/store"
)

// Filecache is the no-backend persistence mode: a single JSON snapshot of all
// five collections on disk, rewritten after every mutation. It reuses the
// registry's mutation logic so cascade rules behave identically to the
// in-memory state.
type Filecache struct {
	mu   sync.Mutex
	path string
	mem  *store.Registry
}

// NewFilecache opens (or initializes) the snapshot file at path.
func NewFilecache(path string) (*Filecache, error) {
	f := &Filecache{path: path, mem: store.NewRegistry()}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	var b model.Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse cache file %s: %w", path, err)
	}
	f.mem.ReplaceAll(b)
	return f, nil
}

func (f *Filecache) save() error {
	raw, err := json.MarshalIndent(f.mem.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", f.path, err)
	}
	return nil
}

func (f *Filecache) LoadCategories(ctx context.Context) ([]string, error) {
	return f.mem.Categories(), nil
}

func (f *Filecache) LoadQuestions(ctx context.Context) ([]model.Question, error) {
	return f.mem.Questions(), nil
}

func (f *Filecache) LoadStudents(ctx context.Context) ([]model.Student, error) {
	return f.mem.Students(), nil
}

func (f *Filecache) LoadTests(ctx context.Context) ([]model.Test, error) {
	return f.mem.Tests(), nil
}

func (f *Filecache) LoadSubmissions(ctx context.Context) ([]model.Submission, error) {
	return f.mem.Submissions(), nil
}

func (f *Filecache) UpsertQuestion(ctx context.Context, q model.Question) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.UpsertQuestion(q)
	return q.ID, f.save()
}

func (f *Filecache) UpsertStudent(ctx context.Context, s model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.UpsertStudent(s)
	return f.save()
}

func (f *Filecache) UpsertCategory(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.AddCategory(name)
	return f.save()
}

func (f *Filecache) CreateTest(ctx context.Context, t model.Test) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.AddTest(t)
	return t.ID, f.save()
}

func (f *Filecache) DeleteQuestion(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.DeleteQuestion(id)
	return f.save()
}

func (f *Filecache) DeleteStudent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.DeleteStudent(id)
	return f.save()
}

func (f *Filecache) DeleteCategory(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.DeleteCategory(name)
	return f.save()
}

func (f *Filecache) DeleteTest(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.DeleteTest(id)
	return f.save()
}

func (f *Filecache) SetTestAssignments(ctx context.Context, testID string, studentIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.SetAssignments(testID, studentIDs); err != nil {
		return err
	}
	return f.save()
}

func (f *Filecache) UpsertSubmission(ctx context.Context, sub model.Submission) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.PutSubmission(sub)
	return sub.ID, f.save()
}

func (f *Filecache) GradeAnswer(ctx context.Context, submissionID string, questionIndex int, isCorrect bool, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.GradeAnswer(submissionID, questionIndex, isCorrect, comment); err != nil {
		return err
	}
	return f.save()
}

func (f *Filecache) DeleteSubmissionsByStudent(ctx context.Context, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.DeleteSubmissionsByStudent(studentID)
	return f.save()
}

func (f *Filecache) RenameStudent(ctx context.Context, oldID, newID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.RenameStudent(oldID, newID); err != nil {
		return err
	}
	return f.save()
}
