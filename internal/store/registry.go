package store

import (
	"fmt"
	"sync"

	"github.com/ldtran/examdesk/internal/model"
)

// Registry is the in-memory working state of the application: the five
// collections the UI operates on. All mutations go through it first
// (optimistic-write policy); bridge persistence happens after, and a failed
// bridge write bumps the unsynced counter instead of rolling back.
type Registry struct {
	mu          sync.RWMutex
	categories  []string
	questions   []model.Question
	students    []model.Student
	tests       []model.Test
	submissions []model.Submission
	unsynced    int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Snapshot returns a deep copy of every collection.
func (r *Registry) Snapshot() model.Backup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b := model.Backup{
		Categories:  append([]string(nil), r.categories...),
		Students:    append([]model.Student(nil), r.students...),
		Questions:   make([]model.Question, len(r.questions)),
		Tests:       make([]model.Test, len(r.tests)),
		Submissions: make([]model.Submission, len(r.submissions)),
	}
	for i, q := range r.questions {
		b.Questions[i] = q.Clone()
	}
	for i, t := range r.tests {
		b.Tests[i] = t.Clone()
	}
	for i, s := range r.submissions {
		b.Submissions[i] = s.Clone()
	}
	return b
}

// ReplaceAll swaps in a wholesale snapshot (remote sync, backup import).
func (r *Registry) ReplaceAll(b model.Backup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append([]string(nil), b.Categories...)
	r.students = append([]model.Student(nil), b.Students...)
	r.questions = append([]model.Question(nil), b.Questions...)
	r.tests = append([]model.Test(nil), b.Tests...)
	r.submissions = append([]model.Submission(nil), b.Submissions...)
}

// Empty reports whether the registry holds no questions and no students.
func (r *Registry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.questions) == 0 && len(r.students) == 0
}

// MarkUnsynced records a failed bridge write. ClearUnsynced resets the
// counter after a successful full sync.
func (r *Registry) MarkUnsynced() {
	r.mu.Lock()
	r.unsynced++
	r.mu.Unlock()
}

func (r *Registry) ClearUnsynced() {
	r.mu.Lock()
	r.unsynced = 0
	r.mu.Unlock()
}

// UnsyncedCount is the number of local mutations whose remote persist failed
// since the last successful full sync.
func (r *Registry) UnsyncedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unsynced
}

// --- Categories ---

func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.categories...)
}

// AddCategory registers a category name; adding an existing name is a no-op.
func (r *Registry) AddCategory(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCategoryLocked(name)
}

func (r *Registry) addCategoryLocked(name string) {
	for _, c := range r.categories {
		if c == name {
			return
		}
	}
	r.categories = append(r.categories, name)
}

// DeleteCategory removes the category and strips it from every question.
func (r *Registry) DeleteCategory(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.categories[:0]
	for _, c := range r.categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	r.categories = kept
	for i := range r.questions {
		cats := r.questions[i].Categories[:0]
		for _, c := range r.questions[i].Categories {
			if c != name {
				cats = append(cats, c)
			}
		}
		r.questions[i].Categories = cats
	}
}

// --- Questions ---

func (r *Registry) Questions() []model.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Question, len(r.questions))
	for i, q := range r.questions {
		out[i] = q.Clone()
	}
	return out
}

func (r *Registry) QuestionByID(id string) (model.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.questions {
		if q.ID == id {
			return q.Clone(), true
		}
	}
	return model.Question{}, false
}

// UpsertQuestion inserts or replaces a question by id and registers any new
// categories the question carries.
func (r *Registry) UpsertQuestion(q model.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range q.Categories {
		r.addCategoryLocked(c)
	}
	for i := range r.questions {
		if r.questions[i].ID == q.ID {
			r.questions[i] = q.Clone()
			return
		}
	}
	r.questions = append(r.questions, q.Clone())
}

// DeleteQuestion removes a catalog question. Tests keep their frozen
// snapshots; only the catalog entry goes away.
func (r *Registry) DeleteQuestion(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.questions {
		if r.questions[i].ID == id {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			return true
		}
	}
	return false
}

// --- Students ---

func (r *Registry) Students() []model.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Student(nil), r.students...)
}

func (r *Registry) StudentByID(id string) (model.Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.students {
		if s.ID == id {
			return s, true
		}
	}
	return model.Student{}, false
}

func (r *Registry) UpsertStudent(s model.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.students {
		if r.students[i].ID == s.ID {
			r.students[i] = s
			return
		}
	}
	r.students = append(r.students, s)
}

// RenameStudent rewrites a student id everywhere it is referenced: the
// student record, every assignment set and every submission. It is a
// cascading rename, not delete+recreate.
func (r *Registry) RenameStudent(oldID, newID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var target *model.Student
	for i := range r.students {
		if r.students[i].ID == newID {
			return fmt.Errorf("student %q: %w", newID, model.ErrDuplicateID)
		}
		if r.students[i].ID == oldID {
			target = &r.students[i]
		}
	}
	if target == nil {
		return fmt.Errorf("student %q: %w", oldID, model.ErrNotFound)
	}
	target.ID = newID
	for i := range r.submissions {
		if r.submissions[i].StudentID == oldID {
			r.submissions[i].StudentID = newID
		}
	}
	for i := range r.tests {
		for j, sid := range r.tests[i].AssignedStudents {
			if sid == oldID {
				r.tests[i].AssignedStudents[j] = newID
			}
		}
	}
	return nil
}

// DeleteStudent removes the student, their submissions and every assignment
// referencing them.
func (r *Registry) DeleteStudent(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	kept := r.students[:0]
	for _, s := range r.students {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	r.students = kept
	if !found {
		return false
	}
	r.deleteSubmissionsLocked(func(s model.Submission) bool { return s.StudentID == id })
	for i := range r.tests {
		assigned := r.tests[i].AssignedStudents[:0]
		for _, sid := range r.tests[i].AssignedStudents {
			if sid != id {
				assigned = append(assigned, sid)
			}
		}
		r.tests[i].AssignedStudents = assigned
	}
	return true
}

// DeleteSubmissionsByStudent drops all of one student's submissions (the
// "reset student" action) and reports how many were removed.
func (r *Registry) DeleteSubmissionsByStudent(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteSubmissionsLocked(func(s model.Submission) bool { return s.StudentID == id })
}

func (r *Registry) deleteSubmissionsLocked(drop func(model.Submission) bool) int {
	n := 0
	kept := r.submissions[:0]
	for _, s := range r.submissions {
		if drop(s) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.submissions = kept
	return n
}

// --- Tests & assignments ---

func (r *Registry) Tests() []model.Test {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Test, len(r.tests))
	for i, t := range r.tests {
		out[i] = t.Clone()
	}
	return out
}

func (r *Registry) TestByID(id string) (model.Test, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tests {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Test{}, false
}

func (r *Registry) AddTest(t model.Test) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests = append(r.tests, t.Clone())
}

// DeleteTest removes the test together with its submissions and assignments.
func (r *Registry) DeleteTest(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	kept := r.tests[:0]
	for _, t := range r.tests {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	r.tests = kept
	if found {
		r.deleteSubmissionsLocked(func(s model.Submission) bool { return s.TestID == id })
	}
	return found
}

// SetAssignments replaces a test's entire assignment set.
func (r *Registry) SetAssignments(testID string, studentIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tests {
		if r.tests[i].ID == testID {
			r.tests[i].AssignedStudents = append([]string(nil), studentIDs...)
			return nil
		}
	}
	return fmt.Errorf("test %q: %w", testID, model.ErrNotFound)
}

// --- Submissions ---

func (r *Registry) Submissions() []model.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Submission, len(r.submissions))
	for i, s := range r.submissions {
		out[i] = s.Clone()
	}
	return out
}

func (r *Registry) SubmissionByID(id string) (model.Submission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.submissions {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return model.Submission{}, false
}

// SubmissionFor returns the single submission for a (test, student) pair.
func (r *Registry) SubmissionFor(testID, studentID string) (model.Submission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.submissions {
		if s.TestID == testID && s.StudentID == studentID {
			return s.Clone(), true
		}
	}
	return model.Submission{}, false
}

// PutSubmission stores a submission, superseding any prior submission for the
// same (testId, studentId) pair. Filter-then-insert keeps the at-most-one
// invariant under the single-writer model.
func (r *Registry) PutSubmission(sub model.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteSubmissionsLocked(func(s model.Submission) bool {
		return s.TestID == sub.TestID && s.StudentID == sub.StudentID
	})
	r.submissions = append(r.submissions, sub.Clone())
}

// GradeAnswer sets the review verdict on a long answer. Idempotent: grading
// again overwrites the previous verdict. Multiple-choice answers are refused;
// their correctness is fixed at submit time.
func (r *Registry) GradeAnswer(submissionID string, questionIndex int, isCorrect bool, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.submissions {
		if r.submissions[i].ID != submissionID {
			continue
		}
		a := r.submissions[i].AnswerAt(questionIndex)
		if a == nil {
			return fmt.Errorf("answer %d of submission %q: %w", questionIndex, submissionID, model.ErrNotFound)
		}
		if a.Type != model.QuestionLongAnswer {
			return fmt.Errorf("answer %d of submission %q is not a long answer: %w", questionIndex, submissionID, model.ErrValidation)
		}
		a.Reviewed = true
		a.Correct = isCorrect
		a.Comment = comment
		return nil
	}
	return fmt.Errorf("submission %q: %w", submissionID, model.ErrNotFound)
}

// PendingReviewCount is the number of submissions with at least one
// unreviewed long answer. Recomputed on every call, never cached.
func (r *Registry) PendingReviewCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.submissions {
		if s.HasPendingReview() {
			n++
		}
	}
	return n
}

// Counts returns the dashboard totals.
func (r *Registry) Counts() (tests, students, questions, pendingReviews int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.submissions {
		if s.HasPendingReview() {
			pendingReviews++
		}
	}
	return len(r.tests), len(r.students), len(r.questions), pendingReviews
}
