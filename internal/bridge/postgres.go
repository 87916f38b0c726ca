package bridge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ldtran/examdesk/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row types mirror the hosted backend's tables. Question snapshots inside a
// test live as JSON per row, keyed by (test_id, question_index), so a test's
// frozen questions survive catalog edits and deletes.

type categoryRow struct {
	Name string `gorm:"primaryKey"`
}

func (categoryRow) TableName() string { return "categories" }

type questionRow struct {
	ID            string `gorm:"primaryKey"`
	Type          string `gorm:"not null"`
	Text          string `gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string]
	CorrectAnswer string
	Difficulty    string
	Reference     string
	ImageURL      string
	Code          string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (questionRow) TableName() string { return "questions" }

type questionCategoryRow struct {
	QuestionID   string `gorm:"primaryKey"`
	CategoryName string `gorm:"primaryKey"`
}

func (questionCategoryRow) TableName() string { return "question_categories" }

type studentRow struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Password string
}

func (studentRow) TableName() string { return "students" }

type testRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Duration  int    `gorm:"not null"`
	CreatedAt time.Time
}

func (testRow) TableName() string { return "tests" }

type testQuestionRow struct {
	TestID        string                             `gorm:"primaryKey"`
	QuestionIndex int                                `gorm:"primaryKey;autoIncrement:false"`
	Snapshot      datatypes.JSONType[model.Question] `gorm:"not null"`
}

func (testQuestionRow) TableName() string { return "test_questions" }

type testAssignmentRow struct {
	TestID    string `gorm:"primaryKey"`
	StudentID string `gorm:"primaryKey"`
}

func (testAssignmentRow) TableName() string { return "test_assignments" }

type submissionRow struct {
	ID            string `gorm:"primaryKey"`
	TestID        string `gorm:"not null;uniqueIndex:idx_submission_pair"`
	StudentID     string `gorm:"not null;uniqueIndex:idx_submission_pair"`
	SubmittedAt   time.Time
	AutoSubmitted bool
}

func (submissionRow) TableName() string { return "submissions" }

type answerRow struct {
	SubmissionID  string `gorm:"primaryKey"`
	QuestionIndex int    `gorm:"primaryKey;autoIncrement:false"`
	QuestionText  string `gorm:"type:text"`
	Type          string `gorm:"not null"`
	Answer        *string
	Correct       bool
	Reviewed      bool
	Comment       string `gorm:"type:text"`
}

func (answerRow) TableName() string { return "submission_answers" }

// Postgres persists through GORM against the hosted relational backend.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates or updates the schema.
func (p *Postgres) Migrate() error {
	return p.db.AutoMigrate(
		&categoryRow{},
		&questionRow{},
		&questionCategoryRow{},
		&studentRow{},
		&testRow{},
		&testQuestionRow{},
		&testAssignmentRow{},
		&submissionRow{},
		&answerRow{},
	)
}

func (p *Postgres) LoadCategories(ctx context.Context) ([]string, error) {
	var rows []categoryRow
	if err := p.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out, nil
}

func (p *Postgres) LoadQuestions(ctx context.Context) ([]model.Question, error) {
	var rows []questionRow
	if err := p.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Question, len(rows))
	for i, r := range rows {
		out[i] = model.Question{
			ID:            r.ID,
			Type:          model.QuestionType(r.Type),
			Text:          r.Text,
			Options:       append([]string(nil), r.Options...),
			CorrectAnswer: r.CorrectAnswer,
			Categories:    []string{},
			Difficulty:    model.Difficulty(r.Difficulty),
			Reference:     r.Reference,
			ImageURL:      r.ImageURL,
			Code:          r.Code,
		}
	}
	// Categories ride on the question JSON in tests but are normalized here.
	var links []questionCategoryRow
	if err := p.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]string)
	for _, l := range links {
		byQuestion[l.QuestionID] = append(byQuestion[l.QuestionID], l.CategoryName)
	}
	for i := range out {
		if cats, ok := byQuestion[out[i].ID]; ok {
			out[i].Categories = cats
		}
	}
	return out, nil
}

func (p *Postgres) LoadStudents(ctx context.Context) ([]model.Student, error) {
	var rows []studentRow
	if err := p.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Student, len(rows))
	for i, r := range rows {
		out[i] = model.Student{ID: r.ID, Name: r.Name, Password: r.Password}
	}
	return out, nil
}

func (p *Postgres) LoadTests(ctx context.Context) ([]model.Test, error) {
	var rows []testRow
	if err := p.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	var qRows []testQuestionRow
	if err := p.db.WithContext(ctx).Order("test_id, question_index").Find(&qRows).Error; err != nil {
		return nil, err
	}
	var aRows []testAssignmentRow
	if err := p.db.WithContext(ctx).Find(&aRows).Error; err != nil {
		return nil, err
	}
	questions := make(map[string][]testQuestionRow)
	for _, q := range qRows {
		questions[q.TestID] = append(questions[q.TestID], q)
	}
	assignments := make(map[string][]string)
	for _, a := range aRows {
		assignments[a.TestID] = append(assignments[a.TestID], a.StudentID)
	}
	out := make([]model.Test, len(rows))
	for i, r := range rows {
		t := model.Test{
			ID:               r.ID,
			Name:             r.Name,
			Duration:         r.Duration,
			AssignedStudents: assignments[r.ID],
			CreatedAt:        r.CreatedAt,
		}
		if t.AssignedStudents == nil {
			t.AssignedStudents = []string{}
		}
		qs := questions[r.ID]
		sort.Slice(qs, func(a, b int) bool { return qs[a].QuestionIndex < qs[b].QuestionIndex })
		t.Questions = make([]model.Question, len(qs))
		for j, q := range qs {
			t.Questions[j] = q.Snapshot.Data()
		}
		out[i] = t
	}
	return out, nil
}

func (p *Postgres) LoadSubmissions(ctx context.Context) ([]model.Submission, error) {
	var rows []submissionRow
	if err := p.db.WithContext(ctx).Order("submitted_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	var aRows []answerRow
	if err := p.db.WithContext(ctx).Order("submission_id, question_index").Find(&aRows).Error; err != nil {
		return nil, err
	}
	answers := make(map[string][]model.Answer)
	for _, a := range aRows {
		answers[a.SubmissionID] = append(answers[a.SubmissionID], model.Answer{
			QuestionIndex: a.QuestionIndex,
			Question:      a.QuestionText,
			Type:          model.QuestionType(a.Type),
			Answer:        a.Answer,
			Correct:       a.Correct,
			Reviewed:      a.Reviewed,
			Comment:       a.Comment,
		})
	}
	out := make([]model.Submission, len(rows))
	for i, r := range rows {
		out[i] = model.Submission{
			ID:            r.ID,
			TestID:        r.TestID,
			StudentID:     r.StudentID,
			Answers:       answers[r.ID],
			SubmittedAt:   r.SubmittedAt,
			AutoSubmitted: r.AutoSubmitted,
		}
	}
	return out, nil
}

func (p *Postgres) UpsertQuestion(ctx context.Context, q model.Question) (string, error) {
	row := questionRow{
		ID:            q.ID,
		Type:          string(q.Type),
		Text:          q.Text,
		Options:       datatypes.NewJSONSlice(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		Difficulty:    string(q.Difficulty),
		Reference:     q.Reference,
		ImageURL:      q.ImageURL,
		Code:          q.Code,
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Delete(&questionCategoryRow{}, "question_id = ?", q.ID).Error; err != nil {
			return err
		}
		for _, c := range q.Categories {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&categoryRow{Name: c}).Error; err != nil {
				return err
			}
			if err := tx.Create(&questionCategoryRow{QuestionID: q.ID, CategoryName: c}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

func (p *Postgres) UpsertStudent(ctx context.Context, s model.Student) error {
	row := studentRow{ID: s.ID, Name: s.Name, Password: s.Password}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (p *Postgres) UpsertCategory(ctx context.Context, name string) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&categoryRow{Name: name}).Error
}

func (p *Postgres) CreateTest(ctx context.Context, t model.Test) (string, error) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&testRow{ID: t.ID, Name: t.Name, Duration: t.Duration, CreatedAt: t.CreatedAt}).Error; err != nil {
			return err
		}
		for i, q := range t.Questions {
			row := testQuestionRow{TestID: t.ID, QuestionIndex: i, Snapshot: datatypes.NewJSONType(q)}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (p *Postgres) DeleteQuestion(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&questionCategoryRow{}, "question_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&questionRow{}, "id = ?", id).Error
	})
}

func (p *Postgres) DeleteStudent(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionsTx(tx, "student_id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&testAssignmentRow{}, "student_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&studentRow{}, "id = ?", id).Error
	})
}

func (p *Postgres) DeleteCategory(ctx context.Context, name string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&questionCategoryRow{}, "category_name = ?", name).Error; err != nil {
			return err
		}
		return tx.Delete(&categoryRow{}, "name = ?", name).Error
	})
}

func (p *Postgres) DeleteTest(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionsTx(tx, "test_id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&testQuestionRow{}, "test_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&testAssignmentRow{}, "test_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&testRow{}, "id = ?", id).Error
	})
}

func (p *Postgres) SetTestAssignments(ctx context.Context, testID string, studentIDs []string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&testAssignmentRow{}, "test_id = ?", testID).Error; err != nil {
			return err
		}
		for _, sid := range studentIDs {
			if err := tx.Create(&testAssignmentRow{TestID: testID, StudentID: sid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) UpsertSubmission(ctx context.Context, sub model.Submission) (string, error) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Supersede any prior submission for the same (test, student) pair.
		var stale []submissionRow
		if err := tx.Where("test_id = ? AND student_id = ?", sub.TestID, sub.StudentID).Find(&stale).Error; err != nil {
			return err
		}
		for _, s := range stale {
			if err := tx.Delete(&answerRow{}, "submission_id = ?", s.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&submissionRow{}, "id = ?", s.ID).Error; err != nil {
				return err
			}
		}
		row := submissionRow{
			ID:            sub.ID,
			TestID:        sub.TestID,
			StudentID:     sub.StudentID,
			SubmittedAt:   sub.SubmittedAt,
			AutoSubmitted: sub.AutoSubmitted,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, a := range sub.Answers {
			ar := answerRow{
				SubmissionID:  sub.ID,
				QuestionIndex: a.QuestionIndex,
				QuestionText:  a.Question,
				Type:          string(a.Type),
				Answer:        a.Answer,
				Correct:       a.Correct,
				Reviewed:      a.Reviewed,
				Comment:       a.Comment,
			}
			if err := tx.Create(&ar).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (p *Postgres) GradeAnswer(ctx context.Context, submissionID string, questionIndex int, isCorrect bool, comment string) error {
	// Only long answers are reviewable; multiple-choice rows never match.
	res := p.db.WithContext(ctx).Model(&answerRow{}).
		Where("submission_id = ? AND question_index = ? AND type = ?",
			submissionID, questionIndex, string(model.QuestionLongAnswer)).
		Updates(map[string]interface{}{"reviewed": true, "correct": isCorrect, "comment": comment})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("answer %d of submission %q: %w", questionIndex, submissionID, model.ErrNotFound)
	}
	return nil
}

func (p *Postgres) DeleteSubmissionsByStudent(ctx context.Context, studentID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSubmissionsTx(tx, "student_id = ?", studentID)
	})
}

func (p *Postgres) RenameStudent(ctx context.Context, oldID, newID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&studentRow{}).Where("id = ?", oldID).Update("id", newID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("student %q: %w", oldID, model.ErrNotFound)
		}
		if err := tx.Model(&submissionRow{}).Where("student_id = ?", oldID).Update("student_id", newID).Error; err != nil {
			return err
		}
		return tx.Model(&testAssignmentRow{}).Where("student_id = ?", oldID).Update("student_id", newID).Error
	})
}

func deleteSubmissionsTx(tx *gorm.DB, query string, arg interface{}) error {
	var rows []submissionRow
	if err := tx.Where(query, arg).Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		if err := tx.Delete(&answerRow{}, "submission_id = ?", r.ID).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&submissionRow{}, query, arg).Error
}
