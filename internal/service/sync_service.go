package service

import (
	"context"
	"fmt"

	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// SyncService owns the lifecycle of the local mirror: initial load, demo
// seeding of an empty backend, and forced reloads after connectivity gaps.
type SyncService interface {
	Bootstrap(ctx context.Context) error
	ForceSync(ctx context.Context) error
	Status() dto.SyncStatusResponse
	Counts() dto.CountsResponse
}

type syncService struct {
	reg     *store.Registry
	br      bridge.Bridge
	backend string
}

func NewSyncService(reg *store.Registry, br bridge.Bridge, backend string) SyncService {
	return &syncService{reg: reg, br: br, backend: backend}
}

func (s *syncService) load(ctx context.Context) error {
	categories, err := s.br.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	questions, err := s.br.LoadQuestions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	students, err := s.br.LoadStudents(ctx)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	tests, err := s.br.LoadTests(ctx)
	if err != nil {
		return fmt.Errorf("load tests: %w", err)
	}
	submissions, err := s.br.LoadSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}
	s.reg.ReplaceAll(model.Backup{
		Categories:  categories,
		Questions:   questions,
		Students:    students,
		Tests:       tests,
		Submissions: submissions,
	})
	return nil
}

// Bootstrap fills the registry from the backend, seeding demo data when the
// backend is empty.
func (s *syncService) Bootstrap(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}
	if s.reg.Empty() {
		log.Info().Msg("Backend empty, seeding demo data")
		s.seed(ctx)
	}
	tests, students, questions, _ := s.reg.Counts()
	log.Info().Int("tests", tests).Int("students", students).Int("questions", questions).
		Str("backend", s.backend).Msg("State loaded")
	return nil
}

// ForceSync reloads everything from the backend, discarding local-only
// changes, and resets the unsynced counter.
func (s *syncService) ForceSync(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}
	s.reg.ClearUnsynced()
	log.Info().Msg("Forced full sync completed")
	return nil
}

func (s *syncService) Status() dto.SyncStatusResponse {
	return dto.SyncStatusResponse{Backend: s.backend, Unsynced: s.reg.UnsyncedCount()}
}

func (s *syncService) Counts() dto.CountsResponse {
	snap := s.reg.Snapshot()
	return dto.CountsResponse{
		Questions:   len(snap.Questions),
		Tests:       len(snap.Tests),
		Students:    len(snap.Students),
		Submissions: len(snap.Submissions),
		Categories:  len(snap.Categories),
	}
}

func (s *syncService) seed(ctx context.Context) {
	categories := []string{"Database", "Networking", "Programming", "Spreadsheet", "Computer Organization"}
	questions := []model.Question{
		{
			ID:   "1",
			Type: model.QuestionMultipleChoice,
			Text: "What does SQL stand for?",
			Options: []string{
				"Structured Query Language", "Simple Query Language",
				"Standard Query Language", "System Query Language",
			},
			CorrectAnswer: "A",
			Categories:    []string{"Database"},
			Difficulty:    model.DifficultyEasy,
			Reference:     "DB101",
		},
		{
			ID:            "2",
			Type:          model.QuestionMultipleChoice,
			Text:          "Which protocol is used for secure web communication?",
			Options:       []string{"HTTP", "HTTPS", "FTP", "SMTP"},
			CorrectAnswer: "B",
			Categories:    []string{"Networking"},
			Difficulty:    model.DifficultyEasy,
			Reference:     "NET100",
		},
		{
			ID:         "3",
			Type:       model.QuestionLongAnswer,
			Text:       "Explain the concept of normalization in databases and its benefits.",
			Categories: []string{"Database"},
			Difficulty: model.DifficultyDifficult,
			Reference:  "DBA201",
			Code:       "-- Example:\n-- 1NF -> No repeating groups\n-- 2NF -> No partial dependency\n-- 3NF -> No transitive dependency",
		},
		{
			ID:            "4",
			Type:          model.QuestionMultipleChoice,
			Text:          "What is the time complexity of binary search?",
			Options:       []string{"O(n)", "O(log n)", "O(n²)", "O(1)"},
			CorrectAnswer: "B",
			Categories:    []string{"Programming"},
			Difficulty:    model.DifficultyEasy,
			Reference:     "ALG100",
		},
		{
			ID:         "5",
			Type:       model.QuestionLongAnswer,
			Text:       "Describe the OSI model and explain each layer briefly.",
			Categories: []string{"Networking"},
			Difficulty: model.DifficultyMedium,
			Reference:  "OSI-REF",
		},
	}
	students := []model.Student{
		{ID: "student1", Name: "John Smith", Password: "pass123"},
		{ID: "student2", Name: "Jane Doe", Password: "pass123"},
		{ID: "student3", Name: "Mike Johnson", Password: "pass123"},
	}

	for _, c := range categories {
		c := c
		s.reg.AddCategory(c)
		persist(s.reg, "upsert_category", func(pctx context.Context) error {
			return s.br.UpsertCategory(pctx, c)
		})
	}
	for _, q := range questions {
		q := q
		s.reg.UpsertQuestion(q)
		persist(s.reg, "upsert_question", func(pctx context.Context) error {
			_, err := s.br.UpsertQuestion(pctx, q)
			return err
		})
	}
	for _, st := range students {
		st := st
		s.reg.UpsertStudent(st)
		persist(s.reg, "upsert_student", func(pctx context.Context) error {
			return s.br.UpsertStudent(pctx, st)
		})
	}
}
