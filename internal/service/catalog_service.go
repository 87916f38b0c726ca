package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/port"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// CatalogService manages the question bank and its category labels.
type CatalogService interface {
	Questions(category, difficulty, search string) []dto.QuestionResponse
	SaveQuestion(req dto.QuestionRequest) (*dto.QuestionResponse, bool, error)
	DeleteQuestion(id string) (bool, error)
	Categories() []string
	AddCategory(name string) (bool, error)
	DeleteCategory(name string) (bool, error)
	ExportQuestionsCSV() ([]byte, error)
	ImportQuestionsCSV(data []byte) (*dto.ImportReportResponse, error)
	ExportBackup() ([]byte, error)
	ImportBackup(raw []byte) error
}

type catalogService struct {
	reg *store.Registry
	br  bridge.Bridge
}

func NewCatalogService(reg *store.Registry, br bridge.Bridge) CatalogService {
	return &catalogService{reg: reg, br: br}
}

func (s *catalogService) Questions(category, difficulty, search string) []dto.QuestionResponse {
	search = strings.ToLower(strings.TrimSpace(search))
	out := []dto.QuestionResponse{}
	for _, q := range s.reg.Questions() {
		if category != "" && !containsString(q.Categories, category) {
			continue
		}
		if difficulty != "" && string(q.Difficulty) != difficulty {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(q.Text), search) {
			continue
		}
		var resp dto.QuestionResponse
		copier.Copy(&resp, &q)
		out = append(out, resp)
	}
	return out
}

func (s *catalogService) SaveQuestion(req dto.QuestionRequest) (*dto.QuestionResponse, bool, error) {
	q := model.Question{
		ID:            strings.TrimSpace(req.ID),
		Type:          model.QuestionType(req.Type),
		Text:          strings.TrimSpace(req.Text),
		Options:       req.Options,
		CorrectAnswer: strings.ToUpper(strings.TrimSpace(req.CorrectAnswer)),
		Categories:    req.Categories,
		Difficulty:    model.Difficulty(req.Difficulty),
		Reference:     req.Reference,
		ImageURL:      req.ImageURL,
		Code:          req.Code,
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if !q.Type.Valid() {
		return nil, false, fmt.Errorf("%w: unknown question type %q", model.ErrValidation, req.Type)
	}
	if q.Type == model.QuestionMultipleChoice {
		if len(q.Options) != 4 {
			return nil, false, fmt.Errorf("%w: multiple-choice questions need exactly 4 options", model.ErrValidation)
		}
		if len(q.CorrectAnswer) != 1 || !strings.Contains(model.OptionLetters, q.CorrectAnswer) {
			return nil, false, fmt.Errorf("%w: correct answer must be one of A-D", model.ErrValidation)
		}
	} else {
		q.Options = nil
		q.CorrectAnswer = ""
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	s.reg.UpsertQuestion(q)
	synced := persist(s.reg, "upsert_question", func(ctx context.Context) error {
		_, err := s.br.UpsertQuestion(ctx, q)
		return err
	})
	for _, c := range q.Categories {
		persist(s.reg, "upsert_category", func(ctx context.Context) error {
			return s.br.UpsertCategory(ctx, c)
		})
	}

	var resp dto.QuestionResponse
	copier.Copy(&resp, &q)
	return &resp, synced, nil
}

func (s *catalogService) DeleteQuestion(id string) (bool, error) {
	if !s.reg.DeleteQuestion(id) {
		return false, fmt.Errorf("%w: question %s", model.ErrNotFound, id)
	}
	synced := persist(s.reg, "delete_question", func(ctx context.Context) error {
		return s.br.DeleteQuestion(ctx, id)
	})
	return synced, nil
}

func (s *catalogService) Categories() []string {
	return s.reg.Categories()
}

func (s *catalogService) AddCategory(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: category name must not be empty", model.ErrValidation)
	}
	s.reg.AddCategory(name)
	synced := persist(s.reg, "upsert_category", func(ctx context.Context) error {
		return s.br.UpsertCategory(ctx, name)
	})
	return synced, nil
}

func (s *catalogService) DeleteCategory(name string) (bool, error) {
	s.reg.DeleteCategory(name)
	synced := persist(s.reg, "delete_category", func(ctx context.Context) error {
		return s.br.DeleteCategory(ctx, name)
	})
	return synced, nil
}

func (s *catalogService) ExportQuestionsCSV() ([]byte, error) {
	return port.ExportQuestionsCSV(s.reg.Questions())
}

func (s *catalogService) ImportQuestionsCSV(data []byte) (*dto.ImportReportResponse, error) {
	res, err := port.ImportQuestions(data, s.reg.Questions())
	if err != nil {
		return nil, err
	}
	for _, q := range res.Questions {
		q := q
		s.reg.UpsertQuestion(q)
		persist(s.reg, "upsert_question", func(ctx context.Context) error {
			_, err := s.br.UpsertQuestion(ctx, q)
			return err
		})
	}
	for _, c := range res.NewCategories {
		c := c
		s.reg.AddCategory(c)
		persist(s.reg, "upsert_category", func(ctx context.Context) error {
			return s.br.UpsertCategory(ctx, c)
		})
	}
	log.Info().Int("added", res.Added).Int("updated", res.Updated).Int("skipped", res.Skipped).
		Msg("Questions CSV imported")
	return &dto.ImportReportResponse{Added: res.Added, Updated: res.Updated, Skipped: res.Skipped}, nil
}

func (s *catalogService) ExportBackup() ([]byte, error) {
	return port.ExportBackup(s.reg.Snapshot())
}

// ImportBackup replaces the whole local state with the backup contents and
// pushes every record to the backend.
func (s *catalogService) ImportBackup(raw []byte) error {
	b, err := port.ParseBackup(raw)
	if err != nil {
		return err
	}
	s.reg.ReplaceAll(b)
	for _, c := range b.Categories {
		c := c
		persist(s.reg, "upsert_category", func(ctx context.Context) error {
			return s.br.UpsertCategory(ctx, c)
		})
	}
	for _, q := range b.Questions {
		q := q
		persist(s.reg, "upsert_question", func(ctx context.Context) error {
			_, err := s.br.UpsertQuestion(ctx, q)
			return err
		})
	}
	for _, st := range b.Students {
		st := st
		persist(s.reg, "upsert_student", func(ctx context.Context) error {
			return s.br.UpsertStudent(ctx, st)
		})
	}
	for _, t := range b.Tests {
		t := t
		persist(s.reg, "create_test", func(ctx context.Context) error {
			_, err := s.br.CreateTest(ctx, t)
			return err
		})
	}
	for _, sub := range b.Submissions {
		sub := sub
		persist(s.reg, "upsert_submission", func(ctx context.Context) error {
			_, err := s.br.UpsertSubmission(ctx, sub)
			return err
		})
	}
	log.Info().Int("tests", len(b.Tests)).Int("questions", len(b.Questions)).
		Int("students", len(b.Students)).Int("submissions", len(b.Submissions)).
		Msg("Backup imported")
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
