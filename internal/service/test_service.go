package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/grading"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/port"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// TestService manages the test ledger: creation from catalog snapshots,
// assignment, and the per-test results board.
type TestService interface {
	Tests() []dto.TestResponse
	Test(id string) (*dto.TestResponse, error)
	CreateTest(req dto.CreateTestRequest) (*dto.TestResponse, bool, error)
	DeleteTest(id string) (bool, error)
	Assign(testID string, studentIDs []string) (bool, error)
	Results(testID string) ([]dto.ResultRowResponse, error)
	ExportResultsCSV(testID string) ([]byte, error)
}

type testService struct {
	reg *store.Registry
	br  bridge.Bridge
}

func NewTestService(reg *store.Registry, br bridge.Bridge) TestService {
	return &testService{reg: reg, br: br}
}

func toTestResponse(t model.Test, withQuestions bool) dto.TestResponse {
	resp := dto.TestResponse{
		ID:               t.ID,
		Name:             t.Name,
		Duration:         t.Duration,
		QuestionCount:    len(t.Questions),
		MCCount:          t.CountByType(model.QuestionMultipleChoice),
		LongCount:        t.CountByType(model.QuestionLongAnswer),
		AssignedStudents: t.AssignedStudents,
		CreatedAt:        t.CreatedAt,
	}
	if resp.AssignedStudents == nil {
		resp.AssignedStudents = []string{}
	}
	if withQuestions {
		for _, q := range t.Questions {
			var qr dto.QuestionResponse
			copier.Copy(&qr, &q)
			resp.Questions = append(resp.Questions, qr)
		}
	}
	return resp
}

func (s *testService) Tests() []dto.TestResponse {
	out := []dto.TestResponse{}
	for _, t := range s.reg.Tests() {
		out = append(out, toTestResponse(t, false))
	}
	return out
}

func (s *testService) Test(id string) (*dto.TestResponse, error) {
	t, ok := s.reg.TestByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: test %s", model.ErrNotFound, id)
	}
	resp := toTestResponse(t, true)
	return &resp, nil
}

// CreateTest freezes a copy of each selected question into the new test.
func (s *testService) CreateTest(req dto.CreateTestRequest) (*dto.TestResponse, bool, error) {
	questions := make([]model.Question, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		q, ok := s.reg.QuestionByID(id)
		if !ok {
			return nil, false, fmt.Errorf("%w: question %s", model.ErrNotFound, id)
		}
		questions = append(questions, q.Clone())
	}

	t := model.Test{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Duration:         req.Duration,
		Questions:        questions,
		AssignedStudents: []string{},
		CreatedAt:        time.Now(),
	}
	s.reg.AddTest(t)
	synced := persist(s.reg, "create_test", func(ctx context.Context) error {
		_, err := s.br.CreateTest(ctx, t)
		return err
	})

	log.Info().Str("testID", t.ID).Int("questions", len(questions)).Msg("Test created")
	resp := toTestResponse(t, true)
	return &resp, synced, nil
}

func (s *testService) DeleteTest(id string) (bool, error) {
	if !s.reg.DeleteTest(id) {
		return false, fmt.Errorf("%w: test %s", model.ErrNotFound, id)
	}
	synced := persist(s.reg, "delete_test", func(ctx context.Context) error {
		return s.br.DeleteTest(ctx, id)
	})
	return synced, nil
}

// Assign replaces the test's assignment set with the given student ids.
func (s *testService) Assign(testID string, studentIDs []string) (bool, error) {
	for _, id := range studentIDs {
		if _, ok := s.reg.StudentByID(id); !ok {
			return false, fmt.Errorf("%w: student %s", model.ErrNotFound, id)
		}
	}
	if err := s.reg.SetAssignments(testID, studentIDs); err != nil {
		return false, err
	}
	synced := persist(s.reg, "set_test_assignments", func(ctx context.Context) error {
		return s.br.SetTestAssignments(ctx, testID, studentIDs)
	})
	return synced, nil
}

func (s *testService) resultRows(testID string) ([]grading.ResultRow, error) {
	t, ok := s.reg.TestByID(testID)
	if !ok {
		return nil, fmt.Errorf("%w: test %s", model.ErrNotFound, testID)
	}
	return grading.Results(t, s.reg.Students(), s.reg.Submissions()), nil
}

func (s *testService) Results(testID string) ([]dto.ResultRowResponse, error) {
	rows, err := s.resultRows(testID)
	if err != nil {
		return nil, err
	}
	out := []dto.ResultRowResponse{}
	for _, r := range rows {
		out = append(out, dto.ResultRowResponse{
			StudentID:   r.StudentID,
			StudentName: r.StudentName,
			Status:      string(r.Status),
			MCCorrect:   r.MCCorrect,
			MCTotal:     r.MCTotal,
			LongCorrect: r.LongCorrect,
			LongTotal:   r.LongTotal,
			LongPending: r.LongPending,
		})
	}
	return out, nil
}

func (s *testService) ExportResultsCSV(testID string) ([]byte, error) {
	rows, err := s.resultRows(testID)
	if err != nil {
		return nil, err
	}
	return port.ExportResultsCSV(rows)
}
