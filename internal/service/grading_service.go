package service

import (
	"context"
	"fmt"

	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/grading"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// GradingService is the admin review desk: list submissions, inspect one,
// and mark long answers correct or incorrect with an optional comment.
type GradingService interface {
	Submissions(testID string) []dto.SubmissionResponse
	Submission(id string) (*dto.SubmissionResponse, error)
	PendingReviews() []dto.SubmissionResponse
	Grade(submissionID string, req dto.GradeRequest) (bool, error)
	Score(submissionID string) (*dto.ScoreResponse, error)
}

type gradingService struct {
	reg *store.Registry
	br  bridge.Bridge
}

func NewGradingService(reg *store.Registry, br bridge.Bridge) GradingService {
	return &gradingService{reg: reg, br: br}
}

func (s *gradingService) Submissions(testID string) []dto.SubmissionResponse {
	out := []dto.SubmissionResponse{}
	for _, sub := range s.reg.Submissions() {
		if testID != "" && sub.TestID != testID {
			continue
		}
		out = append(out, toSubmissionResponse(sub, true))
	}
	return out
}

func (s *gradingService) Submission(id string) (*dto.SubmissionResponse, error) {
	sub, ok := s.reg.SubmissionByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: submission %s", model.ErrNotFound, id)
	}
	resp := toSubmissionResponse(sub, true)
	return &resp, nil
}

func (s *gradingService) PendingReviews() []dto.SubmissionResponse {
	out := []dto.SubmissionResponse{}
	for _, sub := range s.reg.Submissions() {
		if sub.HasPendingReview() {
			out = append(out, toSubmissionResponse(sub, true))
		}
	}
	return out
}

func (s *gradingService) Grade(submissionID string, req dto.GradeRequest) (bool, error) {
	if err := s.reg.GradeAnswer(submissionID, req.QuestionIndex, req.IsCorrect, req.Comment); err != nil {
		return false, err
	}
	synced := persist(s.reg, "grade_answer", func(ctx context.Context) error {
		return s.br.GradeAnswer(ctx, submissionID, req.QuestionIndex, req.IsCorrect, req.Comment)
	})
	log.Info().Str("submissionID", submissionID).Int("questionIndex", req.QuestionIndex).
		Bool("correct", req.IsCorrect).Msg("Answer graded")
	return synced, nil
}

func (s *gradingService) Score(submissionID string) (*dto.ScoreResponse, error) {
	sub, ok := s.reg.SubmissionByID(submissionID)
	if !ok {
		return nil, fmt.Errorf("%w: submission %s", model.ErrNotFound, submissionID)
	}
	sc := grading.Score(sub)
	return &dto.ScoreResponse{
		MC:      sc.MC,
		Long:    sc.Long,
		Total:   sc.Total,
		HasLong: sc.HasLong,
		Pending: grading.PendingAnswers(sub),
	}, nil
}
