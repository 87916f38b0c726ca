package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/grading"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/session"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// SessionService drives a student through an exam sitting: start, answer,
// countdown, submit. A session that runs out of time is auto-submitted with
// whatever answers were captured.
type SessionService interface {
	AssignedTests(studentID string) []dto.AssignedTestResponse
	Start(studentID, testID string) (*dto.SessionResponse, error)
	Current(studentID string) (*dto.SessionResponse, error)
	SetAnswer(studentID string, req dto.AnswerRequest) error
	Submit(studentID string, confirmed bool) (*dto.SubmissionResponse, error)
	Abandon(studentID string)
	Result(studentID, testID string) (*dto.ScoreResponse, error)
	Submission(studentID, testID string) (*dto.SubmissionResponse, error)
	Overview(studentID string) *dto.OverviewResponse
}

type sessionService struct {
	reg *store.Registry
	br  bridge.Bridge
	mgr *session.Manager
}

func NewSessionService(reg *store.Registry, br bridge.Bridge, mgr *session.Manager) SessionService {
	return &sessionService{reg: reg, br: br, mgr: mgr}
}

func (s *sessionService) AssignedTests(studentID string) []dto.AssignedTestResponse {
	out := []dto.AssignedTestResponse{}
	for _, t := range s.reg.Tests() {
		if !t.IsAssigned(studentID) {
			continue
		}
		_, done := s.reg.SubmissionFor(t.ID, studentID)
		out = append(out, dto.AssignedTestResponse{
			ID:            t.ID,
			Name:          t.Name,
			Duration:      t.Duration,
			QuestionCount: len(t.Questions),
			Completed:     done,
		})
	}
	return out
}

func (s *sessionService) Start(studentID, testID string) (*dto.SessionResponse, error) {
	t, ok := s.reg.TestByID(testID)
	if !ok {
		return nil, fmt.Errorf("%w: test %s", model.ErrNotFound, testID)
	}
	if !t.IsAssigned(studentID) {
		return nil, fmt.Errorf("%w: test %s is not assigned to %s", model.ErrNotAssigned, testID, studentID)
	}
	if _, done := s.reg.SubmissionFor(testID, studentID); done {
		return nil, fmt.Errorf("%w: test %s already submitted", model.ErrSessionClosed, testID)
	}

	sess := s.mgr.Start(t, studentID, s.autoSubmit)
	log.Info().Str("studentID", studentID).Str("testID", testID).Msg("Exam session started")
	return s.toSessionResponse(sess), nil
}

func (s *sessionService) Current(studentID string) (*dto.SessionResponse, error) {
	sess, ok := s.mgr.Get(studentID)
	if !ok {
		return nil, model.ErrNoActiveSession
	}
	return s.toSessionResponse(sess), nil
}

func (s *sessionService) SetAnswer(studentID string, req dto.AnswerRequest) error {
	sess, ok := s.mgr.Get(studentID)
	if !ok {
		return model.ErrNoActiveSession
	}
	return sess.SetAnswer(req.QuestionIndex, req.Answer)
}

func (s *sessionService) Submit(studentID string, confirmed bool) (*dto.SubmissionResponse, error) {
	sess, ok := s.mgr.Get(studentID)
	if !ok {
		return nil, model.ErrNoActiveSession
	}
	if !confirmed {
		return nil, fmt.Errorf("%w: submit without confirmation", model.ErrConfirmationRequired)
	}

	sub, synced, ok := s.finishSession(sess, false)
	if !ok {
		return nil, fmt.Errorf("%w: session not in a submittable state", model.ErrSessionClosed)
	}
	s.mgr.DropSession(sess)
	resp := toSubmissionResponse(sub, synced)
	return &resp, nil
}

// Abandon tears the session down without submitting. Used on logout; the
// student can start the test over later.
func (s *sessionService) Abandon(studentID string) {
	s.mgr.Drop(studentID)
}

func (s *sessionService) Result(studentID, testID string) (*dto.ScoreResponse, error) {
	sub, ok := s.reg.SubmissionFor(testID, studentID)
	if !ok {
		return nil, fmt.Errorf("%w: no submission for test %s", model.ErrNotFound, testID)
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

// Submission returns the caller's own submission for a test, including any
// review verdicts and comments that have landed since.
func (s *sessionService) Submission(studentID, testID string) (*dto.SubmissionResponse, error) {
	sub, ok := s.reg.SubmissionFor(testID, studentID)
	if !ok {
		return nil, fmt.Errorf("%w: no submission for test %s", model.ErrNotFound, testID)
	}
	resp := toSubmissionResponse(sub, true)
	return &resp, nil
}

func (s *sessionService) Overview(studentID string) *dto.OverviewResponse {
	names := make(map[string]string)
	for _, t := range s.reg.Tests() {
		names[t.ID] = t.Name
	}
	resp := &dto.OverviewResponse{History: []dto.OverviewRowResponse{}}
	var sumMC, sumLong, sumTotal, withLong int
	for _, sub := range s.reg.Submissions() {
		if sub.StudentID != studentID {
			continue
		}
		sc := grading.Score(sub)
		resp.History = append(resp.History, dto.OverviewRowResponse{
			TestID:        sub.TestID,
			TestName:      names[sub.TestID],
			MC:            sc.MC,
			Long:          sc.Long,
			Total:         sc.Total,
			HasLong:       sc.HasLong,
			Pending:       grading.PendingAnswers(sub),
			AutoSubmitted: sub.AutoSubmitted,
			SubmittedAt:   sub.SubmittedAt,
		})
		sumMC += sc.MC
		sumTotal += sc.Total
		if sc.HasLong {
			sumLong += sc.Long
			withLong++
		}
	}
	if n := len(resp.History); n > 0 {
		resp.AverageMC = roundAverage(sumMC, n)
		resp.AverageTotal = roundAverage(sumTotal, n)
	}
	if withLong > 0 {
		resp.AverageLong = roundAverage(sumLong, withLong)
	}
	return resp
}

func roundAverage(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// autoSubmit fires when a session's clock reaches zero. A session that lost
// the race to a manual submit or a superseding start is left alone.
func (s *sessionService) autoSubmit(sess *session.Session) {
	if _, _, ok := s.finishSession(sess, true); !ok {
		return
	}
	log.Info().Str("studentID", sess.StudentID()).Str("testID", sess.TestID()).
		Msg("Session expired, auto-submitting")
	s.mgr.DropSession(sess)
}

// finishSession closes the session and persists the submission. The TryFinish
// gate makes it safe to call from both the submit handler and the expiry
// callback: only the caller that wins the transition builds a submission.
func (s *sessionService) finishSession(sess *session.Session, auto bool) (model.Submission, bool, bool) {
	if !sess.TryFinish() {
		return model.Submission{}, false, false
	}
	sub := model.Submission{
		ID:            uuid.NewString(),
		TestID:        sess.TestID(),
		StudentID:     sess.StudentID(),
		Answers:       grading.BuildAnswers(sess.Questions(), sess.Captured()),
		SubmittedAt:   time.Now(),
		AutoSubmitted: auto,
	}
	s.reg.PutSubmission(sub)
	synced := persist(s.reg, "upsert_submission", func(ctx context.Context) error {
		_, err := s.br.UpsertSubmission(ctx, sub)
		return err
	})
	return sub, synced, true
}

func (s *sessionService) toSessionResponse(sess *session.Session) *dto.SessionResponse {
	questions := sess.Questions()
	view := make([]dto.StudentQuestionResponse, 0, len(questions))
	for _, q := range questions {
		view = append(view, dto.StudentQuestionResponse{
			Type:     string(q.Type),
			Text:     q.Text,
			Options:  q.Options,
			ImageURL: q.ImageURL,
			Code:     q.Code,
		})
	}
	return &dto.SessionResponse{
		TestID:        sess.TestID(),
		State:         string(sess.State()),
		Remaining:     sess.Remaining(),
		Questions:     view,
		Answers:       sess.Captured(),
		QuestionCount: len(questions),
	}
}

func toSubmissionResponse(sub model.Submission, synced bool) dto.SubmissionResponse {
	answers := make([]dto.AnswerResponse, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		answers = append(answers, dto.AnswerResponse{
			QuestionIndex: a.QuestionIndex,
			Question:      a.Question,
			Type:          string(a.Type),
			Answer:        a.Answer,
			Correct:       a.Correct,
			Reviewed:      a.Reviewed,
			Comment:       a.Comment,
		})
	}
	return dto.SubmissionResponse{
		ID:            sub.ID,
		TestID:        sub.TestID,
		StudentID:     sub.StudentID,
		Answers:       answers,
		SubmittedAt:   sub.SubmittedAt,
		AutoSubmitted: sub.AutoSubmitted,
		Synced:        synced,
	}
}
