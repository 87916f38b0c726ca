package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/ldtran/examdesk/internal/port"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

// StudentService manages the student roster. Renames cascade through
// assignments and submissions so history survives an id change.
type StudentService interface {
	Students() []dto.StudentResponse
	SaveStudent(req dto.StudentRequest) (bool, error)
	DeleteStudent(id string) (bool, error)
	RenameStudent(oldID string, req dto.RenameStudentRequest) (bool, error)
	ClearSubmissions(studentID string) (bool, error)
	Authenticate(id, password string) (*model.Student, error)
	ExportStudentsCSV() ([]byte, error)
	ImportStudentsCSV(data []byte) (*dto.ImportReportResponse, error)
}

type studentService struct {
	reg *store.Registry
	br  bridge.Bridge
}

func NewStudentService(reg *store.Registry, br bridge.Bridge) StudentService {
	return &studentService{reg: reg, br: br}
}

func (s *studentService) Students() []dto.StudentResponse {
	out := []dto.StudentResponse{}
	for _, st := range s.reg.Students() {
		var resp dto.StudentResponse
		copier.Copy(&resp, &st)
		out = append(out, resp)
	}
	return out
}

func (s *studentService) SaveStudent(req dto.StudentRequest) (bool, error) {
	st := model.Student{
		ID:       strings.TrimSpace(req.ID),
		Name:     strings.TrimSpace(req.Name),
		Password: req.Password,
	}
	if st.ID == "" || st.Name == "" {
		return false, fmt.Errorf("%w: student id and name are required", model.ErrValidation)
	}
	if st.Password == "" {
		if existing, ok := s.reg.StudentByID(st.ID); ok {
			st.Password = existing.Password
		} else {
			st.Password = port.DefaultStudentPassword
		}
	}
	s.reg.UpsertStudent(st)
	synced := persist(s.reg, "upsert_student", func(ctx context.Context) error {
		return s.br.UpsertStudent(ctx, st)
	})
	return synced, nil
}

func (s *studentService) DeleteStudent(id string) (bool, error) {
	if !s.reg.DeleteStudent(id) {
		return false, fmt.Errorf("%w: student %s", model.ErrNotFound, id)
	}
	synced := persist(s.reg, "delete_student", func(ctx context.Context) error {
		return s.br.DeleteStudent(ctx, id)
	})
	return synced, nil
}

func (s *studentService) RenameStudent(oldID string, req dto.RenameStudentRequest) (bool, error) {
	newID := strings.TrimSpace(req.NewID)
	newName := strings.TrimSpace(req.NewName)
	if newID == "" || newName == "" {
		return false, fmt.Errorf("%w: new id and name are required", model.ErrValidation)
	}

	synced := true
	if newID != oldID {
		if err := s.reg.RenameStudent(oldID, newID); err != nil {
			return false, err
		}
		synced = persist(s.reg, "rename_student", func(ctx context.Context) error {
			return s.br.RenameStudent(ctx, oldID, newID)
		}) && synced
	}

	st, ok := s.reg.StudentByID(newID)
	if !ok {
		return false, fmt.Errorf("%w: student %s", model.ErrNotFound, newID)
	}
	st.Name = newName
	s.reg.UpsertStudent(st)
	synced = persist(s.reg, "upsert_student", func(ctx context.Context) error {
		return s.br.UpsertStudent(ctx, st)
	}) && synced

	log.Info().Str("from", oldID).Str("to", newID).Msg("Student renamed")
	return synced, nil
}

// ClearSubmissions wipes a student's submission history so they can retake
// their assigned tests.
func (s *studentService) ClearSubmissions(studentID string) (bool, error) {
	if _, ok := s.reg.StudentByID(studentID); !ok {
		return false, fmt.Errorf("%w: student %s", model.ErrNotFound, studentID)
	}
	s.reg.DeleteSubmissionsByStudent(studentID)
	synced := persist(s.reg, "delete_submissions_by_student", func(ctx context.Context) error {
		return s.br.DeleteSubmissionsByStudent(ctx, studentID)
	})
	return synced, nil
}

func (s *studentService) Authenticate(id, password string) (*model.Student, error) {
	st, ok := s.reg.StudentByID(id)
	if !ok || st.Password != password {
		return nil, fmt.Errorf("%w: bad student credentials", model.ErrValidation)
	}
	return &st, nil
}

func (s *studentService) ExportStudentsCSV() ([]byte, error) {
	return port.ExportStudentsCSV(s.reg.Students())
}

func (s *studentService) ImportStudentsCSV(data []byte) (*dto.ImportReportResponse, error) {
	res, err := port.ImportStudents(data, s.reg.Students())
	if err != nil {
		return nil, err
	}
	for _, st := range res.Students {
		st := st
		s.reg.UpsertStudent(st)
		persist(s.reg, "upsert_student", func(ctx context.Context) error {
			return s.br.UpsertStudent(ctx, st)
		})
	}
	log.Info().Int("added", res.Added).Int("updated", res.Updated).Int("skipped", res.Skipped).
		Msg("Students CSV imported")
	return &dto.ImportReportResponse{Added: res.Added, Updated: res.Updated, Skipped: res.Skipped}, nil
}
