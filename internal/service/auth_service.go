package service

import (
	"fmt"

	"github.com/ldtran/examdesk/internal/auth"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/model"
	"github.com/rs/zerolog/log"
)

// AdminUsername is the single administrator account name.
const AdminUsername = "admin"

// AuthService logs in the administrator and students and issues bearer
// tokens for the rest of the API.
type AuthService interface {
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	students      StudentService
	tokens        *auth.Manager
	adminPassword string
}

func NewAuthService(students StudentService, tokens *auth.Manager, adminPassword string) AuthService {
	return &authService{students: students, tokens: tokens, adminPassword: adminPassword}
}

func (s *authService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username == AdminUsername {
		if req.Password != s.adminPassword {
			return nil, fmt.Errorf("%w: bad admin credentials", model.ErrValidation)
		}
		token, err := s.tokens.Generate(AdminUsername, auth.RoleAdmin)
		if err != nil {
			return nil, err
		}
		return &dto.LoginResponse{Token: token, Role: auth.RoleAdmin, ID: AdminUsername}, nil
	}

	st, err := s.students.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(st.ID, auth.RoleStudent)
	if err != nil {
		return nil, err
	}
	log.Info().Str("studentID", st.ID).Msg("Student logged in")
	return &dto.LoginResponse{Token: token, Role: auth.RoleStudent, ID: st.ID, Name: st.Name}, nil
}
