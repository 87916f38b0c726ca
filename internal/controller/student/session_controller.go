// Package student carries the exam-taking endpoints. Every handler resolves
// the acting student from the bearer token, never from the request body.
package student

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/controller"
	"github.com/ldtran/examdesk/internal/controller/middleware"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/service"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	sessionSvc service.SessionService
}

func NewSessionController(sessionSvc service.SessionService) *SessionController {
	return &SessionController{sessionSvc: sessionSvc}
}

func studentID(c *gin.Context) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
		return "", false
	}
	return claims.UserID, true
}

// GetAssignedTests godoc
// @Summary (Student) Tests assigned to the caller
// @Tags Student
// @Produce json
// @Success 200 {array} dto.AssignedTestResponse
// @Router /student/tests [get]
func (ctrl *SessionController) GetAssignedTests(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.sessionSvc.AssignedTests(id))
}

// StartTest godoc
// @Summary (Student) Start an assigned test
// @Description Begins the countdown. Starting another test abandons the previous session.
// @Tags Student
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 403 {object} dto.ErrorResponse "Test not assigned to caller"
// @Failure 409 {object} dto.ErrorResponse "Test already submitted"
// @Router /student/tests/{id}/start [post]
func (ctrl *SessionController) StartTest(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.sessionSvc.Start(id, c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary (Student) Current session state
// @Tags Student
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Router /student/session [get]
func (ctrl *SessionController) GetSession(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.sessionSvc.Current(id)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetAnswer godoc
// @Summary (Student) Record an answer in the active session
// @Tags Student
// @Accept json
// @Produce json
// @Param answer body dto.AnswerRequest true "Question index and answer value"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Bad index or option letter"
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Router /student/session/answer [put]
func (ctrl *SessionController) SetAnswer(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := ctrl.sessionSvc.SetAnswer(id, req); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "answer recorded"})
}

// Submit godoc
// @Summary (Student) Submit the active session
// @Description Requires confirmed=true; an unconfirmed request gets 409 and leaves the session running.
// @Tags Student
// @Accept json
// @Produce json
// @Param submit body dto.SubmitRequest true "Confirmation flag"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Failure 409 {object} dto.ErrorResponse "Submission not confirmed"
// @Router /student/session/submit [post]
func (ctrl *SessionController) Submit(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	resp, err := ctrl.sessionSvc.Submit(id, req.Confirmed)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Info().Str("studentID", id).Str("testID", resp.TestID).Msg("Test submitted")
	c.JSON(http.StatusOK, resp)
}

// Abandon godoc
// @Summary (Student) Abandon the active session
// @Description Stops the countdown without submitting. The test can be started again later.
// @Tags Student
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /student/session [delete]
func (ctrl *SessionController) Abandon(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	ctrl.sessionSvc.Abandon(id)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "session abandoned"})
}

// GetResult godoc
// @Summary (Student) Score for a completed test
// @Tags Student
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.ScoreResponse
// @Failure 404 {object} dto.ErrorResponse "No submission for this test"
// @Router /student/tests/{id}/result [get]
func (ctrl *SessionController) GetResult(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.sessionSvc.Result(id, c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSubmission godoc
// @Summary (Student) Review the caller's own submission for a test
// @Description Full answer sheet with any review verdicts and comments.
// @Tags Student
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse "No submission for this test"
// @Router /student/tests/{id}/submission [get]
func (ctrl *SessionController) GetSubmission(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.sessionSvc.Submission(id, c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOverview godoc
// @Summary (Student) Score history across completed tests
// @Tags Student
// @Produce json
// @Success 200 {object} dto.OverviewResponse
// @Router /student/overview [get]
func (ctrl *SessionController) GetOverview(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.sessionSvc.Overview(id))
}
