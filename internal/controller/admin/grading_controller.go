package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/controller"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/service"
)

// GradingController serves the submission review endpoints.
type GradingController struct {
	gradingSvc service.GradingService
}

func NewGradingController(gradingSvc service.GradingService) *GradingController {
	return &GradingController{gradingSvc: gradingSvc}
}

// GetSubmissions godoc
// @Summary (Admin) List submissions
// @Tags Admin - Grading
// @Produce json
// @Param testId query string false "Filter by test"
// @Success 200 {array} dto.SubmissionResponse
// @Router /admin/submissions [get]
func (ctrl *GradingController) GetSubmissions(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.gradingSvc.Submissions(c.Query("testId")))
}

// GetSubmission godoc
// @Summary (Admin) Get one submission with its answers
// @Tags Admin - Grading
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /admin/submissions/{id} [get]
func (ctrl *GradingController) GetSubmission(c *gin.Context) {
	resp, err := ctrl.gradingSvc.Submission(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPendingReviews godoc
// @Summary (Admin) Submissions with unreviewed long answers
// @Tags Admin - Grading
// @Produce json
// @Success 200 {array} dto.SubmissionResponse
// @Router /admin/reviews [get]
func (ctrl *GradingController) GetPendingReviews(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.gradingSvc.PendingReviews())
}

// GradeAnswer godoc
// @Summary (Admin) Mark a long answer correct or incorrect
// @Description Re-grading an already reviewed answer overwrites the verdict.
// @Tags Admin - Grading
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param grade body dto.GradeRequest true "Question index, verdict, optional comment"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Submission or answer not found"
// @Router /admin/submissions/{id}/grade [put]
func (ctrl *GradingController) GradeAnswer(c *gin.Context) {
	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	synced, err := ctrl.gradingSvc.Grade(c.Param("id"), req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// GetScore godoc
// @Summary (Admin) Score breakdown for a submission
// @Tags Admin - Grading
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} dto.ScoreResponse
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /admin/submissions/{id}/score [get]
func (ctrl *GradingController) GetScore(c *gin.Context) {
	resp, err := ctrl.gradingSvc.Score(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
