package admin

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/controller"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/service"
	"github.com/rs/zerolog/log"
)

// StudentController serves the roster endpoints.
type StudentController struct {
	studentSvc service.StudentService
}

func NewStudentController(studentSvc service.StudentService) *StudentController {
	return &StudentController{studentSvc: studentSvc}
}

// GetStudents godoc
// @Summary (Admin) List students
// @Tags Admin - Students
// @Produce json
// @Success 200 {array} dto.StudentResponse
// @Router /admin/students [get]
func (ctrl *StudentController) GetStudents(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.studentSvc.Students())
}

// SaveStudent godoc
// @Summary (Admin) Create or update a student
// @Tags Admin - Students
// @Accept json
// @Produce json
// @Param student body dto.StudentRequest true "Student data"
// @Success 200 {object} dto.SavedResponse
// @Failure 400 {object} dto.ErrorResponse "Missing id or name"
// @Router /admin/students [post]
func (ctrl *StudentController) SaveStudent(c *gin.Context) {
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind StudentRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	synced, err := ctrl.studentSvc.SaveStudent(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// DeleteStudent godoc
// @Summary (Admin) Delete a student
// @Description Also removes the student's submissions and test assignments.
// @Tags Admin - Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [delete]
func (ctrl *StudentController) DeleteStudent(c *gin.Context) {
	synced, err := ctrl.studentSvc.DeleteStudent(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// RenameStudent godoc
// @Summary (Admin) Change a student's id and name
// @Description The id change cascades through assignments and submissions.
// @Tags Admin - Students
// @Accept json
// @Produce json
// @Param id path string true "Current student ID"
// @Param rename body dto.RenameStudentRequest true "New id and name"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "New id already taken"
// @Router /admin/students/{id}/rename [put]
func (ctrl *StudentController) RenameStudent(c *gin.Context) {
	var req dto.RenameStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	synced, err := ctrl.studentSvc.RenameStudent(c.Param("id"), req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// ClearSubmissions godoc
// @Summary (Admin) Clear a student's submission history
// @Description Lets the student retake their assigned tests.
// @Tags Admin - Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id}/submissions [delete]
func (ctrl *StudentController) ClearSubmissions(c *gin.Context) {
	synced, err := ctrl.studentSvc.ClearSubmissions(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// ExportStudentsCSV godoc
// @Summary (Admin) Export students as CSV
// @Tags Admin - Students
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /admin/students/export [get]
func (ctrl *StudentController) ExportStudentsCSV(c *gin.Context) {
	raw, err := ctrl.studentSvc.ExportStudentsCSV()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", raw)
}

// ImportStudentsCSV godoc
// @Summary (Admin) Import students from CSV
// @Description Requires id and name columns; missing passwords default.
// @Tags Admin - Students
// @Accept text/csv
// @Produce json
// @Success 200 {object} dto.ImportReportResponse
// @Failure 400 {object} dto.ErrorResponse "Missing required columns"
// @Router /admin/students/import [post]
func (ctrl *StudentController) ImportStudentsCSV(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	report, err := ctrl.studentSvc.ImportStudentsCSV(raw)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
