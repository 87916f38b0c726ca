package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/controller"
	"github.com/ldtran/examdesk/internal/dto"
	"github.com/ldtran/examdesk/internal/service"
	"github.com/rs/zerolog/log"
)

// TestController serves the test ledger endpoints.
type TestController struct {
	testSvc service.TestService
}

func NewTestController(testSvc service.TestService) *TestController {
	return &TestController{testSvc: testSvc}
}

// GetTests godoc
// @Summary (Admin) List tests
// @Tags Admin - Tests
// @Produce json
// @Success 200 {array} dto.TestResponse
// @Router /admin/tests [get]
func (ctrl *TestController) GetTests(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.testSvc.Tests())
}

// GetTest godoc
// @Summary (Admin) Get a test with its frozen questions
// @Tags Admin - Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.TestResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [get]
func (ctrl *TestController) GetTest(c *gin.Context) {
	resp, err := ctrl.testSvc.Test(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateTest godoc
// @Summary (Admin) Create a test from selected questions
// @Description Each selected question is copied into the test, so later catalog edits do not affect it.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test body dto.CreateTestRequest true "Test name, duration in minutes, question ids"
// @Success 201 {object} dto.TestResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Unknown question id"
// @Router /admin/tests [post]
func (ctrl *TestController) CreateTest(c *gin.Context) {
	var req dto.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind CreateTestRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	resp, _, err := ctrl.testSvc.CreateTest(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteTest godoc
// @Summary (Admin) Delete a test
// @Description Also removes all submissions recorded for the test.
// @Tags Admin - Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [delete]
func (ctrl *TestController) DeleteTest(c *gin.Context) {
	synced, err := ctrl.testSvc.DeleteTest(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// AssignTest godoc
// @Summary (Admin) Replace a test's assignment list
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param assignment body dto.AssignRequest true "Student ids to assign"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Test or student not found"
// @Router /admin/tests/{id}/assign [put]
func (ctrl *TestController) AssignTest(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	synced, err := ctrl.testSvc.Assign(c.Param("id"), req.StudentIDs)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// GetResults godoc
// @Summary (Admin) Per-student results for a test
// @Description One row per assigned student, including those who have not started.
// @Tags Admin - Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {array} dto.ResultRowResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id}/results [get]
func (ctrl *TestController) GetResults(c *gin.Context) {
	rows, err := ctrl.testSvc.Results(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportResultsCSV godoc
// @Summary (Admin) Export a test's results as CSV
// @Tags Admin - Tests
// @Produce text/csv
// @Param id path string true "Test ID"
// @Success 200 {string} string "CSV payload"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id}/results/export [get]
func (ctrl *TestController) ExportResultsCSV(c *gin.Context) {
	raw, err := ctrl.testSvc.ExportResultsCSV(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="results.csv"`)
	c.Data(http.StatusOK, "text/csv", raw)
}
