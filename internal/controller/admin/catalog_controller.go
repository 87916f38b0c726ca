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

// CatalogController serves the question bank and category endpoints.
type CatalogController struct {
	catalogSvc service.CatalogService
}

func NewCatalogController(catalogSvc service.CatalogService) *CatalogController {
	return &CatalogController{catalogSvc: catalogSvc}
}

// GetQuestions godoc
// @Summary (Admin) List catalog questions
// @Tags Admin - Catalog
// @Produce json
// @Param category query string false "Filter by category"
// @Param difficulty query string false "Filter by difficulty"
// @Param search query string false "Substring match on question text"
// @Success 200 {array} dto.QuestionResponse
// @Router /admin/questions [get]
func (ctrl *CatalogController) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.catalogSvc.Questions(
		c.Query("category"), c.Query("difficulty"), c.Query("search")))
}

// SaveQuestion godoc
// @Summary (Admin) Create or update a question
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param question body dto.QuestionRequest true "Question data; blank id creates a new question"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid question data"
// @Router /admin/questions [post]
func (ctrl *CatalogController) SaveQuestion(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind QuestionRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	resp, _, err := ctrl.catalogSvc.SaveQuestion(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Catalog
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.SavedResponse
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [delete]
func (ctrl *CatalogController) DeleteQuestion(c *gin.Context) {
	synced, err := ctrl.catalogSvc.DeleteQuestion(c.Param("id"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// GetCategories godoc
// @Summary (Admin) List categories
// @Tags Admin - Catalog
// @Produce json
// @Success 200 {array} string
// @Router /admin/categories [get]
func (ctrl *CatalogController) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.catalogSvc.Categories())
}

// AddCategory godoc
// @Summary (Admin) Add a category
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param category body dto.CategoryRequest true "Category name"
// @Success 200 {object} dto.SavedResponse
// @Failure 400 {object} dto.ErrorResponse "Empty name"
// @Router /admin/categories [post]
func (ctrl *CatalogController) AddCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	synced, err := ctrl.catalogSvc.AddCategory(req.Name)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// DeleteCategory godoc
// @Summary (Admin) Delete a category
// @Description Removes the category label from every question that carries it.
// @Tags Admin - Catalog
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} dto.SavedResponse
// @Router /admin/categories/{name} [delete]
func (ctrl *CatalogController) DeleteCategory(c *gin.Context) {
	synced, err := ctrl.catalogSvc.DeleteCategory(c.Param("name"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SavedResponse{Synced: synced})
}

// ExportQuestionsCSV godoc
// @Summary (Admin) Export questions as CSV
// @Tags Admin - Catalog
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /admin/questions/export [get]
func (ctrl *CatalogController) ExportQuestionsCSV(c *gin.Context) {
	raw, err := ctrl.catalogSvc.ExportQuestionsCSV()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
	c.Data(http.StatusOK, "text/csv", raw)
}

// ImportQuestionsCSV godoc
// @Summary (Admin) Import questions from CSV
// @Description Upserts by id. Malformed rows are skipped and counted.
// @Tags Admin - Catalog
// @Accept text/csv
// @Produce json
// @Success 200 {object} dto.ImportReportResponse
// @Failure 400 {object} dto.ErrorResponse "Unparseable CSV"
// @Router /admin/questions/import [post]
func (ctrl *CatalogController) ImportQuestionsCSV(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	report, err := ctrl.catalogSvc.ImportQuestionsCSV(raw)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportBackup godoc
// @Summary (Admin) Download a full JSON backup
// @Tags Admin - Backup
// @Produce json
// @Success 200 {string} string "Backup payload"
// @Router /admin/backup [get]
func (ctrl *CatalogController) ExportBackup(c *gin.Context) {
	raw, err := ctrl.catalogSvc.ExportBackup()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="backup.json"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// ImportBackup godoc
// @Summary (Admin) Restore from a JSON backup
// @Description Replaces all local state with the backup contents.
// @Tags Admin - Backup
// @Accept json
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Backup is not a JSON object"
// @Router /admin/backup [post]
func (ctrl *CatalogController) ImportBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := ctrl.catalogSvc.ImportBackup(raw); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "backup imported"})
}
