package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/controller"
	"github.com/ldtran/examdesk/internal/service"
)

// SyncController exposes backend connectivity state and the manual sync
// trigger.
type SyncController struct {
	syncSvc service.SyncService
}

func NewSyncController(syncSvc service.SyncService) *SyncController {
	return &SyncController{syncSvc: syncSvc}
}

// GetStatus godoc
// @Summary (Admin) Sync status
// @Description Reports the active backend and how many local writes have not landed remotely.
// @Tags Admin - Sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Router /admin/sync/status [get]
func (ctrl *SyncController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.syncSvc.Status())
}

// ForceSync godoc
// @Summary (Admin) Reload all state from the backend
// @Description Discards local-only changes and resets the unsynced counter.
// @Tags Admin - Sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 500 {object} dto.ErrorResponse "Backend unreachable"
// @Router /admin/sync [post]
func (ctrl *SyncController) ForceSync(c *gin.Context) {
	if err := ctrl.syncSvc.ForceSync(c.Request.Context()); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.syncSvc.Status())
}

// GetCounts godoc
// @Summary (Admin) Dashboard counters
// @Tags Admin - Sync
// @Produce json
// @Success 200 {object} dto.CountsResponse
// @Router /admin/counts [get]
func (ctrl *SyncController) GetCounts(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.syncSvc.Counts())
}
