package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	apperrors "github.com/vendsight/vendsight-backend/internal/errors"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// Export downloads the period's sales records. format=csv (default) or
// format=xlsx
// GET /api/v1/export?format=csv&period_start=...&period_end=...
func (ctrl *ExportController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	periodStart := c.Query("period_start")
	periodEnd := c.Query("period_end")
	if !validPeriodParam(periodStart) || !validPeriodParam(periodEnd) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Period bounds must be YYYY-MM-DD")
		return
	}

	var file *service.ExportFile
	var err error
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		file, err = ctrl.exportService.ExportCSV(userID, periodStart, periodEnd)
	case "xlsx":
		file, err = ctrl.exportService.ExportXLSX(userID, periodStart, periodEnd)
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unsupported export format")
		return
	}
	if err != nil {
		log.Error("Export failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
