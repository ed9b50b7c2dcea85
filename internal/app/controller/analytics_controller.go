package controller

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	apperrors "github.com/vendsight/vendsight-backend/internal/errors"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validPeriodParam(value string) bool {
	return value == "" || isoDateRe.MatchString(value)
}

// Get computes the dashboard payload for the requested period. Both
// bounds are optional; omitting them aggregates everything
// GET /api/v1/analytics?period_start=2025-10-01&period_end=2025-12-31
func (ctrl *AnalyticsController) Get(c *gin.Context) {
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

	data, err := ctrl.analyticsService.GetAnalytics(userID, periodStart, periodEnd)
	if err != nil {
		log.Error("Failed to compute analytics", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "analytics")
		return
	}

	c.JSON(http.StatusOK, data)
}
