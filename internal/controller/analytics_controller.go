package controller

import (
	"quiz_review_backend/internal/service"
	"quiz_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// GetAnalytics godoc
// @Summary Scoring analytics rollup
// @Description Counts per scoring method plus the mean keyword match
// @Description fraction over all keyword-scored answers. Computed on read.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "course filter"
// @Param contestId query int false "contest filter"
// @Success 200 {object} util.Response
// @Router /api/teacher/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	report, err := c.AnalyticsService.GetAnalytics(
		ctx.Request.Context(),
		util.MustParseUint(ctx.Query("courseId")),
		util.MustParseUint(ctx.Query("contestId")),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
