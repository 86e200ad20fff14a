package controller

import (
	"errors"

	"quiz_review_backend/internal/service"
	"quiz_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	ReviewService     *service.ReviewService
}

func NewSubmissionController(submissionService *service.SubmissionService, reviewService *service.ReviewService) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		ReviewService:     reviewService,
	}
}

// Ingest godoc
// @Summary Ingest a contest submission and auto-score it
// @Tags submissions
// @Accept json
// @Produce json
// @Param body body service.SubmissionReq true "raw answers"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/submissions [post]
func (c *SubmissionController) Ingest(ctx *gin.Context) {
	var req service.SubmissionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.SubmissionService.Ingest(req)
	if err != nil {
		if errors.Is(err, util.ErrContestNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"submissionId": sub.ID,
		"totalScore":   sub.TotalScore,
		"version":      sub.Version,
	})
}

// GetSubmission godoc
// @Summary Submission score breakdown
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	sub, err := c.SubmissionService.Repo.FindByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
