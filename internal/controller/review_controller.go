package controller

import (
	"errors"

	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/repository"
	"quiz_review_backend/internal/service"
	"quiz_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService  *service.ReviewService
	RescoreService *service.RescoreService
}

func NewReviewController(reviewService *service.ReviewService, rescoreService *service.RescoreService) *ReviewController {
	return &ReviewController{
		ReviewService:  reviewService,
		RescoreService: rescoreService,
	}
}

func queueFilter(ctx *gin.Context) repository.ReviewQueueFilter {
	return repository.ReviewQueueFilter{
		ContestID: util.MustParseUint(ctx.Query("contestId")),
		CourseID:  util.MustParseUint(ctx.Query("courseId")),
		Method:    model.ScoringMethod(ctx.Query("method")),
		Search:    ctx.Query("search"),
	}
}

// ListQueue godoc
// @Summary Review queue, highest priority first
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param contestId query int false "contest filter"
// @Param courseId query int false "course filter"
// @Param method query string false "scoring method filter"
// @Param search query string false "student name/email search"
// @Success 200 {object} util.Response
// @Router /api/teacher/review-queue [get]
func (c *ReviewController) ListQueue(ctx *gin.Context) {
	entries, err := c.ReviewService.ListPending(ctx.Request.Context(), queueFilter(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// QueueSummary godoc
// @Summary Review queue dashboard counters
// @Tags review
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/review-queue/summary [get]
func (c *ReviewController) QueueSummary(ctx *gin.Context) {
	summary, err := c.ReviewService.Summary(ctx.Request.Context(), queueFilter(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// GetForReview godoc
// @Summary Submission detail for reviewing, with keyword match breakdown
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/submissions/{id} [get]
func (c *ReviewController) GetForReview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.ReviewService.GetForReview(ctx.Request.Context(), ctx.Param("id"), user.ReviewerTag())
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// SubmitReview godoc
// @Summary Commit a manual review transaction
// @Description All item scores are validated against [0, max_score] before
// @Description anything is written; a version mismatch returns 409 and the
// @Description client must reload.
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Param body body service.ReviewRequest true "review items"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/teacher/submissions/{id}/review [post]
func (c *ReviewController) SubmitReview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ReviewService.SubmitReview(ctx.Request.Context(), ctx.Param("id"), user.ReviewerTag(), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStaleReview):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrScoreOutOfRange), errors.Is(err, util.ErrNoReviewItems):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrSubmissionNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Rescore godoc
// @Summary Re-run keyword scoring for one submission
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Param body body service.RescoreRequest true "rescore options"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/teacher/submissions/{id}/rescore [post]
func (c *ReviewController) Rescore(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RescoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RescoreService.Rescore(ctx.Param("id"), user.ReviewerTag(), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStaleReview):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

type ContestRescoreRequest struct {
	IncludeReviewed bool `json:"includeReviewed"`
}

// RescoreContest godoc
// @Summary Re-run keyword scoring across a whole contest
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "contest id"
// @Param body body ContestRescoreRequest false "rescore options"
// @Success 200 {object} util.Response
// @Router /api/teacher/contests/{id}/rescore [post]
func (c *ReviewController) RescoreContest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	contestID := util.MustParseUint(ctx.Param("id"))
	if contestID == 0 {
		util.BadRequest(ctx, "invalid contest id")
		return
	}

	var req ContestRescoreRequest
	_ = ctx.ShouldBindJSON(&req)

	results, err := c.RescoreService.RescoreContest(contestID, user.ReviewerTag(), req.IncludeReviewed)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// History godoc
// @Summary Review and rescore audit trail for a submission
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response
// @Router /api/teacher/submissions/{id}/history [get]
func (c *ReviewController) History(ctx *gin.Context) {
	logs, err := c.ReviewService.History(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}
