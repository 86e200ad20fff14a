package service

import (
	"context"

	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/repository"
	"quiz_review_backend/pkg/logger"

	"go.uber.org/zap"
)

type AnalyticsService struct {
	AnalyticsRepo AnalyticsStore
	ReviewSvc     *ReviewService
}

func NewAnalyticsService(analyticsRepo AnalyticsStore, reviewSvc *ReviewService) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsRepo: analyticsRepo,
		ReviewSvc:     reviewSvc,
	}
}

// AnalyticsReport is recomputed on every request; there is no cached state
// to invalidate.
type AnalyticsReport struct {
	ManualReviewPending    int                           `json:"manualReviewPending"`
	KeywordScored          int64                         `json:"keywordScored"`
	ManuallyReviewed       int64                         `json:"manuallyReviewed"`
	BreakdownByMethod      map[model.ScoringMethod]int64 `json:"breakdownByMethod"`
	AverageKeywordAccuracy float64                       `json:"averageKeywordAccuracy"`
}

// GetAnalytics rolls up scoring state across all answers in scope. Partial
// failures degrade to zero counts instead of erroring: this feeds
// dashboards that must stay available even with partial data.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, courseID, contestID uint) (*AnalyticsReport, error) {
	report := &AnalyticsReport{
		BreakdownByMethod: map[model.ScoringMethod]int64{
			model.MethodManual:         0,
			model.MethodKeywordBased:   0,
			model.MethodManualFallback: 0,
		},
	}

	counts, err := s.AnalyticsRepo.CountAnswersByMethod(courseID, contestID)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		report.BreakdownByMethod[c.Method] = c.Count
		if c.Method == model.MethodKeywordBased {
			report.KeywordScored = c.Count
		}
	}

	if reviewed, err := s.AnalyticsRepo.CountReviewedAnswers(courseID, contestID); err == nil {
		report.ManuallyReviewed = reviewed
	} else {
		logger.Log.Warn("analytics reviewed count unavailable", zap.Error(err))
	}

	if acc, err := s.AnalyticsRepo.AverageMatchFraction(courseID, contestID); err == nil {
		report.AverageKeywordAccuracy = acc
	} else {
		logger.Log.Warn("analytics accuracy unavailable", zap.Error(err))
	}

	// Pending goes through the same derived predicate as the queue.
	entries, err := s.ReviewSvc.ListPending(ctx, repository.ReviewQueueFilter{
		CourseID:  courseID,
		ContestID: contestID,
	})
	if err != nil {
		logger.Log.Warn("analytics pending count unavailable", zap.Error(err))
	} else {
		for _, e := range entries {
			report.ManualReviewPending += len(e.ReviewItems)
		}
	}

	return report, nil
}
