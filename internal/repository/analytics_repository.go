package repository

import (
	"quiz_review_backend/internal/model"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

type MethodCount struct {
	Method model.ScoringMethod `gorm:"column:scoring_method"`
	Count  int64               `gorm:"column:cnt"`
}

func (r *AnalyticsRepository) scoped(courseID, contestID uint) *gorm.DB {
	query := r.DB.Model(&model.Answer{}).
		Joins("JOIN submissions ON submissions.id = answers.submission_id AND submissions.deleted_at IS NULL")
	if contestID > 0 {
		query = query.Where("submissions.contest_id = ?", contestID)
	}
	if courseID > 0 {
		query = query.
			Joins("JOIN contests ON contests.id = submissions.contest_id AND contests.deleted_at IS NULL").
			Where("contests.course_id = ?", courseID)
	}
	return query
}

func (r *AnalyticsRepository) CountAnswersByMethod(courseID, contestID uint) ([]MethodCount, error) {
	var rows []MethodCount
	err := r.scoped(courseID, contestID).
		Select("answers.scoring_method, COUNT(*) as cnt").
		Group("answers.scoring_method").
		Scan(&rows).Error
	return rows, err
}

// AverageMatchFraction averages over every answer the matcher ever ran on,
// regardless of whether a reviewer later overrode the score. Returns 0 when
// no matched answers exist.
func (r *AnalyticsRepository) AverageMatchFraction(courseID, contestID uint) (float64, error) {
	var avg *float64
	err := r.scoped(courseID, contestID).
		Where("answers.match_fraction IS NOT NULL").
		Select("AVG(answers.match_fraction)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *AnalyticsRepository) CountReviewedAnswers(courseID, contestID uint) (int64, error) {
	var count int64
	err := r.scoped(courseID, contestID).
		Where("answers.reviewed_at IS NOT NULL").
		Count(&count).Error
	return count, err
}
