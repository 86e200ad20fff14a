package repository

import (
	"quiz_review_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewLogRepository struct {
	DB *gorm.DB
}

func NewReviewLogRepository(db *gorm.DB) *ReviewLogRepository {
	return &ReviewLogRepository{DB: db}
}

func (r *ReviewLogRepository) Create(entry *model.ReviewLog) error {
	return r.DB.Create(entry).Error
}

func (r *ReviewLogRepository) ListBySubmission(submissionID string) ([]model.ReviewLog, error) {
	var logs []model.ReviewLog
	err := r.DB.Where("submission_id = ?", submissionID).Order("created_at desc").Find(&logs).Error
	return logs, err
}
