package repository

import (
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrQuestionNotFound
	}
	return &q, err
}

func (r *QuestionRepository) ListByContest(contestID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("contest_id = ?", contestID).Order("`order` asc, id asc").Find(&qs).Error
	return qs, err
}
