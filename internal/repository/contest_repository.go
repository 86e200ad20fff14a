package repository

import (
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"

	"gorm.io/gorm"
)

type ContestRepository struct {
	DB *gorm.DB
}

func NewContestRepository(db *gorm.DB) *ContestRepository {
	return &ContestRepository{DB: db}
}

func (r *ContestRepository) Create(c *model.Contest) error {
	return r.DB.Create(c).Error
}

func (r *ContestRepository) FindByID(id uint) (*model.Contest, error) {
	var c model.Contest
	err := r.DB.First(&c, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrContestNotFound
	}
	return &c, err
}
