package repository

import (
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(sub *model.Submission) error {
	return r.DB.Create(sub).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Student").
		Preload("Contest").
		First(&sub, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSubmissionNotFound
	}
	return &sub, err
}

// ReviewQueueFilter narrows the review queue candidate set.
type ReviewQueueFilter struct {
	ContestID uint
	CourseID  uint
	Method    model.ScoringMethod
	Search    string
}

// ListReviewCandidates returns submissions that still have at least one
// unreviewed answer, oldest first. The exact needs-review predicate is
// applied by the service on top of this; the SQL filter only prunes
// submissions whose answers are all explicitly reviewed.
func (r *SubmissionRepository) ListReviewCandidates(f ReviewQueueFilter) ([]model.Submission, error) {
	query := r.DB.Model(&model.Submission{}).
		Joins("JOIN users ON users.id = submissions.student_id AND users.deleted_at IS NULL").
		Joins("JOIN contests ON contests.id = submissions.contest_id AND contests.deleted_at IS NULL").
		Where("EXISTS (SELECT 1 FROM answers WHERE answers.submission_id = submissions.id AND answers.reviewed_at IS NULL AND answers.deleted_at IS NULL)")

	if f.ContestID > 0 {
		query = query.Where("submissions.contest_id = ?", f.ContestID)
	}
	if f.CourseID > 0 {
		query = query.Where("contests.course_id = ?", f.CourseID)
	}
	if f.Method != "" {
		query = query.Where("EXISTS (SELECT 1 FROM answers a2 WHERE a2.submission_id = submissions.id AND a2.scoring_method = ? AND a2.deleted_at IS NULL)", f.Method)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("users.name LIKE ? OR users.email LIKE ? OR contests.name LIKE ?", like, like, like)
	}

	var subs []model.Submission
	err := query.
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Student").
		Preload("Contest").
		Order("submissions.submitted_at asc").
		Find(&subs).Error
	return subs, err
}

// ListByContest loads every submission of a contest with answers and
// questions attached, for bulk rescoring.
func (r *SubmissionRepository) ListByContest(contestID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.
		Preload("Answers").
		Preload("Answers.Question").
		Where("contest_id = ?", contestID).
		Order("submitted_at asc").
		Find(&subs).Error
	return subs, err
}

// CommitMutation atomically applies a score mutation: the submission row is
// updated only if its version still matches expectedVersion (incrementing
// it), then the changed answers are written in the same transaction. A
// version mismatch rolls everything back and returns ErrStaleReview, so a
// losing reviewer never silently overwrites a winning one.
func (r *SubmissionRepository) CommitMutation(sub *model.Submission, expectedVersion int64, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Submission{}).
			Where("id = ? AND version = ?", sub.ID, expectedVersion).
			Updates(map[string]interface{}{
				"total_score": sub.TotalScore,
				"version":     gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrStaleReview
		}
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
