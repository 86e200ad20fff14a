package service

import (
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/repository"
)

// SubmissionStore is what the mutating services need from persistence.
// *repository.SubmissionRepository is the production implementation.
type SubmissionStore interface {
	Create(sub *model.Submission) error
	FindByID(id string) (*model.Submission, error)
	ListReviewCandidates(f repository.ReviewQueueFilter) ([]model.Submission, error)
	ListByContest(contestID uint) ([]model.Submission, error)
	CommitMutation(sub *model.Submission, expectedVersion int64, answers []model.Answer) error
}

type AnalyticsStore interface {
	CountAnswersByMethod(courseID, contestID uint) ([]repository.MethodCount, error)
	AverageMatchFraction(courseID, contestID uint) (float64, error)
	CountReviewedAnswers(courseID, contestID uint) (int64, error)
}

type ReviewLogStore interface {
	Create(entry *model.ReviewLog) error
	ListBySubmission(submissionID string) ([]model.ReviewLog, error)
}

type QuestionStore interface {
	FindByID(id uint) (*model.Question, error)
	ListByContest(contestID uint) ([]model.Question, error)
}

type ContestStore interface {
	FindByID(id uint) (*model.Contest, error)
}
