package util

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrContestNotFound    = errors.New("contest not found")
	// ErrScoreOutOfRange rejects a whole review transaction when any
	// supplied score falls outside [0, question.max_score].
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrStaleReview signals an optimistic concurrency conflict: the
	// caller's submission version no longer matches the stored one.
	// Recoverable: reload the submission and retry.
	ErrStaleReview = errors.New("stale review: submission was modified by another reviewer")
	ErrNoReviewItems   = errors.New("review contains no items")
	ErrEmailRegistered = errors.New("email already registered")
)
