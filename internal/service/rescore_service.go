package service

import (
	"errors"
	"fmt"

	"quiz_review_backend/internal/grading"
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"
	"quiz_review_backend/pkg/logger"
	"quiz_review_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type RescoreService struct {
	SubmissionRepo SubmissionStore
	ReviewLogRepo  ReviewLogStore
	Policy         *PolicyProvider
}

func NewRescoreService(
	submissionRepo SubmissionStore,
	reviewLogRepo ReviewLogStore,
	policy *PolicyProvider,
) *RescoreService {
	return &RescoreService{
		SubmissionRepo: submissionRepo,
		ReviewLogRepo:  reviewLogRepo,
		Policy:         policy,
	}
}

type RescoreRequest struct {
	Version int64 `json:"version" binding:"required"`
	// QuestionIDs limits the rescore; empty means every keyword-scored
	// answer in the submission.
	QuestionIDs []uint `json:"questionIds"`
	// IncludeReviewed forces rescoring over completed manual reviews,
	// returning those answers to automated scoring.
	IncludeReviewed bool `json:"includeReviewed"`
}

type AnswerDelta struct {
	QuestionID uint    `json:"questionId"`
	OldScore   float64 `json:"oldScore"`
	NewScore   float64 `json:"newScore"`
	Delta      float64 `json:"delta"`
	Skipped    bool    `json:"skipped"`
	Reason     string  `json:"reason,omitempty"`
}

type RescoreResult struct {
	SubmissionID string        `json:"submissionId"`
	OldTotal     float64       `json:"oldTotal"`
	NewTotal     float64       `json:"newTotal"`
	TotalDelta   float64       `json:"totalDelta"`
	Answers      []AnswerDelta `json:"answers"`
	Version      int64         `json:"version"`
	// Conflicted marks a bulk-run entry that lost the version race and
	// was left untouched.
	Conflicted bool `json:"conflicted,omitempty"`
}

// Rescore re-runs the keyword matcher against the current keyword
// configuration for the targeted answers. Answers already finalized by a
// reviewer are skipped (a no-op, not an error) unless IncludeReviewed is
// set. Idempotent: with unchanged keywords and text the second run commits
// nothing and every delta is zero.
func (s *RescoreService) Rescore(submissionID, actor string, req RescoreRequest) (*RescoreResult, error) {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Version != req.Version {
		monitoring.StaleReviewConflicts.Inc()
		return nil, util.ErrStaleReview
	}
	return s.rescoreLoaded(sub, actor, req)
}

func (s *RescoreService) rescoreLoaded(sub *model.Submission, actor string, req RescoreRequest) (*RescoreResult, error) {
	targeted := make(map[uint]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		targeted[id] = true
	}

	policy := s.Policy.Policy()
	result := &RescoreResult{
		SubmissionID: sub.ID,
		OldTotal:     sub.TotalScore,
		Version:      sub.Version,
	}

	var changed []model.Answer
	for i := range sub.Answers {
		ans := &sub.Answers[i]
		if ans.Question == nil {
			continue
		}
		if len(targeted) > 0 {
			if !targeted[ans.Question.ID] {
				continue
			}
		} else if ans.Question.Type != model.ScoringTypeKeywordBased {
			continue
		}

		delta := AnswerDelta{QuestionID: ans.QuestionID, OldScore: ans.Score}

		if ans.ReviewedAt != nil && !req.IncludeReviewed {
			delta.NewScore = ans.Score
			delta.Skipped = true
			delta.Reason = "already reviewed"
			result.Answers = append(result.Answers, delta)
			continue
		}

		out := grading.Classify(ans.RawText, ans.Question, policy)
		if out.Method == model.MethodManualFallback {
			monitoring.KeywordFallbacks.Inc()
		}

		delta.NewScore = out.Score
		delta.Delta = out.Score - ans.Score
		result.Answers = append(result.Answers, delta)

		if answerUnchanged(ans, out) {
			continue
		}

		ans.Score = out.Score
		ans.Method = out.Method
		ans.FallbackReason = out.FallbackReason
		if out.Match != nil {
			f := out.Match.Fraction
			ans.MatchFraction = &f
			ans.KeywordMatch = out.Match
		} else {
			ans.MatchFraction = nil
			ans.KeywordMatch = nil
		}
		// A forced rescore supersedes the manual disposition.
		ans.ReviewedBy = nil
		ans.ReviewedAt = nil
		ans.Feedback = nil
		changed = append(changed, *ans)
	}

	newTotal := 0.0
	for i := range sub.Answers {
		newTotal += sub.Answers[i].Score
	}
	result.NewTotal = newTotal
	result.TotalDelta = newTotal - result.OldTotal

	// Nothing moved: keep the version untouched so back-to-back runs are
	// true no-ops.
	if len(changed) == 0 {
		result.NewTotal = result.OldTotal
		result.TotalDelta = 0
		return result, nil
	}

	sub.TotalScore = newTotal
	if err := s.SubmissionRepo.CommitMutation(sub, sub.Version, changed); err != nil {
		if errors.Is(err, util.ErrStaleReview) {
			monitoring.StaleReviewConflicts.Inc()
		}
		return nil, err
	}
	result.Version = sub.Version + 1

	monitoring.RescoreRuns.Inc()
	s.appendLog(sub.ID, actor, result.TotalDelta, len(changed))
	return result, nil
}

// answerUnchanged reports whether the classifier outcome matches the
// answer's stored automated state, making the write skippable.
func answerUnchanged(ans *model.Answer, out grading.Outcome) bool {
	if ans.Score != out.Score || ans.Method != out.Method {
		return false
	}
	if (ans.MatchFraction == nil) != (out.Match == nil) {
		return false
	}
	if out.Match != nil && *ans.MatchFraction != out.Match.Fraction {
		return false
	}
	return true
}

// RescoreContest applies the rescore across every submission of a contest.
// Submissions are independent, so each one is versioned on its own; an
// entry losing a concurrent version race is reported as conflicted rather
// than failing the whole run.
func (s *RescoreService) RescoreContest(contestID uint, actor string, includeReviewed bool) ([]RescoreResult, error) {
	subs, err := s.SubmissionRepo.ListByContest(contestID)
	if err != nil {
		return nil, err
	}

	results := make([]RescoreResult, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		req := RescoreRequest{Version: sub.Version, IncludeReviewed: includeReviewed}
		res, err := s.rescoreLoaded(sub, actor, req)
		if err != nil {
			if errors.Is(err, util.ErrStaleReview) {
				results = append(results, RescoreResult{
					SubmissionID: sub.ID,
					OldTotal:     sub.TotalScore,
					NewTotal:     sub.TotalScore,
					Version:      sub.Version,
					Conflicted:   true,
				})
				continue
			}
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func (s *RescoreService) appendLog(submissionID, actor string, delta float64, touched int) {
	if s.ReviewLogRepo == nil {
		return
	}
	if err := s.ReviewLogRepo.Create(&model.ReviewLog{
		SubmissionID: submissionID,
		Actor:        actor,
		Action:       "rescore",
		Delta:        delta,
		Detail:       fmt.Sprintf("%d answers rescored", touched),
	}); err != nil {
		logger.Log.Error("failed to append rescore log", zap.Error(err))
	}
}
