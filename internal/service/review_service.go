package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"quiz_review_backend/internal/grading"
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/repository"
	"quiz_review_backend/internal/util"
	"quiz_review_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
)

type ReviewService struct {
	SubmissionRepo SubmissionStore
	AnalyticsRepo  AnalyticsStore
	ReviewLogRepo  ReviewLogStore
	Policy         *PolicyProvider
	Redis          *redis.Client
}

func NewReviewService(
	submissionRepo SubmissionStore,
	analyticsRepo AnalyticsStore,
	reviewLogRepo ReviewLogStore,
	policy *PolicyProvider,
	rdb *redis.Client,
) *ReviewService {
	return &ReviewService{
		SubmissionRepo: submissionRepo,
		AnalyticsRepo:  analyticsRepo,
		ReviewLogRepo:  reviewLogRepo,
		Policy:         policy,
		Redis:          rdb,
	}
}

// ReviewItem is one answer awaiting human disposition.
type ReviewItem struct {
	AnswerID       string               `json:"answerId"`
	QuestionID     uint                 `json:"questionId"`
	Question       string               `json:"question"`
	RawText        string               `json:"rawText"`
	Score          float64              `json:"score"`
	MaxScore       float64              `json:"maxScore"`
	Method         model.ScoringMethod  `json:"scoringMethod"`
	Priority       model.ReviewPriority `json:"priority"`
	KeywordMatch   *model.KeywordMatch  `json:"keywordMatch,omitempty"`
	FallbackReason string               `json:"fallbackReason,omitempty"`
}

// ReviewQueueEntry is a derived, never-stored view of one submission that
// still has outstanding review items.
type ReviewQueueEntry struct {
	SubmissionID string               `json:"submissionId"`
	StudentName  string               `json:"studentName"`
	StudentEmail string               `json:"studentEmail"`
	ContestID    uint                 `json:"contestId"`
	ContestName  string               `json:"contestName"`
	SubmittedAt  time.Time            `json:"submittedAt"`
	TotalScore   float64              `json:"totalScore"`
	Version      int64                `json:"version"`
	Priority     model.ReviewPriority `json:"priority"`
	// ClaimedBy names another reviewer currently viewing this submission.
	// Advisory only; the version check is the real guard.
	ClaimedBy   string       `json:"claimedBy,omitempty"`
	ReviewItems []ReviewItem `json:"reviewItems"`
}

func (s *ReviewService) buildItems(sub *model.Submission, policy grading.Policy) []ReviewItem {
	var items []ReviewItem
	for i := range sub.Answers {
		a := &sub.Answers[i]
		if !grading.NeedsReview(a, policy) {
			continue
		}
		item := ReviewItem{
			AnswerID:       a.ID,
			QuestionID:     a.QuestionID,
			RawText:        a.RawText,
			Score:          a.Score,
			Method:         a.Method,
			Priority:       grading.AnswerPriority(a, policy),
			KeywordMatch:   a.KeywordMatch,
			FallbackReason: a.FallbackReason,
		}
		if a.Question != nil {
			item.Question = a.Question.Content
			item.MaxScore = a.Question.MaxScore
		}
		items = append(items, item)
	}
	return items
}

// ListPending builds the review queue: submissions with at least one
// outstanding item, ordered HIGH > MEDIUM > LOW and oldest first within a
// priority so early submitters are not starved.
func (s *ReviewService) ListPending(ctx context.Context, f repository.ReviewQueueFilter) ([]ReviewQueueEntry, error) {
	subs, err := s.SubmissionRepo.ListReviewCandidates(f)
	if err != nil {
		return nil, err
	}

	policy := s.Policy.Policy()
	entries := make([]ReviewQueueEntry, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		items := s.buildItems(sub, policy)
		if len(items) == 0 {
			continue
		}

		entry := ReviewQueueEntry{
			SubmissionID: sub.ID,
			ContestID:    sub.ContestID,
			SubmittedAt:  sub.SubmittedAt,
			TotalScore:   sub.TotalScore,
			Version:      sub.Version,
			Priority:     maxPriority(items),
			ReviewItems:  items,
		}
		if sub.Student != nil {
			entry.StudentName = sub.Student.Name
			entry.StudentEmail = sub.Student.Email
		}
		if sub.Contest != nil {
			entry.ContestName = sub.Contest.Name
		}
		entry.ClaimedBy = s.claimOwner(ctx, sub.ID)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority.Rank() != entries[j].Priority.Rank() {
			return entries[i].Priority.Rank() > entries[j].Priority.Rank()
		}
		return entries[i].SubmittedAt.Before(entries[j].SubmittedAt)
	})
	return entries, nil
}

func maxPriority(items []ReviewItem) model.ReviewPriority {
	top := model.PriorityLow
	for _, it := range items {
		if it.Priority.Rank() > top.Rank() {
			top = it.Priority
		}
	}
	return top
}

// QueueSummary feeds the reviewer dashboard. Counts degrade to zero rather
// than failing so the dashboard stays available with partial data.
type QueueSummary struct {
	PendingSubmissions int     `json:"pendingSubmissions"`
	PendingItems       int     `json:"pendingItems"`
	AutoScored         int64   `json:"autoScored"`
	Reviewed           int64   `json:"reviewed"`
	Accuracy           float64 `json:"accuracy"`
}

func (s *ReviewService) Summary(ctx context.Context, f repository.ReviewQueueFilter) (*QueueSummary, error) {
	entries, err := s.ListPending(ctx, f)
	if err != nil {
		return nil, err
	}

	summary := &QueueSummary{PendingSubmissions: len(entries)}
	for _, e := range entries {
		summary.PendingItems += len(e.ReviewItems)
	}

	if counts, err := s.AnalyticsRepo.CountAnswersByMethod(f.CourseID, f.ContestID); err == nil {
		for _, c := range counts {
			if c.Method == model.MethodKeywordBased {
				summary.AutoScored = c.Count
			}
		}
	}
	if reviewed, err := s.AnalyticsRepo.CountReviewedAnswers(f.CourseID, f.ContestID); err == nil {
		summary.Reviewed = reviewed
	}
	if acc, err := s.AnalyticsRepo.AverageMatchFraction(f.CourseID, f.ContestID); err == nil {
		summary.Accuracy = acc
	}
	return summary, nil
}

// SubmissionDetail is the per-submission review view. Outstanding items are
// derived through the same predicate as the queue, so the two never drift.
type SubmissionDetail struct {
	Submission *model.Submission `json:"submission"`
	Items      []ReviewItem      `json:"reviewItems"`
	ClaimedBy  string            `json:"claimedBy,omitempty"`
}

// GetForReview loads a submission with full keyword match detail and marks
// the advisory claim for the requesting reviewer.
func (s *ReviewService) GetForReview(ctx context.Context, submissionID, reviewer string) (*SubmissionDetail, error) {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, err
	}

	detail := &SubmissionDetail{
		Submission: sub,
		Items:      s.buildItems(sub, s.Policy.Policy()),
	}
	detail.ClaimedBy = s.claim(ctx, submissionID, reviewer)
	return detail, nil
}

func (s *ReviewService) claimKey(submissionID string) string {
	return "review:claim:" + submissionID
}

// claim sets the advisory claim for the reviewer if free (or refreshes an
// own claim) and returns a conflicting owner's name, if any. Redis being
// down never blocks reviewing.
func (s *ReviewService) claim(ctx context.Context, submissionID, reviewer string) string {
	if s.Redis == nil || reviewer == "" {
		return ""
	}
	key := s.claimKey(submissionID)
	ttl := s.Policy.ClaimTTL()

	ok, err := s.Redis.SetNX(ctx, key, reviewer, ttl).Result()
	if err != nil || ok {
		return ""
	}
	owner, err := s.Redis.Get(ctx, key).Result()
	if err != nil || owner == reviewer {
		if owner == reviewer {
			s.Redis.Expire(ctx, key, ttl)
		}
		return ""
	}
	return owner
}

func (s *ReviewService) claimOwner(ctx context.Context, submissionID string) string {
	if s.Redis == nil {
		return ""
	}
	owner, err := s.Redis.Get(ctx, s.claimKey(submissionID)).Result()
	if err != nil {
		return ""
	}
	return owner
}

func (s *ReviewService) releaseClaim(ctx context.Context, submissionID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, s.claimKey(submissionID))
}

type ReviewItemReq struct {
	QuestionID uint    `json:"questionId" binding:"required"`
	NewScore   float64 `json:"newScore"`
	Feedback   *string `json:"feedback"`
}

type ReviewRequest struct {
	Version         int64           `json:"version" binding:"required"`
	Items           []ReviewItemReq `json:"items" binding:"required"`
	GeneralFeedback string          `json:"generalFeedback"`
}

type ReviewResult struct {
	OldTotal float64 `json:"oldTotal"`
	NewTotal float64 `json:"newTotal"`
	Delta    float64 `json:"delta"`
	Version  int64   `json:"version"`
}

// SubmitReview applies a manual review transaction: all items validate or
// nothing is written. Every targeted answer gets the reviewer attribution;
// a keyword-scored answer whose score the reviewer changed is retagged
// MANUAL_FALLBACK. The submission total and version update atomically with
// the answers under the optimistic version check.
func (s *ReviewService) SubmitReview(ctx context.Context, submissionID, reviewer string, req ReviewRequest) (*ReviewResult, error) {
	if len(req.Items) == 0 {
		return nil, util.ErrNoReviewItems
	}

	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Version != req.Version {
		monitoring.StaleReviewConflicts.Inc()
		return nil, util.ErrStaleReview
	}

	byQuestion := make(map[uint]*model.Answer, len(sub.Answers))
	for i := range sub.Answers {
		byQuestion[sub.Answers[i].QuestionID] = &sub.Answers[i]
	}

	// Validate the whole transaction before touching anything.
	for _, item := range req.Items {
		ans, ok := byQuestion[item.QuestionID]
		if !ok || ans.Question == nil {
			return nil, util.ErrQuestionNotFound
		}
		if item.NewScore < 0 || item.NewScore > ans.Question.MaxScore {
			return nil, fmt.Errorf("%w: question %d: %.2f not in [0, %.2f]",
				util.ErrScoreOutOfRange, item.QuestionID, item.NewScore, ans.Question.MaxScore)
		}
	}

	oldTotal := sub.TotalScore
	now := time.Now()
	changed := make([]model.Answer, 0, len(req.Items))
	for _, item := range req.Items {
		ans := byQuestion[item.QuestionID]
		if ans.Method == model.MethodKeywordBased && item.NewScore != ans.Score {
			ans.Method = model.MethodManualFallback
		}
		ans.Score = item.NewScore
		ans.Feedback = item.Feedback
		ans.ReviewedBy = &reviewer
		ans.ReviewedAt = &now
		changed = append(changed, *ans)
	}

	newTotal := 0.0
	for i := range sub.Answers {
		newTotal += sub.Answers[i].Score
	}
	sub.TotalScore = newTotal

	if err := s.SubmissionRepo.CommitMutation(sub, req.Version, changed); err != nil {
		if errors.Is(err, util.ErrStaleReview) {
			monitoring.StaleReviewConflicts.Inc()
		}
		return nil, err
	}

	monitoring.ReviewsCommitted.Inc()
	s.releaseClaim(ctx, submissionID)
	s.appendLog(sub.ID, reviewer, "manual_review", newTotal-oldTotal, req.GeneralFeedback)

	return &ReviewResult{
		OldTotal: oldTotal,
		NewTotal: newTotal,
		Delta:    newTotal - oldTotal,
		Version:  req.Version + 1,
	}, nil
}

func (s *ReviewService) appendLog(submissionID, actor, action string, delta float64, detail string) {
	if s.ReviewLogRepo == nil {
		return
	}
	_ = s.ReviewLogRepo.Create(&model.ReviewLog{
		SubmissionID: submissionID,
		Actor:        actor,
		Action:       action,
		Delta:        delta,
		Detail:       detail,
	})
}

func (s *ReviewService) History(submissionID string) ([]model.ReviewLog, error) {
	return s.ReviewLogRepo.ListBySubmission(submissionID)
}
