package service

import (
	"testing"
	"time"

	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRescoreService(f *fakeStore) *RescoreService {
	return NewRescoreService(f, logStore{f}, testPolicy())
}

func TestRescoreAppliesCurrentKeywords(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	// The keyword list was wrong at ingest time; the answer was scored 5
	// at fraction 0.5 under the old list. The corrected list fully matches.
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})

	old := keywordAnswer("a1", 1, 5, 0.5)
	old.RawText = "recursion all the way down"
	seedSubmission(t, f, "sub-1", 1, time.Now(), old)

	svc := newRescoreService(f)
	result, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1})
	require.NoError(t, err)

	assert.Equal(t, 5.0, result.OldTotal)
	assert.Equal(t, 10.0, result.NewTotal)
	assert.Equal(t, 5.0, result.TotalDelta)
	assert.Equal(t, int64(2), result.Version)
	require.Len(t, result.Answers, 1)
	assert.Equal(t, 5.0, result.Answers[0].Delta)

	stored, _ := f.FindByID("sub-1")
	assert.Equal(t, 10.0, stored.TotalScore)
	assert.Equal(t, int64(2), stored.Version)
	assert.Equal(t, 1.0, *stored.Answers[0].MatchFraction)

	logs, _ := f.ListBySubmission("sub-1")
	require.Len(t, logs, 1)
	assert.Equal(t, "rescore", logs[0].Action)
}

func TestRescoreIdempotent(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})

	ans := keywordAnswer("a1", 1, 10, 1.0)
	ans.RawText = "recursion"
	ans.KeywordMatch = &model.KeywordMatch{Found: []string{"recursion"}, Fraction: 1.0}
	seedSubmission(t, f, "sub-1", 1, time.Now(), ans)

	svc := newRescoreService(f)
	result, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.TotalDelta)
	assert.Equal(t, int64(1), result.Version)

	stored, _ := f.FindByID("sub-1")
	assert.Equal(t, int64(1), stored.Version, "no-op rescore must not bump the version")
	assert.Empty(t, f.logs)
}

func TestRescoreSkipsReviewedAnswers(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})

	reviewer := "alice"
	now := time.Now()
	reviewed := keywordAnswer("a1", 1, 8, 0.5)
	reviewed.Method = model.MethodManualFallback
	reviewed.ReviewedBy = &reviewer
	reviewed.ReviewedAt = &now
	seedSubmission(t, f, "sub-1", 1, now, reviewed)

	svc := newRescoreService(f)
	result, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1})
	require.NoError(t, err)

	require.Len(t, result.Answers, 1)
	assert.True(t, result.Answers[0].Skipped)
	assert.Equal(t, "already reviewed", result.Answers[0].Reason)
	assert.Equal(t, 0.0, result.TotalDelta)

	stored, _ := f.FindByID("sub-1")
	assert.Equal(t, 8.0, stored.Answers[0].Score)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRescoreIncludeReviewedClearsDisposition(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})

	reviewer := "alice"
	now := time.Now()
	reviewed := keywordAnswer("a1", 1, 8, 0.5)
	reviewed.RawText = "recursion"
	reviewed.Method = model.MethodManualFallback
	reviewed.ReviewedBy = &reviewer
	reviewed.ReviewedAt = &now
	seedSubmission(t, f, "sub-1", 1, now, reviewed)

	svc := newRescoreService(f)
	result, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1, IncludeReviewed: true})
	require.NoError(t, err)

	assert.Equal(t, 10.0, result.NewTotal)

	stored, _ := f.FindByID("sub-1")
	ans := stored.Answers[0]
	assert.Equal(t, model.MethodKeywordBased, ans.Method)
	assert.Nil(t, ans.ReviewedBy)
	assert.Nil(t, ans.ReviewedAt)
}

func TestRescoreStaleVersion(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})
	seedSubmission(t, f, "sub-1", 1, time.Now(), keywordAnswer("a1", 1, 5, 0.5))
	f.subs["sub-1"].Version = 3

	svc := newRescoreService(f)
	_, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1})
	assert.ErrorIs(t, err, util.ErrStaleReview)
}

func TestRescoreTargetsOnlyRequestedQuestions(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})
	f.addQuestion(2, 1, 10, model.ScoringTypeKeywordBased, []string{"pointer"})

	a1 := keywordAnswer("a1", 1, 5, 0.5)
	a1.RawText = "recursion"
	a2 := keywordAnswer("a2", 2, 5, 0.5)
	a2.RawText = "pointer"
	seedSubmission(t, f, "sub-1", 1, time.Now(), a1, a2)

	svc := newRescoreService(f)
	result, err := svc.Rescore("sub-1", "admin", RescoreRequest{Version: 1, QuestionIDs: []uint{1}})
	require.NoError(t, err)

	require.Len(t, result.Answers, 1)
	assert.Equal(t, uint(1), result.Answers[0].QuestionID)

	stored, _ := f.FindByID("sub-1")
	assert.Equal(t, 10.0, stored.Answers[0].Score)
	assert.Equal(t, 5.0, stored.Answers[1].Score, "untargeted answer untouched")
	assert.Equal(t, 15.0, stored.TotalScore)
}

func TestRescoreContestReportsPerSubmission(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})

	changing := keywordAnswer("a1", 1, 5, 0.5)
	changing.RawText = "recursion"
	seedSubmission(t, f, "sub-1", 1, time.Now(), changing)

	stable := keywordAnswer("a2", 1, 10, 1.0)
	stable.RawText = "recursion"
	stable.KeywordMatch = &model.KeywordMatch{Found: []string{"recursion"}, Fraction: 1.0}
	seedSubmission(t, f, "sub-2", 1, time.Now().Add(time.Minute), stable)

	svc := newRescoreService(f)
	results, err := svc.RescoreContest(1, "admin", false)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 5.0, results[0].TotalDelta)
	assert.Equal(t, 0.0, results[1].TotalDelta)

	s1, _ := f.FindByID("sub-1")
	s2, _ := f.FindByID("sub-2")
	assert.Equal(t, int64(2), s1.Version)
	assert.Equal(t, int64(1), s2.Version)
}
