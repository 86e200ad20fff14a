package service

import (
	"testing"
	"time"

	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionService(f *fakeStore) *SubmissionService {
	return NewSubmissionService(f, questionStore{f}, contestStore{f}, testPolicy())
}

func TestIngestScoresKeywordAnswers(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "Spring Contest")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion", "base case"})
	f.addQuestion(2, 1, 5, model.ScoringTypeManual, nil)

	svc := newSubmissionService(f)
	sub, err := svc.Ingest(SubmissionReq{
		StudentID: 7,
		ContestID: 1,
		Answers: []RawAnswerReq{
			{QuestionID: 1, Text: "Recursion needs a base case to terminate"},
			{QuestionID: 2, Text: "free-form essay"},
		},
	})
	require.NoError(t, err)

	require.Len(t, sub.Answers, 2)
	assert.Equal(t, int64(1), sub.Version)

	kw := sub.Answers[0]
	assert.Equal(t, model.MethodKeywordBased, kw.Method)
	assert.Equal(t, 10.0, kw.Score)
	require.NotNil(t, kw.MatchFraction)
	assert.Equal(t, 1.0, *kw.MatchFraction)
	require.NotNil(t, kw.KeywordMatch)
	assert.ElementsMatch(t, []string{"recursion", "base case"}, kw.KeywordMatch.Found)

	manual := sub.Answers[1]
	assert.Equal(t, model.MethodManual, manual.Method)
	assert.Equal(t, 0.0, manual.Score)
	assert.Nil(t, manual.MatchFraction)

	assert.Equal(t, 10.0, sub.TotalScore)

	stored, err := f.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.TotalScore)
}

func TestIngestPartialMatchRoundsToStep(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"stack", "heap", "pointer"})

	svc := newSubmissionService(f)
	sub, err := svc.Ingest(SubmissionReq{
		StudentID: 1,
		ContestID: 1,
		Answers:   []RawAnswerReq{{QuestionID: 1, Text: "the stack grows down"}},
	})
	require.NoError(t, err)

	// 1/3 of 10 rounds to the nearest half point.
	assert.Equal(t, 3.5, sub.Answers[0].Score)
	assert.InDelta(t, 1.0/3.0, *sub.Answers[0].MatchFraction, 1e-9)
}

func TestIngestCreatesAnswerForSkippedQuestion(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"recursion"})
	f.addQuestion(2, 1, 5, model.ScoringTypeManual, nil)

	svc := newSubmissionService(f)
	sub, err := svc.Ingest(SubmissionReq{
		StudentID: 1,
		ContestID: 1,
		Answers:   []RawAnswerReq{{QuestionID: 1, Text: "recursion"}},
	})
	require.NoError(t, err)

	require.Len(t, sub.Answers, 2)
	assert.Equal(t, "", sub.Answers[1].RawText)
	assert.Equal(t, model.MethodManual, sub.Answers[1].Method)
}

func TestIngestBadKeywordConfigFallsBack(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeKeywordBased, []string{"  ", ""})

	svc := newSubmissionService(f)
	sub, err := svc.Ingest(SubmissionReq{
		StudentID: 1,
		ContestID: 1,
		Answers:   []RawAnswerReq{{QuestionID: 1, Text: "some answer"}},
	})
	require.NoError(t, err)

	ans := sub.Answers[0]
	assert.Equal(t, model.MethodManualFallback, ans.Method)
	assert.Equal(t, 0.0, ans.Score)
	assert.NotEmpty(t, ans.FallbackReason)
	assert.Nil(t, ans.MatchFraction)
}

func TestIngestUnknownContest(t *testing.T) {
	f := newFakeStore()
	svc := newSubmissionService(f)

	_, err := svc.Ingest(SubmissionReq{StudentID: 1, ContestID: 99})
	assert.ErrorIs(t, err, util.ErrContestNotFound)
}

func TestIngestHonorsSuppliedTimestamp(t *testing.T) {
	f := newFakeStore()
	f.addContest(1, "c")
	f.addQuestion(1, 1, 10, model.ScoringTypeManual, nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newSubmissionService(f)
	sub, err := svc.Ingest(SubmissionReq{StudentID: 1, ContestID: 1, SubmittedAt: &at})
	require.NoError(t, err)
	assert.True(t, sub.SubmittedAt.Equal(at))
}
