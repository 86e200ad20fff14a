package service

import (
	"time"

	"quiz_review_backend/internal/grading"
	"quiz_review_backend/internal/model"
	"quiz_review_backend/pkg/logger"
	"quiz_review_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type SubmissionService struct {
	Repo         SubmissionStore
	QuestionRepo QuestionStore
	ContestRepo  ContestStore
	Policy       *PolicyProvider
}

func NewSubmissionService(
	repo SubmissionStore,
	questionRepo QuestionStore,
	contestRepo ContestStore,
	policy *PolicyProvider,
) *SubmissionService {
	return &SubmissionService{
		Repo:         repo,
		QuestionRepo: questionRepo,
		ContestRepo:  contestRepo,
		Policy:       policy,
	}
}

type RawAnswerReq struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Text       string `json:"text"`
}

type SubmissionReq struct {
	StudentID   uint           `json:"studentId" binding:"required"`
	ContestID   uint           `json:"contestId" binding:"required"`
	SubmittedAt *time.Time     `json:"submittedAt"`
	Answers     []RawAnswerReq `json:"answers"`
}

// Ingest accepts a raw contest-close submission, runs the scoring
// classifier over every long answer and persists the submission with
// provisional scores. One answer row is created per contest question; a
// question the student left out gets an empty-text answer so the review
// queue still sees it.
func (s *SubmissionService) Ingest(req SubmissionReq) (*model.Submission, error) {
	if _, err := s.ContestRepo.FindByID(req.ContestID); err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByContest(req.ContestID)
	if err != nil {
		return nil, err
	}

	texts := make(map[uint]string, len(req.Answers))
	for _, a := range req.Answers {
		texts[a.QuestionID] = a.Text
	}

	submittedAt := time.Now()
	if req.SubmittedAt != nil {
		submittedAt = *req.SubmittedAt
	}

	policy := s.Policy.Policy()
	sub := &model.Submission{
		StudentID:   req.StudentID,
		ContestID:   req.ContestID,
		SubmittedAt: submittedAt,
		Version:     1,
	}

	total := 0.0
	for i := range questions {
		q := &questions[i]
		out := grading.Classify(texts[q.ID], q, policy)
		if out.Method == model.MethodManualFallback {
			monitoring.KeywordFallbacks.Inc()
			logger.Log.Warn("keyword scoring degraded to manual fallback",
				zap.Uint("questionId", q.ID),
				zap.String("reason", out.FallbackReason))
		}

		ans := model.Answer{
			QuestionID:     q.ID,
			RawText:        texts[q.ID],
			Score:          out.Score,
			Method:         out.Method,
			FallbackReason: out.FallbackReason,
		}
		if out.Match != nil {
			f := out.Match.Fraction
			ans.MatchFraction = &f
			ans.KeywordMatch = out.Match
		}
		sub.Answers = append(sub.Answers, ans)
		total += out.Score
	}
	sub.TotalScore = total

	if err := s.Repo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}
