package service

import (
	"os"
	"sort"
	"testing"
	"time"

	"quiz_review_backend/internal/grading"
	"quiz_review_backend/internal/model"
	"quiz_review_backend/internal/repository"
	"quiz_review_backend/internal/util"
	"quiz_review_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func testPolicy() *PolicyProvider {
	return &PolicyProvider{
		policy:   grading.DefaultPolicy(),
		claimTTL: time.Minute,
	}
}

// fakeStore is an in-memory stand-in for the GORM repositories, with the
// same version-check semantics as CommitMutation.
type fakeStore struct {
	subs      map[string]*model.Submission
	questions map[uint]*model.Question
	contests  map[uint]*model.Contest
	logs      []model.ReviewLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:      make(map[string]*model.Submission),
		questions: make(map[uint]*model.Question),
		contests:  make(map[uint]*model.Contest),
	}
}

func (f *fakeStore) addContest(id uint, name string) {
	c := &model.Contest{Name: name}
	c.ID = id
	f.contests[id] = c
}

func (f *fakeStore) addQuestion(id, contestID uint, maxScore float64, typ model.ScoringType, keywords []string) {
	q := &model.Question{
		ContestID: contestID,
		Content:   "question",
		MaxScore:  maxScore,
		Type:      typ,
		Keywords:  keywords,
		Order:     int(id),
	}
	q.ID = id
	f.questions[id] = q
}

func (f *fakeStore) cloneSub(src *model.Submission) *model.Submission {
	dup := *src
	dup.Answers = make([]model.Answer, len(src.Answers))
	copy(dup.Answers, src.Answers)
	for i := range dup.Answers {
		dup.Answers[i].Question = f.questions[dup.Answers[i].QuestionID]
	}
	return &dup
}

func (f *fakeStore) Create(sub *model.Submission) error {
	if sub.ID == "" {
		sub.ID = model.GenerateUUID()
	}
	for i := range sub.Answers {
		if sub.Answers[i].ID == "" {
			sub.Answers[i].ID = model.GenerateUUID()
		}
		sub.Answers[i].SubmissionID = sub.ID
	}
	f.subs[sub.ID] = f.cloneSub(sub)
	return nil
}

func (f *fakeStore) FindByID(id string) (*model.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, util.ErrSubmissionNotFound
	}
	return f.cloneSub(sub), nil
}

func (f *fakeStore) ListReviewCandidates(filter repository.ReviewQueueFilter) ([]model.Submission, error) {
	var out []model.Submission
	for _, sub := range f.subs {
		if filter.ContestID > 0 && sub.ContestID != filter.ContestID {
			continue
		}
		unreviewed := false
		for i := range sub.Answers {
			if sub.Answers[i].ReviewedAt == nil {
				unreviewed = true
				break
			}
		}
		if !unreviewed {
			continue
		}
		out = append(out, *f.cloneSub(sub))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeStore) ListByContest(contestID uint) ([]model.Submission, error) {
	var out []model.Submission
	for _, sub := range f.subs {
		if sub.ContestID == contestID {
			out = append(out, *f.cloneSub(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeStore) CommitMutation(sub *model.Submission, expectedVersion int64, answers []model.Answer) error {
	stored, ok := f.subs[sub.ID]
	if !ok {
		return util.ErrSubmissionNotFound
	}
	if stored.Version != expectedVersion {
		return util.ErrStaleReview
	}
	for _, upd := range answers {
		upd.Question = nil
		for i := range stored.Answers {
			if stored.Answers[i].ID == upd.ID {
				stored.Answers[i] = upd
				break
			}
		}
	}
	stored.TotalScore = sub.TotalScore
	stored.Version++
	return nil
}

func (f *fakeStore) CountAnswersByMethod(courseID, contestID uint) ([]repository.MethodCount, error) {
	counts := make(map[model.ScoringMethod]int64)
	f.eachAnswer(contestID, func(a *model.Answer) {
		counts[a.Method]++
	})
	var out []repository.MethodCount
	for method, n := range counts {
		out = append(out, repository.MethodCount{Method: method, Count: n})
	}
	return out, nil
}

func (f *fakeStore) AverageMatchFraction(courseID, contestID uint) (float64, error) {
	var sum float64
	var n int
	f.eachAnswer(contestID, func(a *model.Answer) {
		if a.MatchFraction != nil {
			sum += *a.MatchFraction
			n++
		}
	})
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeStore) CountReviewedAnswers(courseID, contestID uint) (int64, error) {
	var n int64
	f.eachAnswer(contestID, func(a *model.Answer) {
		if a.ReviewedAt != nil {
			n++
		}
	})
	return n, nil
}

func (f *fakeStore) eachAnswer(contestID uint, fn func(a *model.Answer)) {
	for _, sub := range f.subs {
		if contestID > 0 && sub.ContestID != contestID {
			continue
		}
		for i := range sub.Answers {
			fn(&sub.Answers[i])
		}
	}
}

func (f *fakeStore) CreateLog(entry *model.ReviewLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeStore) ListBySubmission(submissionID string) ([]model.ReviewLog, error) {
	var out []model.ReviewLog
	for _, l := range f.logs {
		if l.SubmissionID == submissionID {
			out = append(out, l)
		}
	}
	return out, nil
}

// logStore adapts fakeStore to the ReviewLogStore method set.
type logStore struct{ f *fakeStore }

func (s logStore) Create(entry *model.ReviewLog) error { return s.f.CreateLog(entry) }
func (s logStore) ListBySubmission(submissionID string) ([]model.ReviewLog, error) {
	return s.f.ListBySubmission(submissionID)
}

func (f *fakeStore) FindQuestionByID(id uint) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, util.ErrQuestionNotFound
	}
	return q, nil
}

type questionStore struct{ f *fakeStore }

func (s questionStore) FindByID(id uint) (*model.Question, error) { return s.f.FindQuestionByID(id) }
func (s questionStore) ListByContest(contestID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range s.f.questions {
		if q.ContestID == contestID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

type contestStore struct{ f *fakeStore }

func (s contestStore) FindByID(id uint) (*model.Contest, error) {
	c, ok := s.f.contests[id]
	if !ok {
		return nil, util.ErrContestNotFound
	}
	return c, nil
}
