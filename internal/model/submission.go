package model

import "time"

// ScoringMethod is the closed set of tags describing where an answer's
// current score came from. Exhaustive switches over this type are expected
// at every call site; never compare against raw strings.
type ScoringMethod string

const (
	// MethodManual: the question is manual-only; the score is 0 until a
	// reviewer sets it.
	MethodManual ScoringMethod = "MANUAL"
	// MethodKeywordBased: the keyword matcher produced the current score
	// and no reviewer has touched it.
	MethodKeywordBased ScoringMethod = "KEYWORD_BASED"
	// MethodManualFallback: automation was attempted but the final score
	// came from a human, either because matching failed or because a
	// reviewer overrode the automated score.
	MethodManualFallback ScoringMethod = "MANUAL_FALLBACK"
)

// ReviewPriority orders the review queue. HIGH beats MEDIUM beats LOW;
// ties are broken by oldest submission first.
type ReviewPriority string

const (
	PriorityLow    ReviewPriority = "LOW"
	PriorityMedium ReviewPriority = "MEDIUM"
	PriorityHigh   ReviewPriority = "HIGH"
)

// Rank maps a priority to a sortable weight, higher first.
func (p ReviewPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// KeywordMatch holds the matcher detail surfaced to reviewers.
type KeywordMatch struct {
	Found    []string `json:"found"`
	Missing  []string `json:"missing"`
	Fraction float64  `json:"fraction"`
}

// swagger:model Submission
type Submission struct {
	UUIDBase
	StudentID   uint      `gorm:"index;type:bigint unsigned" json:"studentId"`
	Student     *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	ContestID   uint      `gorm:"index;type:bigint unsigned" json:"contestId"`
	Contest     *Contest  `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	SubmittedAt time.Time `gorm:"index" json:"submittedAt"`
	// TotalScore is derived: always the sum of the answer scores. Kept
	// denormalized for export and list views, recomputed on every mutation.
	TotalScore float64 `gorm:"default:0" json:"totalScore"`
	// Version is a monotonic counter for optimistic concurrency. Every
	// mutation to an answer within the submission increments it; mutating
	// calls must present the version they read.
	Version int64    `gorm:"not null;default:1" json:"version"`
	Answers []Answer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// swagger:model Answer
type Answer struct {
	UUIDBase
	SubmissionID string        `gorm:"index;type:varchar(36)" json:"submissionId"`
	QuestionID   uint          `gorm:"index;type:bigint unsigned" json:"questionId"`
	Question     *Question     `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	RawText      string        `gorm:"type:text" json:"rawText"`
	Score        float64       `gorm:"default:0" json:"score"`
	Method       ScoringMethod `gorm:"size:20;not null" json:"scoringMethod"`
	// MatchFraction is set iff the keyword matcher ran for this answer.
	// It survives reviewer overrides so accuracy analytics stay stable.
	MatchFraction *float64      `json:"matchFraction,omitempty"`
	KeywordMatch  *KeywordMatch `gorm:"serializer:json" json:"keywordMatch,omitempty"`
	// FallbackReason is set when automation failed and the answer degraded
	// to MANUAL_FALLBACK; surfaced to the reviewer.
	FallbackReason string     `gorm:"size:255" json:"fallbackReason,omitempty"`
	Feedback       *string    `gorm:"type:text" json:"feedback,omitempty"`
	ReviewedBy     *string    `gorm:"size:100" json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}
