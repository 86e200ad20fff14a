package model

// ScoringType declares how a long-answer question is scored at submission
// time. Multiple-choice items never reach this service.
type ScoringType string

const (
	ScoringTypeManual       ScoringType = "MANUAL"
	ScoringTypeKeywordBased ScoringType = "KEYWORD_BASED"
)

// Question records are owned by content authoring and treated as read-only
// here. Keywords is empty for MANUAL questions.
// swagger:model Question
type Question struct {
	BaseModel
	ContestID uint        `gorm:"index;type:bigint unsigned" json:"contestId"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	MaxScore  float64     `gorm:"not null" json:"maxScore"`
	Type      ScoringType `gorm:"size:20;not null;default:'MANUAL'" json:"scoringType"`
	Keywords  []string    `gorm:"serializer:json" json:"keywords,omitempty"`
	Order     int         `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}
