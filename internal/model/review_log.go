package model

// ReviewLog is an append-only audit trail of score mutations: one row per
// committed manual review or rescore run.
type ReviewLog struct {
	BaseModel
	SubmissionID string  `gorm:"index;type:varchar(36)" json:"submissionId"`
	Actor        string  `gorm:"size:100" json:"actor"`
	Action       string  `gorm:"size:30" json:"action"` // manual_review, rescore
	Delta        float64 `json:"delta"`
	Detail       string  `gorm:"type:text" json:"detail"`
}

func (ReviewLog) TableName() string {
	return "review_logs"
}
