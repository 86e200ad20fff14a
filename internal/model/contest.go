package model

import "time"

// Contest metadata is owned by the contest/scheduling system; rows here are
// read-only inputs used for queue filtering and display.
// swagger:model Contest
type Contest struct {
	BaseModel
	CourseID uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Name     string     `gorm:"size:255;not null" json:"name"`
	ClosedAt *time.Time `json:"closedAt,omitempty"`
}

func (Contest) TableName() string {
	return "contests"
}
