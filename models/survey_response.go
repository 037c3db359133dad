package models

import (
	"time"

	"gorm.io/gorm"
)

// SurveyResponse is a free-text comment a participant can leave alongside
// their numeric submission.
type SurveyResponse struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Text       string         `json:"text" gorm:"not null"`
	ResultCode string         `json:"result_code" gorm:"index"`
	PollCode   string         `json:"poll_code" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
