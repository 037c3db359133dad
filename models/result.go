package models

import (
	"time"

	"gorm.io/gorm"
)

// AnswerCount is the number of ordinal answer dimensions in a submission.
const AnswerCount = 8

type Result struct {
	ID uint `json:"id" gorm:"primaryKey"`

	D1 int `json:"d1" gorm:"not null"`
	D2 int `json:"d2" gorm:"not null"`
	D3 int `json:"d3" gorm:"not null"`
	D4 int `json:"d4" gorm:"not null"`
	D5 int `json:"d5" gorm:"not null"`
	D6 int `json:"d6" gorm:"not null"`
	D7 int `json:"d7" gorm:"not null"`
	D8 int `json:"d8" gorm:"not null"`

	PollCode   string `json:"poll_code" gorm:"index;not null"`
	SessionID  string `json:"session_id"`
	ResultCode string `json:"result_code" gorm:"uniqueIndex;not null"`
	IsStart    bool   `json:"is_start" gorm:"not null"`

	// Only set on end results, to pair them with the same participant's
	// start result. The code copy is redundant but makes verification easy.
	StartResultID   *uint   `json:"start_result_id"`
	StartResultCode *string `json:"start_result_code"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Answers returns the eight answer dimensions in d1..d8 order.
func (r *Result) Answers() [AnswerCount]int {
	return [AnswerCount]int{r.D1, r.D2, r.D3, r.D4, r.D5, r.D6, r.D7, r.D8}
}
