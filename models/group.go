package models

import (
	"time"

	"gorm.io/gorm"
)

// Poll slots a group can run
const (
	SlotStart = "start"
	SlotEnd   = "end"
)

type Group struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"user_id" gorm:"not null"`
	CreatorRole      string         `json:"creator_role" gorm:"not null"` // admin, groupLead, trainedFacilitator
	CreatorShortName string         `json:"creator_short_name"`
	Name             string         `json:"name"`
	Season           string         `json:"season"`       // only for generated facilitator group names
	Year             string         `json:"year"`         // only for generated facilitator group names
	Organization     string         `json:"organization"` // only for generated facilitator group names
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	// Poll slot state. A code stays set after its poll closes; it is only
	// replaced on the next open.
	StartPollCode              *string    `json:"start_poll_code" gorm:"index"`
	EndPollCode                *string    `json:"end_poll_code" gorm:"index"`
	StartPollInitiated         bool       `json:"start_poll_initiated" gorm:"not null;default:false"`
	EndPollInitiated           bool       `json:"end_poll_initiated" gorm:"not null;default:false"`
	StartPollDate              *time.Time `json:"start_poll_date"`
	EndPollDate                *time.Time `json:"end_poll_date"`
	StartPollReadyParticipants []string   `json:"start_poll_ready_participants" gorm:"serializer:json"`
	EndPollReadyParticipants   []string   `json:"end_poll_ready_participants" gorm:"serializer:json"`

	// Relationships
	User User `json:"user,omitempty"`
}
