package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin       = "admin"
	RoleGroupLead   = "groupLead"
	RoleFacilitator = "trainedFacilitator"
)

type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Email          string         `json:"email" gorm:"uniqueIndex;not null"`
	HashedPassword string         `json:"-" gorm:"not null"`
	Role           string         `json:"role" gorm:"not null;default:'groupLead'"` // admin, groupLead, trainedFacilitator
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Organization   string         `json:"organization"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Groups []Group `json:"groups,omitempty" gorm:"foreignKey:UserID"`
}
