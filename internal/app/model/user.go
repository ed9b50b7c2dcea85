package model

import (
	"time"

	"gorm.io/gorm"
)

// User is an operator account. All vending entities hang off a user id;
// uniqueness constraints downstream are always scoped to it.
type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Dashboard profile
	BusinessName string `gorm:"type:varchar(255)" json:"business_name"`
	CompanyName  string `gorm:"type:varchar(255)" json:"company_name"`
	Timezone     string `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`

	// Flipped after the first completed import
	OnboardingCompleted bool `gorm:"default:false" json:"onboarding_completed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
