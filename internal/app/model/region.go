package model

import "time"

// Region groups locations geographically. Created lazily during import,
// never deleted by the import core.
type Region struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"not null;index:idx_regions_user_normalized,unique" json:"user_id"`

	Name string `gorm:"not null" json:"name"`
	// NormalizedName is the lowercased, alphanumeric-only form of Name.
	// Unique per account.
	NormalizedName string `gorm:"not null;index:idx_regions_user_normalized,unique" json:"normalized_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Region) TableName() string {
	return "regions"
}
