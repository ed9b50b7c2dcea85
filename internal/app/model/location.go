package model

import "time"

// Location is a site where machines are placed. RegionID is nullable:
// "no region" is a valid state, not a broken reference.
type Location struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	UserID   uint    `gorm:"not null;index:idx_locations_user_normalized,unique" json:"user_id"`
	RegionID *uint   `gorm:"index" json:"region_id"`
	Region   *Region `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"region,omitempty"`

	Name           string `gorm:"not null" json:"name"`
	NormalizedName string `gorm:"not null;index:idx_locations_user_normalized,unique" json:"normalized_name"`

	LocationType string `gorm:"type:varchar(100)" json:"location_type"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(50)" json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}
