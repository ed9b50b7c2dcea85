package model

import "time"

// Machine is a single vending unit. SerialNumber is its identity key,
// unique per account. LocationID is nullable ("unassigned").
type Machine struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_machines_user_serial,unique" json:"user_id"`
	LocationID *uint     `gorm:"index" json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"location,omitempty"`

	SerialNumber string `gorm:"not null;index:idx_machines_user_serial,unique" json:"serial_number"`
	AssetNumber  string `gorm:"type:varchar(100)" json:"asset_number"`
	Make         string `gorm:"type:varchar(100)" json:"make"`
	Model        string `gorm:"type:varchar(100)" json:"model"`
	ProductType  string `gorm:"type:varchar(100)" json:"product_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Machine) TableName() string {
	return "machines"
}
