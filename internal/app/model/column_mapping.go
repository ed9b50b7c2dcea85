package model

import (
	"time"

	"github.com/lib/pq"
)

// ColumnMapping is a saved, reusable mapping from semantic field names to
// CSV header names, for operators whose exports never auto-detect.
// Headers is the header list the mapping was built against, stored as a
// Postgres text[] (this model is not part of the SQLite test schema).
type ColumnMapping struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	MappingName string         `gorm:"not null" json:"mapping_name"`
	Platform    Platform       `gorm:"type:varchar(20);not null;default:'custom'" json:"platform"`
	Columns     JSONMap        `gorm:"type:text;not null" json:"columns"`
	Headers     pq.StringArray `gorm:"type:text[]" json:"headers"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ColumnMapping) TableName() string {
	return "column_mappings"
}
