package model

import "time"

type Platform string       // source CSV format
type UploadStatus string   // upload job lifecycle state

const (
	PlatformCantaloupe Platform = "cantaloupe"
	PlatformNayax      Platform = "nayax"
	PlatformPayRange   Platform = "payrange"
	PlatformCustom     Platform = "custom"

	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// CsvUpload tracks one import job. Created "processing" before the
// import starts, finalized to "completed" or "failed" when the batch
// ends, never revisited afterward.
type CsvUpload struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Filename string   `gorm:"not null" json:"filename"`
	Platform Platform `gorm:"type:varchar(20);not null;default:'custom'" json:"platform"`

	PeriodStart string `gorm:"type:varchar(10)" json:"period_start"`
	PeriodEnd   string `gorm:"type:varchar(10)" json:"period_end"`

	MappingID *uint        `gorm:"index" json:"mapping_id"`
	Status    UploadStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	TotalRows     int `gorm:"default:0" json:"total_rows"`
	ImportedRows  int `gorm:"default:0" json:"imported_rows"`
	DuplicateRows int `gorm:"default:0" json:"duplicate_rows"`

	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	// S3 object key of the archived raw file, if archiving succeeded
	ArchiveKey string `gorm:"type:varchar(255)" json:"archive_key,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (CsvUpload) TableName() string {
	return "csv_uploads"
}
