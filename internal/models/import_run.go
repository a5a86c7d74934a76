package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportRunStatus is the outcome of one importer run
type ImportRunStatus string

const (
	ImportRunRunning             ImportRunStatus = "running"
	ImportRunCompleted           ImportRunStatus = "completed"
	ImportRunCompletedWithErrors ImportRunStatus = "completed_with_errors"
	ImportRunFailed              ImportRunStatus = "failed"
)

// ImportRun records the history of importer runs
type ImportRun struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FilePath     string          `gorm:"type:varchar(512);not null" json:"filePath"`
	Status       ImportRunStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	CreatedCount int             `gorm:"not null;default:0" json:"createdCount"`
	SkippedCount int             `gorm:"not null;default:0" json:"skippedCount"`
	FailedCount  int             `gorm:"not null;default:0" json:"failedCount"`
	Errors       datatypes.JSON  `json:"errors,omitempty"`
	Message      string          `gorm:"type:text" json:"message"`
	StartedAt    time.Time       `gorm:"not null;index" json:"startedAt"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
}

// TableName returns the table name for ImportRun
func (ImportRun) TableName() string {
	return "import_runs"
}

// BeforeCreate assigns the run id
func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return nil
}
