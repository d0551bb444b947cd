package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventAnnouncementPublished = "announcement.published"
	EventSubmissionGraded      = "submission.graded"
)

// OutboxEvent records a domain event in the same transaction as the write
// that produced it. Delivery to the configured webhook happens afterwards,
// best-effort, from the notifier sweep.
type OutboxEvent struct {
	gorm.Model
	EventType   string         `json:"event_type" gorm:"size:64;index;not null"`
	Payload     datatypes.JSON `json:"payload"`
	Delivered   bool           `json:"delivered" gorm:"index;default:false"`
	Attempts    int            `json:"attempts" gorm:"default:0"`
	DeliveredAt *time.Time     `json:"delivered_at"`
}
