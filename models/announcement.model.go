package models

import (
	"time"

	"gorm.io/gorm"
)

// Announcement is a course-scoped notice with an optional single image.
type Announcement struct {
	gorm.Model
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	TeacherID   uint      `json:"teacher_id" gorm:"index;not null"`
	Title       string    `json:"title"`
	Content     string    `json:"content" gorm:"type:text"`
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	ImageKey    string    `json:"-" gorm:"size:512"`
	PublishedAt time.Time `json:"published_at"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
}
