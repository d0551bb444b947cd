package models

import (
	"time"

	"gorm.io/gorm"
)

// SubmittableKind separates the two submittable families sharing one table.
type SubmittableKind string

const (
	KindAssignment SubmittableKind = "assignment"
	KindActivity   SubmittableKind = "activity"
)

const (
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// Submittable is an assignment- or activity-like entity accepting per-student
// submissions with optional grading.
type Submittable struct {
	gorm.Model
	Kind         SubmittableKind `json:"kind" gorm:"type:varchar(16);index;not null"`
	CourseID     uint            `json:"course_id" gorm:"index;not null"`
	TeacherID    uint            `json:"teacher_id" gorm:"index;not null"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DueDate      time.Time       `json:"due_date"`
	TotalPoints  uint            `json:"total_points" gorm:"default:100"`
	IsActive     bool            `json:"is_active" gorm:"default:true"` // false: closed, no new submissions
	ReminderSent bool            `json:"-" gorm:"default:false"`
	Attachments  []Attachment    `json:"attachments,omitempty" gorm:"foreignKey:SubmittableID"`
	Submissions  []Submission    `json:"submissions,omitempty" gorm:"foreignKey:SubmittableID"`
}

// IsPastDue returns true when the deadline has already passed at reference.
func (s Submittable) IsPastDue(reference time.Time) bool {
	return reference.After(s.DueDate)
}

// ValidGrade reports whether grade is inside [0, TotalPoints].
func (s Submittable) ValidGrade(grade float64) bool {
	return grade >= 0 && grade <= float64(s.TotalPoints)
}

// Attachment is a stored file owned by exactly one submittable.
type Attachment struct {
	gorm.Model
	SubmittableID uint   `json:"submittable_id" gorm:"index;not null"`
	Name          string `json:"name"`
	URL           string `json:"url" gorm:"size:512"`
	StorageKey    string `json:"-" gorm:"size:512"`
	Position      int    `json:"position" gorm:"default:0"`
}

// Submission is a file submitted by a student. At most one row exists per
// (submittable, student); re-submission updates in place.
type Submission struct {
	gorm.Model
	SubmittableID uint       `json:"submittable_id" gorm:"not null;uniqueIndex:idx_submission_per_student"`
	StudentID     uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_submission_per_student"`
	FileURL       string     `json:"file_url" gorm:"size:512"`
	StorageKey    string     `json:"-" gorm:"size:512"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	IsLate        bool       `json:"is_late" gorm:"default:false"`
	Status        string     `json:"status" gorm:"size:32;default:'submitted'"` // submitted, graded
	Grade         *float64   `json:"grade"`
	Feedback      string     `json:"feedback" gorm:"type:text"`
	GradedAt      *time.Time `json:"graded_at"`
	Student       Student    `json:"student" gorm:"foreignKey:StudentID"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// LateFor reports whether a submission at submittedAt is late for dueDate.
// Strictly after is late; exactly at the deadline is on time.
func LateFor(submittedAt, dueDate time.Time) bool {
	return submittedAt.After(dueDate)
}
