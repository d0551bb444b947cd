package models

import "gorm.io/gorm"

// Course groups every sub-resource family (assignments, activities,
// announcements, discussions, syllabus modules) under one owning teacher.
type Course struct {
	gorm.Model
	TeacherID   uint   `json:"teacher_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// Enrollment links a student to a course. One row per (student, course).
type Enrollment struct {
	gorm.Model
	StudentID uint    `json:"student_id" gorm:"index;not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID  uint    `json:"course_id" gorm:"index;not null;uniqueIndex:idx_enrollment_student_course"`
	IsDeleted bool    `json:"-" gorm:"default:false"`
	Student   Student `json:"student" gorm:"foreignKey:StudentID"`
	Course    Course  `json:"course" gorm:"foreignKey:CourseID"`
}
