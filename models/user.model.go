package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

type User struct {
	gorm.Model
	ProfileImage string    `json:"profile_image" gorm:"default:''"`
	Name         string    `json:"name" gorm:"default:''"`
	Email        string    `json:"email" gorm:"unique;not null"`
	Role         string    `json:"role" gorm:"default:'STUDENT'"` // TEACHER, STUDENT
	Password     string    `json:"-" gorm:"not null"`
	LastLogin    time.Time `json:"last_login" gorm:"default:NULL"`
	IsDeleted    bool      `json:"-" gorm:"default:false"`
}

// Teacher is the role profile resolved for teacher-gated operations.
type Teacher struct {
	gorm.Model
	UserID    uint `json:"user_id" gorm:"uniqueIndex;not null"`
	IsDeleted bool `json:"-" gorm:"default:false"`
}

// Student is the role profile resolved for student-gated operations. The
// enrolled-course list lives in Enrollment rows keyed by StudentID.
type Student struct {
	gorm.Model
	UserID    uint `json:"user_id" gorm:"uniqueIndex;not null"`
	IsDeleted bool `json:"-" gorm:"default:false"`
	User      User `json:"user" gorm:"foreignKey:UserID"`
}
