package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/jinzhu/now"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"classroom/models"
)

func newReminderDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:rem_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.Submittable{},
		&models.Submission{},
	))
	return db
}

func seedReminderStudent(t *testing.T, db *gorm.DB, courseID uint, name, email string) models.Student {
	t.Helper()
	user := models.User{Name: name, Email: email, Role: models.RoleStudent, Password: "hash"}
	require.NoError(t, db.Create(&user).Error)
	student := models.Student{UserID: user.ID}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: courseID}).Error)
	return student
}

func seedDueSubmittable(t *testing.T, db *gorm.DB, courseID uint, title string, due time.Time, active, reminded bool) models.Submittable {
	t.Helper()
	sub := models.Submittable{
		Kind:         models.KindAssignment,
		CourseID:     courseID,
		TeacherID:    1,
		Title:        title,
		DueDate:      due,
		TotalPoints:  100,
		IsActive:     true,
		ReminderSent: reminded,
	}
	require.NoError(t, db.Create(&sub).Error)
	// gorm skips zero-value fields carrying a column default on insert, so a
	// closed submittable has to be flipped after the create.
	if !active {
		require.NoError(t, db.Model(&sub).Update("is_active", false).Error)
	}
	return sub
}

func reminderSent(t *testing.T, db *gorm.DB, id uint) bool {
	t.Helper()
	var sub models.Submittable
	require.NoError(t, db.First(&sub, id).Error)
	return sub.ReminderSent
}

func TestProcessDueRemindersFlagsOnlyDueActiveOnes(t *testing.T) {
	db := newReminderDB(t)
	course := models.Course{TeacherID: 1, Title: "Biology"}
	require.NoError(t, db.Create(&course).Error)
	seedReminderStudent(t, db, course.ID, "Asha", "asha@classroom.dev")

	dueSoon := seedDueSubmittable(t, db, course.ID, "Lab Report", time.Now().Add(12*time.Hour), true, false)
	farOff := seedDueSubmittable(t, db, course.ID, "Final Essay", time.Now().AddDate(0, 0, 7), true, false)
	closed := seedDueSubmittable(t, db, course.ID, "Closed Quiz", time.Now().Add(12*time.Hour), false, false)
	alreadyReminded := seedDueSubmittable(t, db, course.ID, "Old Quiz", time.Now().Add(12*time.Hour), true, true)
	overdue := seedDueSubmittable(t, db, course.ID, "Late Lab", time.Now().Add(-time.Hour), true, false)

	ProcessDueReminders(db, NewMailer("", "no-reply@classroom.dev"))

	assert.True(t, reminderSent(t, db, dueSoon.ID))
	assert.False(t, reminderSent(t, db, farOff.ID))
	assert.False(t, reminderSent(t, db, closed.ID))
	assert.True(t, reminderSent(t, db, alreadyReminded.ID))
	assert.False(t, reminderSent(t, db, overdue.ID))
}

func TestProcessDueRemindersWindowEndsTomorrow(t *testing.T) {
	db := newReminderDB(t)
	course := models.Course{TeacherID: 1, Title: "Chemistry"}
	require.NoError(t, db.Create(&course).Error)

	tomorrowEnd := now.With(time.Now().AddDate(0, 0, 1)).EndOfDay()
	inside := seedDueSubmittable(t, db, course.ID, "Due Tomorrow Night", tomorrowEnd.Add(-time.Hour), true, false)
	outside := seedDueSubmittable(t, db, course.ID, "Due In Two Days", tomorrowEnd.Add(2*time.Hour), true, false)

	ProcessDueReminders(db, NewMailer("", "no-reply@classroom.dev"))

	assert.True(t, reminderSent(t, db, inside.ID))
	assert.False(t, reminderSent(t, db, outside.ID))
}

func TestProcessDueRemindersSkipsStudentsWhoSubmitted(t *testing.T) {
	db := newReminderDB(t)
	course := models.Course{TeacherID: 1, Title: "Physics"}
	require.NoError(t, db.Create(&course).Error)
	submitter := seedReminderStudent(t, db, course.ID, "Bina", "bina@classroom.dev")
	seedReminderStudent(t, db, course.ID, "Chen", "chen@classroom.dev")

	sub := seedDueSubmittable(t, db, course.ID, "Problem Set", time.Now().Add(6*time.Hour), true, false)
	require.NoError(t, db.Create(&models.Submission{
		SubmittableID: sub.ID,
		StudentID:     submitter.ID,
		FileURL:       "/files/problem-set.pdf",
		SubmittedAt:   time.Now(),
		Status:        models.SubmissionStatusSubmitted,
	}).Error)

	ProcessDueReminders(db, NewMailer("", "no-reply@classroom.dev"))

	assert.True(t, reminderSent(t, db, sub.ID))
}
