package utils

import (
	"log"
	"time"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"classroom/models"
)

// StartReminderScheduler sets up the daily due-date reminder sweep.
func StartReminderScheduler(db *gorm.DB, mailer *Mailer) {
	log.Println("[REMINDER-SCHEDULER] Initializing due-date reminder scheduler...")

	c := cron.New()

	// Run daily at 7 AM to remind students about upcoming deadlines
	c.AddFunc("0 7 * * *", func() {
		log.Println("[REMINDER-SCHEDULER] Running daily due-date check...")
		ProcessDueReminders(db, mailer)
	})

	c.Start()
	log.Println("[REMINDER-SCHEDULER] Reminder scheduler started - runs daily at 7 AM")
}

// ProcessDueReminders mails every enrolled student who has not submitted to an
// active submittable due between now and the end of tomorrow. Each submittable
// is reminded at most once.
func ProcessDueReminders(db *gorm.DB, mailer *Mailer) {
	windowStart := time.Now()
	windowEnd := now.With(windowStart.AddDate(0, 0, 1)).EndOfDay()

	var dueSoon []models.Submittable
	if err := db.
		Where("is_active = true AND reminder_sent = false").
		Where("due_date BETWEEN ? AND ?", windowStart, windowEnd).
		Find(&dueSoon).Error; err != nil {
		log.Printf("[REMINDER-SCHEDULER] Error fetching due submittables: %v", err)
		return
	}

	log.Printf("[REMINDER-SCHEDULER] Found %d submittables due before %s", len(dueSoon), windowEnd.Format(time.RFC3339))

	for _, sub := range dueSoon {
		var enrollments []models.Enrollment
		if err := db.Where("course_id = ?", sub.CourseID).
			Preload("Student.User").
			Find(&enrollments).Error; err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error fetching enrollments for course %d: %v", sub.CourseID, err)
			continue
		}

		var submittedIDs []uint
		if err := db.Model(&models.Submission{}).
			Where("submittable_id = ?", sub.ID).
			Pluck("student_id", &submittedIDs).Error; err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error fetching submissions for submittable %d: %v", sub.ID, err)
			continue
		}
		submitted := make(map[uint]bool, len(submittedIDs))
		for _, id := range submittedIDs {
			submitted[id] = true
		}

		reminded := 0
		for _, enrollment := range enrollments {
			if submitted[enrollment.StudentID] {
				continue
			}
			user := enrollment.Student.User
			if err := mailer.SendDueReminder(user.Email, user.Name, sub.Title, sub.DueDate); err != nil {
				log.Printf("[REMINDER-SCHEDULER] Reminder to %s failed: %v", user.Email, err)
				continue
			}
			reminded++
		}

		db.Model(&sub).Update("reminder_sent", true)
		log.Printf("[REMINDER-SCHEDULER] Sent %d reminders for %q (id=%d)", reminded, sub.Title, sub.ID)
	}
}
