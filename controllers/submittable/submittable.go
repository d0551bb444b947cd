package submittableController

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"classroom/access"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/storage"
	"classroom/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmittableController serves one submittable family. The same handler set
// is mounted once per kind; only the kind, the display label and the blob
// key prefix differ between mounts.
type SubmittableController struct {
	DB     *gorm.DB
	Store  storage.Store
	Gate   *access.Gate
	Mailer *utils.Mailer
	Kind   models.SubmittableKind
	Label  string
	Prefix string
}

func NewSubmittableController(db *gorm.DB, store storage.Store, gate *access.Gate, mailer *utils.Mailer, kind models.SubmittableKind, label, prefix string) *SubmittableController {
	return &SubmittableController{DB: db, Store: store, Gate: gate, Mailer: mailer, Kind: kind, Label: label, Prefix: prefix}
}

func gateError(c *fiber.Ctx, err error, notFound string) error {
	if errors.Is(err, access.ErrUnauthorized) || errors.Is(err, access.ErrForbidden) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, notFound, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// load fetches one row of this controller's kind.
func (ctl *SubmittableController) load(id int) (*models.Submittable, error) {
	var sub models.Submittable
	err := ctl.DB.Where("id = ? AND kind = ?", id, ctl.Kind).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new submittable with its attachment files. Files are
// uploaded inside the unit of work so an abort removes them again.
func (ctl *SubmittableController) Create(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
	}

	courseID := c.Locals("courseID").(int)

	course, err := ctl.Gate.OwnsCourse(teacher, uint(courseID))
	if err != nil {
		return gateError(c, err, "Course not found!")
	}

	reqData, ok := c.Locals("validatedSubmittable").(*struct {
		Title       string
		Description string
		DueDate     time.Time
		TotalPoints uint
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sub := models.Submittable{
		Kind:        ctl.Kind,
		CourseID:    course.ID,
		TeacherID:   teacher.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		DueDate:     reqData.DueDate,
		TotalPoints: reqData.TotalPoints,
		IsActive:    true,
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if err := uow.Tx.Create(&sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create "+strings.ToLower(ctl.Label)+"!", nil)
	}

	ctx := context.Background()
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for i, fileHeader := range form.File["attachments"] {
			obj, err := ctl.Store.Upload(ctx, fileHeader, ctl.Prefix)
			if err != nil {
				log.Printf("[%s] Attachment upload failed: %v", strings.ToUpper(ctl.Prefix), err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload attachment!", nil)
			}
			key := obj.Key
			uow.Compensate(func() {
				if err := ctl.Store.Delete(ctx, key); err != nil {
					log.Printf("[%s] Compensation delete failed for %s: %v", strings.ToUpper(ctl.Prefix), key, err)
				}
			})

			attachment := models.Attachment{
				SubmittableID: sub.ID,
				Name:          obj.Name,
				URL:           obj.URL,
				StorageKey:    obj.Key,
				Position:      i,
			}
			if err := uow.Tx.Create(&attachment).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save attachment!", nil)
			}
			sub.Attachments = append(sub.Attachments, attachment)
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[%s] Commit failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create "+strings.ToLower(ctl.Label)+"!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, ctl.Label+" created successfully!", sub)
}

// List returns the course's submittables of this kind to the owning teacher
// or an enrolled student
func (ctl *SubmittableController) List(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Owner teacher or enrolled student only
	allowed := false
	if teacher, err := ctl.Gate.Teacher(userId); err == nil && course.TeacherID == teacher.ID {
		allowed = true
	} else if student, err := ctl.Gate.Student(userId); err == nil {
		if err := ctl.Gate.EnrolledIn(student, course.ID); err == nil {
			allowed = true
		}
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	var items []models.Submittable
	var total int64

	db := ctl.DB.Model(&models.Submittable{}).Where("course_id = ? AND kind = ?", course.ID, ctl.Kind)
	db.Count(&total)

	if err := db.Preload("Attachments").Offset(offset).Limit(limit).Order("due_date asc").Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch "+strings.ToLower(ctl.Label)+"s!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+"s fetched successfully!", fiber.Map{
		strings.ToLower(ctl.Label) + "s": items,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Get returns one submittable with its attachments. The owning teacher sees
// every submission, a student only their own.
func (ctl *SubmittableController) Get(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submittableID := c.Locals("submittableID").(int)

	var sub models.Submittable
	if err := ctl.DB.Preload("Attachments").Where("id = ? AND kind = ?", submittableID, ctl.Kind).First(&sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}

	if teacher, err := ctl.Gate.Teacher(userId); err == nil && sub.TeacherID == teacher.ID {
		var submissions []models.Submission
		if err := ctl.DB.Preload("Student.User").Where("submittable_id = ?", sub.ID).Find(&submissions).Error; err == nil {
			sub.Submissions = submissions
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+" fetched successfully!", sub)
	}

	student, err := ctl.Gate.Student(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}
	if err := ctl.Gate.EnrolledIn(student, sub.CourseID); err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	var own models.Submission
	if err := ctl.DB.Where("submittable_id = ? AND student_id = ?", sub.ID, student.ID).First(&own).Error; err == nil {
		sub.Submissions = []models.Submission{own}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+" fetched successfully!", sub)
}

// Update edits fields or toggles IsActive on a submittable the teacher owns
func (ctl *SubmittableController) Update(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reqData, ok := c.Locals("validatedSubmittableUpdate").(*struct {
		Title       string
		Description string
		DueDate     *time.Time
		TotalPoints *uint
		IsActive    *bool
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		sub.Title = reqData.Title
	}
	if reqData.Description != "" {
		sub.Description = reqData.Description
	}
	if reqData.DueDate != nil {
		sub.DueDate = *reqData.DueDate
		sub.ReminderSent = false
	}
	if reqData.TotalPoints != nil {
		sub.TotalPoints = *reqData.TotalPoints
	}
	if reqData.IsActive != nil {
		sub.IsActive = *reqData.IsActive
	}

	if err := ctl.DB.Save(sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update "+strings.ToLower(ctl.Label)+"!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+" updated successfully!", sub)
}

// Delete removes a submittable with its attachments and submissions. Every
// owned blob gets one delete attempt first; storage failures are logged and
// never block the row removal.
func (ctl *SubmittableController) Delete(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var attachments []models.Attachment
	ctl.DB.Where("submittable_id = ?", sub.ID).Find(&attachments)

	var submissions []models.Submission
	ctl.DB.Where("submittable_id = ?", sub.ID).Find(&submissions)

	// One delete attempt per owned blob, outcome ignored
	ctx := context.Background()
	for _, attachment := range attachments {
		if err := ctl.Store.Delete(ctx, attachment.StorageKey); err != nil {
			log.Printf("[%s] Blob delete failed for %s: %v", strings.ToUpper(ctl.Prefix), attachment.StorageKey, err)
		}
	}
	for _, submission := range submissions {
		if err := ctl.Store.Delete(ctx, submission.StorageKey); err != nil {
			log.Printf("[%s] Blob delete failed for %s: %v", strings.ToUpper(ctl.Prefix), submission.StorageKey, err)
		}
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if err := uow.Tx.Unscoped().Where("submittable_id = ?", sub.ID).Delete(&models.Submission{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete "+strings.ToLower(ctl.Label)+"!", nil)
	}
	if err := uow.Tx.Unscoped().Where("submittable_id = ?", sub.ID).Delete(&models.Attachment{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete "+strings.ToLower(ctl.Label)+"!", nil)
	}
	if err := uow.Tx.Unscoped().Delete(&models.Submittable{}, sub.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete "+strings.ToLower(ctl.Label)+"!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[%s] Commit failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete "+strings.ToLower(ctl.Label)+"!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+" deleted successfully!", nil)
}

// AddAttachment uploads one more file onto an existing submittable
func (ctl *SubmittableController) AddAttachment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Attachment file is required!", nil)
	}

	// Get the next position
	var maxPosition int
	ctl.DB.Model(&models.Attachment{}).Where("submittable_id = ?", sub.ID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPosition)

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	ctx := context.Background()
	obj, err := ctl.Store.Upload(ctx, fileHeader, ctl.Prefix)
	if err != nil {
		log.Printf("[%s] Attachment upload failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload attachment!", nil)
	}
	key := obj.Key
	uow.Compensate(func() {
		if err := ctl.Store.Delete(ctx, key); err != nil {
			log.Printf("[%s] Compensation delete failed for %s: %v", strings.ToUpper(ctl.Prefix), key, err)
		}
	})

	attachment := models.Attachment{
		SubmittableID: sub.ID,
		Name:          obj.Name,
		URL:           obj.URL,
		StorageKey:    obj.Key,
		Position:      maxPosition + 1,
	}
	if err := uow.Tx.Create(&attachment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save attachment!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[%s] Commit failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save attachment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attachment added successfully!", attachment)
}

// RemoveAttachment deletes one attachment blob (best-effort) and its row
func (ctl *SubmittableController) RemoveAttachment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)
	attachmentID := c.Locals("attachmentID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var attachment models.Attachment
	if err := ctl.DB.Where("id = ? AND submittable_id = ?", attachmentID, sub.ID).First(&attachment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attachment not found!", nil)
	}

	if err := ctl.Store.Delete(context.Background(), attachment.StorageKey); err != nil {
		log.Printf("[%s] Blob delete failed for %s: %v", strings.ToUpper(ctl.Prefix), attachment.StorageKey, err)
	}

	if err := ctl.DB.Unscoped().Delete(&attachment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove attachment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attachment removed successfully!", nil)
}

// Submit stores an enrolled student's file for this submittable. At most one
// submission row exists per student; re-submission replaces the file and
// resets any grade.
func (ctl *SubmittableController) Submit(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	student, err := ctl.Gate.Student(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}

	// Authorization runs before any write or upload
	if err := ctl.Gate.EnrolledIn(student, sub.CourseID); err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	if !sub.IsActive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This "+strings.ToLower(ctl.Label)+" is closed for submissions!", nil)
	}

	fileHeader, err := c.FormFile("submissionFile")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submission file is required!", nil)
	}

	var existing models.Submission
	hasExisting := ctl.DB.Where("submittable_id = ? AND student_id = ?", sub.ID, student.ID).First(&existing).Error == nil

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	ctx := context.Background()
	obj, err := ctl.Store.Upload(ctx, fileHeader, ctl.Prefix+"/submissions")
	if err != nil {
		log.Printf("[%s] Submission upload failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload submission!", nil)
	}
	key := obj.Key
	uow.Compensate(func() {
		if err := ctl.Store.Delete(ctx, key); err != nil {
			log.Printf("[%s] Compensation delete failed for %s: %v", strings.ToUpper(ctl.Prefix), key, err)
		}
	})

	submittedAt := time.Now()
	isLate := models.LateFor(submittedAt, sub.DueDate)

	var submission models.Submission
	oldKey := ""
	if hasExisting {
		// Last write wins: replace the file, reset grading state
		oldKey = existing.StorageKey
		existing.FileURL = obj.URL
		existing.StorageKey = obj.Key
		existing.SubmittedAt = submittedAt
		existing.IsLate = isLate
		existing.Status = models.SubmissionStatusSubmitted
		existing.Grade = nil
		existing.Feedback = ""
		existing.GradedAt = nil
		if err := uow.Tx.Save(&existing).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save submission!", nil)
		}
		submission = existing
	} else {
		submission = models.Submission{
			SubmittableID: sub.ID,
			StudentID:     student.ID,
			FileURL:       obj.URL,
			StorageKey:    obj.Key,
			SubmittedAt:   submittedAt,
			IsLate:        isLate,
			Status:        models.SubmissionStatusSubmitted,
		}
		if err := uow.Tx.Create(&submission).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save submission!", nil)
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[%s] Commit failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save submission!", nil)
	}

	// The replaced file goes away only after the new row is committed
	if oldKey != "" && oldKey != submission.StorageKey {
		if err := ctl.Store.Delete(ctx, oldKey); err != nil {
			log.Printf("[%s] Blob delete failed for %s: %v", strings.ToUpper(ctl.Prefix), oldKey, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, ctl.Label+" submitted successfully!", submission)
}

// Grade records the teacher's evaluation of one submission and queues a
// submission.graded event in the same transaction.
func (ctl *SubmittableController) Grade(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)
	submissionID := c.Locals("submissionID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var submission models.Submission
	if err := ctl.DB.Where("id = ? AND submittable_id = ?", submissionID, sub.ID).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	reqData, ok := c.Locals("validatedGrade").(*struct {
		Grade    *float64 `json:"grade"`
		Feedback string   `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Bounds are checked before anything is written
	if !sub.ValidGrade(*reqData.Grade) {
		message := fmt.Sprintf("Grade must be between 0 and %d!", sub.TotalPoints)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, message, nil)
	}

	now := time.Now()
	submission.Grade = reqData.Grade
	submission.Feedback = reqData.Feedback
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &now

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if err := uow.Tx.Save(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	payload, err := json.Marshal(fiber.Map{
		"submission_id": submission.ID,
		"kind":          ctl.Kind,
		"title":         sub.Title,
		"student_id":    submission.StudentID,
		"grade":         *reqData.Grade,
		"total_points":  sub.TotalPoints,
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}
	event := models.OutboxEvent{
		EventType: models.EventSubmissionGraded,
		Payload:   datatypes.JSON(payload),
	}
	if err := uow.Tx.Create(&event).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[%s] Commit failed: %v", strings.ToUpper(ctl.Prefix), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	// Best-effort notification, never blocks the response
	go func(studentID uint, title string, grade float64, total uint) {
		var gradedStudent models.Student
		if err := ctl.DB.Preload("User").First(&gradedStudent, studentID).Error; err != nil {
			log.Printf("[%s] Student lookup for grade mail failed: %v", strings.ToUpper(ctl.Prefix), err)
			return
		}
		if err := ctl.Mailer.SendGradeNotification(gradedStudent.User.Email, gradedStudent.User.Name, title, grade, total); err != nil {
			log.Printf("[%s] Grade mail failed: %v", strings.ToUpper(ctl.Prefix), err)
		}
	}(submission.StudentID, sub.Title, *reqData.Grade, sub.TotalPoints)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", submission)
}

// Submissions lists every submission for a submittable the teacher owns
func (ctl *SubmittableController) Submissions(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, ctl.Label+" not found!")
	}

	submittableID := c.Locals("submittableID").(int)

	sub, err := ctl.load(submittableID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, ctl.Label+" not found!", nil)
	}
	if sub.TeacherID != teacher.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var submissions []models.Submission
	if err := ctl.DB.Preload("Student.User").Where("submittable_id = ?", sub.ID).
		Order("submitted_at asc").Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"submissions": submissions,
		"total":       len(submissions),
	})
}
