package announcementController

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"classroom/access"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnnouncementController struct {
	DB    *gorm.DB
	Store storage.Store
	Gate  *access.Gate
}

func NewAnnouncementController(db *gorm.DB, store storage.Store, gate *access.Gate) *AnnouncementController {
	return &AnnouncementController{DB: db, Store: store, Gate: gate}
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

// Create publishes a new announcement, optionally with an image. The
// announcement.published event commits in the same transaction.
func (ctl *AnnouncementController) Create(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedAnnouncement").(*struct {
		Title   string
		Content string
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	announcement := models.Announcement{
		CourseID:    course.ID,
		TeacherID:   teacher.ID,
		Title:       reqData.Title,
		Content:     reqData.Content,
		PublishedAt: time.Now(),
		IsActive:    true,
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	ctx := context.Background()
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		obj, err := ctl.Store.Upload(ctx, fileHeader, "announcements")
		if err != nil {
			log.Printf("[ANNOUNCEMENT] Image upload failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload image!", nil)
		}
		key := obj.Key
		uow.Compensate(func() {
			if err := ctl.Store.Delete(ctx, key); err != nil {
				log.Printf("[ANNOUNCEMENT] Compensation delete failed for %s: %v", key, err)
			}
		})
		announcement.ImageURL = obj.URL
		announcement.ImageKey = obj.Key
	}

	if err := uow.Tx.Create(&announcement).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create announcement!", nil)
	}

	payload, err := json.Marshal(fiber.Map{
		"announcement_id": announcement.ID,
		"course_id":       announcement.CourseID,
		"title":           announcement.Title,
		"published_at":    announcement.PublishedAt,
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create announcement!", nil)
	}
	event := models.OutboxEvent{
		EventType: models.EventAnnouncementPublished,
		Payload:   datatypes.JSON(payload),
	}
	if err := uow.Tx.Create(&event).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create announcement!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ANNOUNCEMENT] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create announcement!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Announcement created successfully!", announcement)
}

// List returns a course's announcements. The owner sees everything,
// enrolled students only active ones.
func (ctl *AnnouncementController) List(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	isOwner := false
	if teacher, err := ctl.Gate.Teacher(userId); err == nil && course.TeacherID == teacher.ID {
		isOwner = true
	} else if student, err := ctl.Gate.Student(userId); err == nil {
		if err := ctl.Gate.EnrolledIn(student, course.ID); err != nil {
			return gateError(c, err, "Course not found!")
		}
	} else {
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

	db := ctl.DB.Model(&models.Announcement{}).Where("course_id = ?", course.ID)
	if !isOwner {
		db = db.Where("is_active = ?", true)
	}

	var total int64
	db.Count(&total)

	var announcements []models.Announcement
	if err := db.Offset(offset).Limit(limit).Order("published_at desc").Find(&announcements).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch announcements!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcements fetched successfully!", fiber.Map{
		"announcements": announcements,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Get returns one announcement to the course owner or an enrolled student
func (ctl *AnnouncementController) Get(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	announcementID := c.Locals("announcementID").(int)

	var announcement models.Announcement
	if err := ctl.DB.First(&announcement, announcementID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Announcement not found!", nil)
	}

	isOwner := false
	if teacher, err := ctl.Gate.Teacher(userId); err == nil {
		if _, err := ctl.Gate.OwnsCourse(teacher, announcement.CourseID); err == nil {
			isOwner = true
		}
	}
	if !isOwner {
		student, err := ctl.Gate.Student(userId)
		if err != nil {
			return gateError(c, err, "Announcement not found!")
		}
		if err := ctl.Gate.EnrolledIn(student, announcement.CourseID); err != nil {
			return gateError(c, err, "Announcement not found!")
		}
		if !announcement.IsActive {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Announcement not found!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcement fetched successfully!", announcement)
}

// Update edits an announcement. A replacement image is uploaded under the
// unit of work; the old image is removed only after the commit.
func (ctl *AnnouncementController) Update(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Announcement not found!")
	}

	announcementID := c.Locals("announcementID").(int)

	var announcement models.Announcement
	if err := ctl.DB.First(&announcement, announcementID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Announcement not found!", nil)
	}

	if _, err := ctl.Gate.OwnsCourse(teacher, announcement.CourseID); err != nil {
		return gateError(c, err, "Announcement not found!")
	}

	reqData, ok := c.Locals("validatedAnnouncementUpdate").(*struct {
		Title   string
		Content string
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		announcement.Title = reqData.Title
	}
	if reqData.Content != "" {
		announcement.Content = reqData.Content
	}
	switch c.FormValue("isActive") {
	case "true":
		announcement.IsActive = true
	case "false":
		announcement.IsActive = false
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	ctx := context.Background()
	oldKey := ""
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		obj, err := ctl.Store.Upload(ctx, fileHeader, "announcements")
		if err != nil {
			log.Printf("[ANNOUNCEMENT] Image upload failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload image!", nil)
		}
		key := obj.Key
		uow.Compensate(func() {
			if err := ctl.Store.Delete(ctx, key); err != nil {
				log.Printf("[ANNOUNCEMENT] Compensation delete failed for %s: %v", key, err)
			}
		})
		oldKey = announcement.ImageKey
		announcement.ImageURL = obj.URL
		announcement.ImageKey = obj.Key
	}

	if err := uow.Tx.Save(&announcement).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update announcement!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ANNOUNCEMENT] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update announcement!", nil)
	}

	// The replaced image goes away only after the commit
	if oldKey != "" && oldKey != announcement.ImageKey {
		if err := ctl.Store.Delete(ctx, oldKey); err != nil {
			log.Printf("[ANNOUNCEMENT] Blob delete failed for %s: %v", oldKey, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcement updated successfully!", announcement)
}

// Delete removes an announcement, attempting the image blob delete first
func (ctl *AnnouncementController) Delete(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Announcement not found!")
	}

	announcementID := c.Locals("announcementID").(int)

	var announcement models.Announcement
	if err := ctl.DB.First(&announcement, announcementID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Announcement not found!", nil)
	}

	if _, err := ctl.Gate.OwnsCourse(teacher, announcement.CourseID); err != nil {
		return gateError(c, err, "Announcement not found!")
	}

	if announcement.ImageKey != "" {
		if err := ctl.Store.Delete(context.Background(), announcement.ImageKey); err != nil {
			log.Printf("[ANNOUNCEMENT] Blob delete failed for %s: %v", announcement.ImageKey, err)
		}
	}

	if err := ctl.DB.Unscoped().Delete(&announcement).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete announcement!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcement deleted successfully!", nil)
}
