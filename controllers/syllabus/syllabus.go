package syllabusController

import (
	"context"
	"errors"
	"log"

	"classroom/access"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SyllabusController struct {
	DB    *gorm.DB
	Store storage.Store
	Gate  *access.Gate
}

func NewSyllabusController(db *gorm.DB, store storage.Store, gate *access.Gate) *SyllabusController {
	return &SyllabusController{DB: db, Store: store, Gate: gate}
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

// ownedModule loads a module and verifies the caller owns its course.
func (ctl *SyllabusController) ownedModule(userId uint, moduleID int) (*models.SyllabusModule, error) {
	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return nil, err
	}

	var module models.SyllabusModule
	if err := ctl.DB.First(&module, moduleID).Error; err != nil {
		return nil, err
	}

	if _, err := ctl.Gate.OwnsCourse(teacher, module.CourseID); err != nil {
		return nil, err
	}
	return &module, nil
}

// CreateModule adds a numbered syllabus module to a course
func (ctl *SyllabusController) CreateModule(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedModule").(*struct {
		ModuleNumber *int   `json:"moduleNumber"`
		Title        string `json:"title"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module := models.SyllabusModule{
		CourseID:     course.ID,
		ModuleNumber: *reqData.ModuleNumber,
		Title:        reqData.Title,
	}

	if err := ctl.DB.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// ListModules returns the course syllabus to the owner or enrolled students
func (ctl *SyllabusController) ListModules(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

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

	var modules []models.SyllabusModule
	if err := ctl.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("course_id = ?", course.ID).Order("module_number asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch syllabus!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Syllabus fetched successfully!", fiber.Map{
		"modules": modules,
		"total":   len(modules),
	})
}

// UpdateModule renames or renumbers a module
func (ctl *SyllabusController) UpdateModule(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	module, err := ctl.ownedModule(userId, moduleID)
	if err != nil {
		return gateError(c, err, "Module not found!")
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		ModuleNumber *int   `json:"moduleNumber"`
		Title        string `json:"title"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.ModuleNumber != nil {
		module.ModuleNumber = *reqData.ModuleNumber
	}
	if reqData.Title != "" {
		module.Title = reqData.Title
	}

	if err := ctl.DB.Save(module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule removes a module and its items, attempting the blob delete
// for every file-backed item first.
func (ctl *SyllabusController) DeleteModule(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	module, err := ctl.ownedModule(userId, moduleID)
	if err != nil {
		return gateError(c, err, "Module not found!")
	}

	var items []models.SyllabusItem
	ctl.DB.Where("module_id = ?", module.ID).Find(&items)

	ctx := context.Background()
	for _, item := range items {
		if !item.OwnsBlob() {
			continue
		}
		if err := ctl.Store.Delete(ctx, item.StorageKey); err != nil {
			log.Printf("[SYLLABUS] Blob delete failed for %s: %v", item.StorageKey, err)
		}
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if err := uow.Tx.Unscoped().Where("module_id = ?", module.ID).Delete(&models.SyllabusItem{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	if err := uow.Tx.Unscoped().Delete(&models.SyllabusModule{}, module.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[SYLLABUS] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// AddItem appends one content item to a module. File and uploaded video
// items go through the blob store under the unit of work.
func (ctl *SyllabusController) AddItem(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	moduleID := c.Locals("moduleID").(int)

	module, err := ctl.ownedModule(userId, moduleID)
	if err != nil {
		return gateError(c, err, "Module not found!")
	}

	reqData, ok := c.Locals("validatedItem").(*struct {
		ItemType    string
		Title       string
		URL         string
		TextContent string
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next position
	var maxPosition int
	ctl.DB.Model(&models.SyllabusItem{}).Where("module_id = ?", module.ID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPosition)

	item := models.SyllabusItem{
		ModuleID: module.ID,
		ItemType: reqData.ItemType,
		Title:    reqData.Title,
		Position: maxPosition + 1,
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	ctx := context.Background()
	switch reqData.ItemType {
	case models.SyllabusItemFile:
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Item file is required!", nil)
		}
		obj, err := ctl.Store.Upload(ctx, fileHeader, "syllabus")
		if err != nil {
			log.Printf("[SYLLABUS] Item upload failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload file!", nil)
		}
		key := obj.Key
		uow.Compensate(func() {
			if err := ctl.Store.Delete(ctx, key); err != nil {
				log.Printf("[SYLLABUS] Compensation delete failed for %s: %v", key, err)
			}
		})
		item.URL = obj.URL
		item.StorageKey = obj.Key
	case models.SyllabusItemVideo:
		if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
			obj, err := ctl.Store.Upload(ctx, fileHeader, "syllabus")
			if err != nil {
				log.Printf("[SYLLABUS] Item upload failed: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload file!", nil)
			}
			key := obj.Key
			uow.Compensate(func() {
				if err := ctl.Store.Delete(ctx, key); err != nil {
					log.Printf("[SYLLABUS] Compensation delete failed for %s: %v", key, err)
				}
			})
			item.URL = obj.URL
			item.StorageKey = obj.Key
		} else {
			item.URL = reqData.URL
		}
	case models.SyllabusItemLink:
		item.URL = reqData.URL
	case models.SyllabusItemText:
		item.TextContent = reqData.TextContent
	}

	if err := uow.Tx.Create(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add item!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[SYLLABUS] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add item!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Item added successfully!", item)
}

// RemoveItem deletes one item, with a best-effort blob delete for
// file-backed kinds.
func (ctl *SyllabusController) RemoveItem(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	itemID := c.Locals("itemID").(int)

	var item models.SyllabusItem
	if err := ctl.DB.First(&item, itemID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Item not found!", nil)
	}

	if _, err := ctl.ownedModule(userId, int(item.ModuleID)); err != nil {
		return gateError(c, err, "Module not found!")
	}

	if item.OwnsBlob() {
		if err := ctl.Store.Delete(context.Background(), item.StorageKey); err != nil {
			log.Printf("[SYLLABUS] Blob delete failed for %s: %v", item.StorageKey, err)
		}
	}

	if err := ctl.DB.Unscoped().Delete(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove item!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Item removed successfully!", nil)
}
