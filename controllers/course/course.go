package controllers

import (
	"errors"

	"classroom/access"
	"classroom/middleware"
	"classroom/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CourseController struct {
	DB   *gorm.DB
	Gate *access.Gate
}

func NewCourseController(db *gorm.DB, gate *access.Gate) *CourseController {
	return &CourseController{DB: db, Gate: gate}
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

// CreateCourse creates a new course owned by the calling teacher
func (ctl *CourseController) CreateCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
	}

	// Get validated request data
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Subject     string `json:"subject"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		TeacherID:   teacher.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Subject:     reqData.Subject,
	}

	if err := ctl.DB.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// MyCourses lists the courses owned by the calling teacher
func (ctl *CourseController) MyCourses(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
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

	var courses []models.Course
	var total int64

	db := ctl.DB.Model(&models.Course{}).Where("teacher_id = ? AND is_deleted = ?", teacher.ID, false)
	db.Count(&total)

	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// EnrolledCourses lists the courses the calling student is enrolled in
func (ctl *CourseController) EnrolledCourses(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	student, err := ctl.Gate.Student(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
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

	var enrollments []models.Enrollment
	var total int64

	db := ctl.DB.Model(&models.Enrollment{}).Where("student_id = ? AND is_deleted = ?", student.ID, false)
	db.Count(&total)

	if err := db.Preload("Course").Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourse returns one course to its owner or an enrolled student
func (ctl *CourseController) GetCourse(c *fiber.Ctx) error {
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

	var studentCount int64
	ctl.DB.Model(&models.Enrollment{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&studentCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":        course,
		"student_count": studentCount,
	})
}

// UpdateCourse updates fields on a course the calling teacher owns
func (ctl *CourseController) UpdateCourse(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Subject     string `json:"subject"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Subject != "" {
		course.Subject = reqData.Subject
	}

	if err := ctl.DB.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft deletes a course the calling teacher owns
func (ctl *CourseController) DeleteCourse(c *fiber.Ctx) error {
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

	course.IsDeleted = true
	if err := ctl.DB.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// EnrollInCourse enrolls the calling student in a course
func (ctl *CourseController) EnrollInCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	student, err := ctl.Gate.Student(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
	}

	courseID := c.Locals("courseID").(int)

	// Check if course exists
	var course models.Course
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Check if student is already enrolled
	var existing models.Enrollment
	if err := ctl.DB.Where("student_id = ? AND course_id = ? AND is_deleted = ?", student.ID, courseID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
	}

	enrollment := models.Enrollment{
		StudentID: student.ID,
		CourseID:  uint(courseID),
	}

	// Save to database with transaction
	tx := ctl.DB.Begin()
	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	tx.Commit()

	ctl.Gate.InvalidateStudent(userId)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// CourseStudents lists enrolled students for a course the teacher owns
func (ctl *CourseController) CourseStudents(c *fiber.Ctx) error {
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

	var enrollments []models.Enrollment
	if err := ctl.DB.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Preload("Student.User").Order("created_at asc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch students!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully!", fiber.Map{
		"students": enrollments,
		"total":    len(enrollments),
	})
}
