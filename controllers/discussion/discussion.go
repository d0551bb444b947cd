package discussionController

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

type DiscussionController struct {
	DB    *gorm.DB
	Store storage.Store
	Gate  *access.Gate
}

func NewDiscussionController(db *gorm.DB, store storage.Store, gate *access.Gate) *DiscussionController {
	return &DiscussionController{DB: db, Store: store, Gate: gate}
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

// canParticipate reports whether the user may read and comment on the
// discussion. Teacher discussions are open to every teacher, course
// discussions to the course owner and enrolled students.
func (ctl *DiscussionController) canParticipate(userId uint, discussion *models.Discussion) bool {
	switch discussion.Kind {
	case models.DiscussionTeacher:
		_, err := ctl.Gate.Teacher(userId)
		return err == nil
	case models.DiscussionCourse:
		if discussion.CourseID == nil {
			return false
		}
		if teacher, err := ctl.Gate.Teacher(userId); err == nil {
			if _, err := ctl.Gate.OwnsCourse(teacher, *discussion.CourseID); err == nil {
				return true
			}
		}
		if student, err := ctl.Gate.Student(userId); err == nil {
			return ctl.Gate.EnrolledIn(student, *discussion.CourseID) == nil
		}
	}
	return false
}

// ownsDiscussionCourse reports whether the user is the owning teacher of a
// course discussion's course.
func (ctl *DiscussionController) ownsDiscussionCourse(userId uint, discussion *models.Discussion) bool {
	if discussion.Kind != models.DiscussionCourse || discussion.CourseID == nil {
		return false
	}
	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return false
	}
	_, err = ctl.Gate.OwnsCourse(teacher, *discussion.CourseID)
	return err == nil
}

// Create starts a discussion with optional attachment files
func (ctl *DiscussionController) Create(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	teacher, err := ctl.Gate.Teacher(userId)
	if err != nil {
		return gateError(c, err, "Course not found!")
	}

	reqData, ok := c.Locals("validatedDiscussion").(*struct {
		Title    string
		Body     string
		Kind     string
		CourseID *uint
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Course discussions may only be started by the owning teacher
	if models.DiscussionKind(reqData.Kind) == models.DiscussionCourse {
		if _, err := ctl.Gate.OwnsCourse(teacher, *reqData.CourseID); err != nil {
			return gateError(c, err, "Course not found!")
		}
	}

	discussion := models.Discussion{
		AuthorID: userId,
		Kind:     models.DiscussionKind(reqData.Kind),
		CourseID: reqData.CourseID,
		Title:    reqData.Title,
		Body:     reqData.Body,
	}

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if err := uow.Tx.Create(&discussion).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create discussion!", nil)
	}

	ctx := context.Background()
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for i, fileHeader := range form.File["attachments"] {
			obj, err := ctl.Store.Upload(ctx, fileHeader, "discussions")
			if err != nil {
				log.Printf("[DISCUSSION] Attachment upload failed: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload attachment!", nil)
			}
			key := obj.Key
			uow.Compensate(func() {
				if err := ctl.Store.Delete(ctx, key); err != nil {
					log.Printf("[DISCUSSION] Compensation delete failed for %s: %v", key, err)
				}
			})

			attachment := models.DiscussionAttachment{
				DiscussionID: discussion.ID,
				Name:         obj.Name,
				URL:          obj.URL,
				StorageKey:   obj.Key,
				Position:     i,
			}
			if err := uow.Tx.Create(&attachment).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save attachment!", nil)
			}
			discussion.Attachments = append(discussion.Attachments, attachment)
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[DISCUSSION] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create discussion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Discussion created successfully!", discussion)
}

// TeacherFeed lists teacher-lounge discussions for any teacher
func (ctl *DiscussionController) TeacherFeed(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if _, err := ctl.Gate.Teacher(userId); err != nil {
		return gateError(c, err, "Discussion not found!")
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

	var discussions []models.Discussion
	var total int64

	db := ctl.DB.Model(&models.Discussion{}).Where("kind = ?", models.DiscussionTeacher)
	db.Count(&total)

	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&discussions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch discussions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussions fetched successfully!", fiber.Map{
		"discussions": discussions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CourseFeed lists a course's discussions for the owner or enrolled students
func (ctl *DiscussionController) CourseFeed(c *fiber.Ctx) error {
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

	var discussions []models.Discussion
	var total int64

	db := ctl.DB.Model(&models.Discussion{}).Where("kind = ? AND course_id = ?", models.DiscussionCourse, course.ID)
	db.Count(&total)

	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&discussions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch discussions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussions fetched successfully!", fiber.Map{
		"discussions": discussions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Get returns one discussion with comments and replies, bumping its view
// counter.
func (ctl *DiscussionController) Get(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	discussionID := c.Locals("discussionID").(int)

	var discussion models.Discussion
	if err := ctl.DB.Preload("Attachments").Preload("Comments.Replies").First(&discussion, discussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	if !ctl.canParticipate(userId, &discussion) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := ctl.DB.Model(&discussion).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		log.Printf("[DISCUSSION] View counter update failed: %v", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion fetched successfully!", discussion)
}

// Comment adds a top-level comment
func (ctl *DiscussionController) Comment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	discussionID := c.Locals("discussionID").(int)

	var discussion models.Discussion
	if err := ctl.DB.First(&discussion, discussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	if !ctl.canParticipate(userId, &discussion) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reqData, ok := c.Locals("validatedComment").(*struct {
		Content string `json:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	comment := models.DiscussionComment{
		DiscussionID: discussion.ID,
		AuthorID:     userId,
		Content:      reqData.Content,
	}

	if err := ctl.DB.Create(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add comment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment added successfully!", comment)
}

// Reply adds a reply below a comment. Replies cannot be nested further.
func (ctl *DiscussionController) Reply(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	commentID := c.Locals("commentID").(int)

	var comment models.DiscussionComment
	if err := ctl.DB.First(&comment, commentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}

	var discussion models.Discussion
	if err := ctl.DB.First(&discussion, comment.DiscussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	if !ctl.canParticipate(userId, &discussion) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reqData, ok := c.Locals("validatedComment").(*struct {
		Content string `json:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	reply := models.DiscussionReply{
		CommentID: comment.ID,
		AuthorID:  userId,
		Content:   reqData.Content,
	}

	if err := ctl.DB.Create(&reply).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add reply!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reply added successfully!", reply)
}

// DeleteComment tombstones a comment, keeping the row and its replies
func (ctl *DiscussionController) DeleteComment(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	commentID := c.Locals("commentID").(int)

	var comment models.DiscussionComment
	if err := ctl.DB.First(&comment, commentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}

	var discussion models.Discussion
	if err := ctl.DB.First(&discussion, comment.DiscussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	// Only the author or the owning course teacher may remove it
	if comment.AuthorID != userId && !ctl.ownsDiscussionCourse(userId, &discussion) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	comment.Content = models.CommentTombstone
	comment.IsDeleted = true
	if err := ctl.DB.Save(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete comment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully!", nil)
}

// DeleteReply tombstones a reply
func (ctl *DiscussionController) DeleteReply(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	replyID := c.Locals("replyID").(int)

	var reply models.DiscussionReply
	if err := ctl.DB.First(&reply, replyID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reply not found!", nil)
	}

	var comment models.DiscussionComment
	if err := ctl.DB.First(&comment, reply.CommentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}

	var discussion models.Discussion
	if err := ctl.DB.First(&discussion, comment.DiscussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	if reply.AuthorID != userId && !ctl.ownsDiscussionCourse(userId, &discussion) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reply.Content = models.CommentTombstone
	reply.IsDeleted = true
	if err := ctl.DB.Save(&reply).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete reply!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply deleted successfully!", nil)
}

// Delete removes a whole discussion with its comment tree. Attachment blobs
// get one delete attempt each before the rows go.
func (ctl *DiscussionController) Delete(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	discussionID := c.Locals("discussionID").(int)

	var discussion models.Discussion
	if err := ctl.DB.First(&discussion, discussionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
	}

	if discussion.AuthorID != userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var attachments []models.DiscussionAttachment
	ctl.DB.Where("discussion_id = ?", discussion.ID).Find(&attachments)

	ctx := context.Background()
	for _, attachment := range attachments {
		if err := ctl.Store.Delete(ctx, attachment.StorageKey); err != nil {
			log.Printf("[DISCUSSION] Blob delete failed for %s: %v", attachment.StorageKey, err)
		}
	}

	var commentIDs []uint
	ctl.DB.Model(&models.DiscussionComment{}).Where("discussion_id = ?", discussion.ID).Pluck("id", &commentIDs)

	uow := database.NewUnitOfWork(ctl.DB)
	defer uow.Close()

	if len(commentIDs) > 0 {
		if err := uow.Tx.Unscoped().Where("comment_id IN ?", commentIDs).Delete(&models.DiscussionReply{}).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete discussion!", nil)
		}
	}
	if err := uow.Tx.Unscoped().Where("discussion_id = ?", discussion.ID).Delete(&models.DiscussionComment{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete discussion!", nil)
	}
	if err := uow.Tx.Unscoped().Where("discussion_id = ?", discussion.ID).Delete(&models.DiscussionAttachment{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete discussion!", nil)
	}
	if err := uow.Tx.Unscoped().Delete(&models.Discussion{}, discussion.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete discussion!", nil)
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[DISCUSSION] Commit failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete discussion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion deleted successfully!", nil)
}
