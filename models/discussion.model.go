package models

import "gorm.io/gorm"

// DiscussionKind scopes a discussion to the teacher lounge or to one course.
type DiscussionKind string

const (
	DiscussionTeacher DiscussionKind = "teacher"
	DiscussionCourse  DiscussionKind = "course"
)

// CommentTombstone replaces the content of a soft-deleted comment or reply.
const CommentTombstone = "[deleted]"

type Discussion struct {
	gorm.Model
	AuthorID    uint                   `json:"author_id" gorm:"index;not null"` // user id of the author
	Kind        DiscussionKind         `json:"kind" gorm:"type:varchar(16);index;not null"`
	CourseID    *uint                  `json:"course_id" gorm:"index"` // set only for course discussions
	Title       string                 `json:"title"`
	Body        string                 `json:"body" gorm:"type:text"`
	Views       uint                   `json:"views" gorm:"default:0"`
	Attachments []DiscussionAttachment `json:"attachments,omitempty" gorm:"foreignKey:DiscussionID"`
	Comments    []DiscussionComment    `json:"comments,omitempty" gorm:"foreignKey:DiscussionID"`
}

// DiscussionAttachment is a stored file owned by exactly one discussion.
type DiscussionAttachment struct {
	gorm.Model
	DiscussionID uint   `json:"discussion_id" gorm:"index;not null"`
	Name         string `json:"name"`
	URL          string `json:"url" gorm:"size:512"`
	StorageKey   string `json:"-" gorm:"size:512"`
	Position     int    `json:"position" gorm:"default:0"`
}

// DiscussionComment is a top-level comment. Replies are a flat list one
// level below; deeper nesting is not representable.
type DiscussionComment struct {
	gorm.Model
	DiscussionID uint              `json:"discussion_id" gorm:"index;not null"`
	AuthorID     uint              `json:"author_id" gorm:"index;not null"`
	Content      string            `json:"content" gorm:"type:text"`
	IsDeleted    bool              `json:"is_deleted" gorm:"default:false"`
	Replies      []DiscussionReply `json:"replies,omitempty" gorm:"foreignKey:CommentID"`
}

type DiscussionReply struct {
	gorm.Model
	CommentID uint   `json:"comment_id" gorm:"index;not null"`
	AuthorID  uint   `json:"author_id" gorm:"index;not null"`
	Content   string `json:"content" gorm:"type:text"`
	IsDeleted bool   `json:"is_deleted" gorm:"default:false"`
}
