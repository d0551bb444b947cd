package models

import "gorm.io/gorm"

// Syllabus item kinds. File and video items own a stored blob; link items
// reference an external URL; text items carry inline content.
const (
	SyllabusItemFile  = "file"
	SyllabusItemLink  = "link"
	SyllabusItemVideo = "video"
	SyllabusItemText  = "text"
)

// SyllabusModule is one numbered section of a course syllabus.
type SyllabusModule struct {
	gorm.Model
	CourseID     uint           `json:"course_id" gorm:"index;not null"`
	ModuleNumber int            `json:"module_number" gorm:"default:1"`
	Title        string         `json:"title"`
	Items        []SyllabusItem `json:"items,omitempty" gorm:"foreignKey:ModuleID"`
}

// SyllabusItem is one content entry inside a module.
type SyllabusItem struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	ItemType    string `json:"item_type" gorm:"size:16;not null"` // file, link, video, text
	Title       string `json:"title"`
	URL         string `json:"url" gorm:"size:512"`          // file, link, video
	StorageKey  string `json:"-" gorm:"size:512"`            // file, video (uploaded media)
	TextContent string `json:"text_content" gorm:"type:text"` // text
	Position    int    `json:"position" gorm:"default:0"`
}

// OwnsBlob reports whether the item holds a stored file that must be
// removed from the blob store when the item goes away.
func (i SyllabusItem) OwnsBlob() bool {
	return i.StorageKey != ""
}
