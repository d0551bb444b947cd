package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"classroom/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	// ErrUnauthorized means the caller has no matching role profile.
	ErrUnauthorized = errors.New("access: no role profile for user")
	// ErrForbidden means the profile exists but lacks the required relation
	// (course ownership or enrollment).
	ErrForbidden = errors.New("access: missing required relation")
)

const profileCacheTTL = 10 * time.Minute

// Gate resolves role profiles and checks ownership/enrollment before an
// entity-scoped operation may proceed. Failures are client errors and are
// never retried. Profile lookups are cached in Redis when a client is
// configured; a nil client disables caching.
type Gate struct {
	db  *gorm.DB
	rdb *redis.Client
	ctx context.Context
}

func NewGate(db *gorm.DB, rdb *redis.Client) *Gate {
	return &Gate{db: db, rdb: rdb, ctx: context.Background()}
}

// Teacher resolves the teacher profile for a user id.
func (g *Gate) Teacher(userID uint) (*models.Teacher, error) {
	cacheKey := fmt.Sprintf("profile:teacher:%d", userID)

	var teacher models.Teacher
	if g.cacheGet(cacheKey, &teacher) {
		return &teacher, nil
	}

	if err := g.db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&teacher).Error; err != nil {
		return nil, ErrUnauthorized
	}

	g.cacheSet(cacheKey, teacher)
	return &teacher, nil
}

// Student resolves the student profile for a user id.
func (g *Gate) Student(userID uint) (*models.Student, error) {
	cacheKey := fmt.Sprintf("profile:student:%d", userID)

	var student models.Student
	if g.cacheGet(cacheKey, &student) {
		return &student, nil
	}

	if err := g.db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&student).Error; err != nil {
		return nil, ErrUnauthorized
	}

	g.cacheSet(cacheKey, student)
	return &student, nil
}

// OwnsCourse loads the course and verifies the teacher owns it. Returns
// gorm.ErrRecordNotFound when the course does not exist and ErrForbidden
// when it belongs to another teacher.
func (g *Gate) OwnsCourse(teacher *models.Teacher, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := g.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, err
	}
	if course.TeacherID != teacher.ID {
		return nil, ErrForbidden
	}
	return &course, nil
}

// EnrolledIn verifies the student's enrolled-course list contains courseID.
func (g *Gate) EnrolledIn(student *models.Student, courseID uint) error {
	var enrollment models.Enrollment
	err := g.db.Where("student_id = ? AND course_id = ? AND is_deleted = ?", student.ID, courseID, false).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	return nil
}

// InvalidateStudent drops the cached student profile after an enrollment
// change.
func (g *Gate) InvalidateStudent(userID uint) {
	if g.rdb == nil {
		return
	}
	cacheKey := fmt.Sprintf("profile:student:%d", userID)
	if err := g.rdb.Del(g.ctx, cacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate cache key %s: %v", cacheKey, err)
	}
}

func (g *Gate) cacheGet(key string, dest interface{}) bool {
	if g.rdb == nil {
		return false
	}
	data, err := g.rdb.Get(g.ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis GET failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("Failed to unmarshal cached profile %s: %v", key, err)
		return false
	}
	return true
}

func (g *Gate) cacheSet(key string, value interface{}) {
	if g.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := g.rdb.Set(g.ctx, key, data, profileCacheTTL).Err(); err != nil {
		log.Printf("Redis SET failed for %s: %v", key, err)
	}
}
