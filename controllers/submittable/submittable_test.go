package submittableController_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"classroom/access"
	submittableController "classroom/controllers/submittable"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/routers/submittableRoutes"
	"classroom/storage"
	"classroom/utils"
)

const testSecret = "test-secret"

// fakeStore records uploads and delete attempts instead of touching disk.
type fakeStore struct {
	mu         sync.Mutex
	uploads    int
	deletes    []string
	failDelete bool
}

func (f *fakeStore) Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	key := fmt.Sprintf("%s/%d-%s", prefix, f.uploads, file.Filename)
	return storage.Object{Name: file.Filename, URL: "/files/" + key, Key: key}, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	if f.failDelete {
		return fmt.Errorf("storage unavailable")
	}
	return nil
}

func (f *fakeStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

func (f *fakeStore) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

type fixtures struct {
	app   *fiber.App
	db    *gorm.DB
	store *fakeStore

	teacher           models.Teacher
	teacherToken      string
	otherTeacherToken string
	student           models.Student
	studentToken      string
	student2          models.Student
	student2Token     string
	outsiderToken     string
	course            models.Course
}

func makeTeacher(t *testing.T, db *gorm.DB, email string) (models.Teacher, string) {
	t.Helper()
	user := models.User{Name: "Teacher", Email: email, Role: models.RoleTeacher, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	profile := models.Teacher{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	token, err := middleware.GenerateJWT(testSecret, user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return profile, token
}

func makeStudent(t *testing.T, db *gorm.DB, email string) (models.Student, string) {
	t.Helper()
	user := models.User{Name: "Student", Email: email, Role: models.RoleStudent, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	profile := models.Student{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	token, err := middleware.GenerateJWT(testSecret, user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return profile, token
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:sub_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := &fakeStore{}
	gate := access.NewGate(db, nil)
	mailer := utils.NewMailer("", "no-reply@classroom.test")

	assignmentCtl := submittableController.NewSubmittableController(db, store, gate, mailer, models.KindAssignment, "Assignment", "assignments")
	activityCtl := submittableController.NewSubmittableController(db, store, gate, mailer, models.KindActivity, "Activity", "activities")

	app := fiber.New()
	auth := middleware.JWTMiddleware(testSecret)
	submittableRoutes.SetupSubmittableRoutes(app, "/assignment", auth, assignmentCtl)
	submittableRoutes.SetupSubmittableRoutes(app, "/activity", auth, activityCtl)

	f := &fixtures{app: app, db: db, store: store}
	f.teacher, f.teacherToken = makeTeacher(t, db, "teacher@classroom.test")
	_, f.otherTeacherToken = makeTeacher(t, db, "other-teacher@classroom.test")
	f.student, f.studentToken = makeStudent(t, db, "student@classroom.test")
	f.student2, f.student2Token = makeStudent(t, db, "student2@classroom.test")
	_, f.outsiderToken = makeStudent(t, db, "outsider@classroom.test")

	f.course = models.Course{TeacherID: f.teacher.ID, Title: "Algorithms", Description: "Sorting and graphs", Subject: "CS"}
	require.NoError(t, db.Create(&f.course).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: f.student.ID, CourseID: f.course.ID}).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: f.student2.ID, CourseID: f.course.ID}).Error)

	return f
}

func (f *fixtures) makeAssignment(t *testing.T, dueDate time.Time, active bool) models.Submittable {
	t.Helper()
	sub := models.Submittable{
		Kind:        models.KindAssignment,
		CourseID:    f.course.ID,
		TeacherID:   f.teacher.ID,
		Title:       "Homework",
		Description: "Do the thing",
		DueDate:     dueDate,
		TotalPoints: 100,
		IsActive:    true,
	}
	require.NoError(t, f.db.Create(&sub).Error)
	// gorm skips zero-value fields carrying a column default on insert, so a
	// closed submittable has to be flipped after the create.
	if !active {
		require.NoError(t, f.db.Model(&sub).Update("is_active", false).Error)
	}
	return sub
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func doMultipart(t *testing.T, app *fiber.App, method, target, token string, fields map[string]string, files map[string][]string) (*http.Response, envelope) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			part, err := writer.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("file content"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestCreateWithAttachments(t *testing.T) {
	f := newFixtures(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/course/%d", f.course.ID), f.teacherToken,
		map[string]string{"title": "Sorting homework", "description": "Implement quicksort", "dueDate": due, "totalPoints": "50"},
		map[string][]string{"attachments": {"spec.pdf", "starter.zip"}})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, "Assignment created successfully!", env.Message)

	var sub models.Submittable
	require.NoError(t, f.db.Preload("Attachments").First(&sub).Error)
	assert.Equal(t, models.KindAssignment, sub.Kind)
	assert.EqualValues(t, 50, sub.TotalPoints)
	assert.True(t, sub.IsActive)
	require.Len(t, sub.Attachments, 2)
	assert.Equal(t, 0, sub.Attachments[0].Position)
	assert.Equal(t, 1, sub.Attachments[1].Position)
	assert.Equal(t, 2, f.store.uploadCount())
}

func TestCreateRejectsForeignCourse(t *testing.T) {
	f := newFixtures(t)

	due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	resp, _ := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/course/%d", f.course.ID), f.otherTeacherToken,
		map[string]string{"title": "Hijack", "description": "Not my course", "dueDate": due}, nil)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	f.db.Model(&models.Submittable{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateRejectsStudents(t *testing.T) {
	f := newFixtures(t)

	due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	resp, _ := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/course/%d", f.course.ID), f.studentToken,
		map[string]string{"title": "Nope", "description": "Students cannot create", "dueDate": due}, nil)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestKindsDoNotBleedAcrossMounts(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, _ := doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/%d", sub.ID), f.teacherToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, f.app, "GET", fmt.Sprintf("/activity/%d", sub.ID), f.teacherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Activity not found!", env.Message)
}

func TestListPaginatesForEnrolledStudent(t *testing.T) {
	f := newFixtures(t)
	f.makeAssignment(t, time.Now().Add(24*time.Hour), true)
	f.makeAssignment(t, time.Now().Add(48*time.Hour), true)
	f.makeAssignment(t, time.Now().Add(72*time.Hour), true)

	resp, env := doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/course/%d?page=1&limit=2", f.course.ID), f.studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var data struct {
		Assignments []json.RawMessage `json:"assignments"`
		Pagination  struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Assignments, 2)
	assert.Equal(t, 3, data.Pagination.Total)

	resp, _ = doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/course/%d?page=2&limit=2", f.course.ID), f.studentToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListRejectsUnenrolledStudent(t *testing.T) {
	f := newFixtures(t)
	f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, _ := doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/course/%d?page=1&limit=10", f.course.ID), f.outsiderToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestListRequiresPagination(t *testing.T) {
	f := newFixtures(t)

	resp, env := doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/course/%d", f.course.ID), f.studentToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed!", env.Message)
}

func TestUpdateTogglesActiveAndResetsReminder(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)
	require.NoError(t, f.db.Model(&sub).Update("reminder_sent", true).Error)

	newDue := time.Now().Add(96 * time.Hour).UTC().Format(time.RFC3339)
	resp, env := doJSON(t, f.app, "PUT", fmt.Sprintf("/assignment/%d", sub.ID), f.teacherToken,
		fiber.Map{"dueDate": newDue, "isActive": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var reloaded models.Submittable
	require.NoError(t, f.db.First(&reloaded, sub.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.False(t, reloaded.ReminderSent, "changing the due date must rearm the reminder")
}

func TestSubmitMarksLateAfterDeadline(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(-time.Hour), true)

	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var submission models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&submission).Error)
	assert.True(t, submission.IsLate)
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
}

func TestSubmitOnTimeIsNotLate(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(time.Hour), true)

	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var submission models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&submission).Error)
	assert.False(t, submission.IsLate)
}

func TestSubmitRejectsClosedSubmittable(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), false)

	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "This assignment is closed for submissions!", env.Message)
	assert.Equal(t, 0, f.store.uploadCount(), "a closed submittable must not accept uploads")

	var count int64
	f.db.Model(&models.Submission{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestSubmitRejectsUnenrolledStudentBeforeAnyWrite(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, _ := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.outsiderToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, f.store.uploadCount(), "authorization must run before the blob upload")

	var count int64
	f.db.Model(&models.Submission{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestResubmitReplacesInPlaceAndResetsGrade(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"draft.pdf"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var first models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&first).Error)
	firstKey := first.StorageKey

	resp, env = doJSON(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submissions/%d/grade", sub.ID, first.ID), f.teacherToken,
		fiber.Map{"grade": 70, "feedback": "Decent draft"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	resp, env = doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"final.pdf"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var count int64
	f.db.Model(&models.Submission{}).Where("submittable_id = ?", sub.ID).Count(&count)
	assert.EqualValues(t, 1, count, "re-submission must keep a single row per student")

	var reloaded models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&reloaded).Error)
	assert.Equal(t, first.ID, reloaded.ID)
	assert.NotEqual(t, firstKey, reloaded.StorageKey)
	assert.Nil(t, reloaded.Grade, "a new upload invalidates the old grade")
	assert.Empty(t, reloaded.Feedback)
	assert.Nil(t, reloaded.GradedAt)
	assert.Equal(t, models.SubmissionStatusSubmitted, reloaded.Status)
	assert.Contains(t, f.store.deleted(), firstKey, "the replaced file must be removed after commit")
}

func TestGradeRejectsOutOfBoundsBeforeWriting(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	_, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})
	require.True(t, env.Success, env.Message)

	var submission models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&submission).Error)

	resp, env := doJSON(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submissions/%d/grade", sub.ID, submission.ID), f.teacherToken,
		fiber.Map{"grade": 150, "feedback": "Too generous"})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Grade must be between 0 and 100!", env.Message)

	var reloaded models.Submission
	require.NoError(t, f.db.First(&reloaded, submission.ID).Error)
	assert.Nil(t, reloaded.Grade)
	assert.Equal(t, models.SubmissionStatusSubmitted, reloaded.Status)

	var events int64
	f.db.Model(&models.OutboxEvent{}).Count(&events)
	assert.EqualValues(t, 0, events, "a rejected grade must not queue an event")
}

func TestGradeRecordsResultAndQueuesEvent(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	_, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"essay.pdf"}})
	require.True(t, env.Success, env.Message)

	var submission models.Submission
	require.NoError(t, f.db.Where("submittable_id = ?", sub.ID).First(&submission).Error)

	resp, env := doJSON(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submissions/%d/grade", sub.ID, submission.ID), f.teacherToken,
		fiber.Map{"grade": 85.5, "feedback": "Solid work"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var reloaded models.Submission
	require.NoError(t, f.db.First(&reloaded, submission.ID).Error)
	require.NotNil(t, reloaded.Grade)
	assert.InDelta(t, 85.5, *reloaded.Grade, 0.001)
	assert.Equal(t, "Solid work", reloaded.Feedback)
	assert.Equal(t, models.SubmissionStatusGraded, reloaded.Status)
	assert.NotNil(t, reloaded.GradedAt)

	var event models.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", models.EventSubmissionGraded).First(&event).Error)
	assert.False(t, event.Delivered)

	var payload struct {
		SubmissionID uint    `json:"submission_id"`
		Grade        float64 `json:"grade"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, submission.ID, payload.SubmissionID)
	assert.InDelta(t, 85.5, payload.Grade, 0.001)
}

func TestGradeRejectsStudents(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, _ := doJSON(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submissions/1/grade", sub.ID), f.studentToken,
		fiber.Map{"grade": 100})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetShowsOnlyOwnSubmissionToStudent(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	_, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.studentToken,
		nil, map[string][]string{"submissionFile": {"mine.pdf"}})
	require.True(t, env.Success, env.Message)
	_, env = doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/submit", sub.ID), f.student2Token,
		nil, map[string][]string{"submissionFile": {"theirs.pdf"}})
	require.True(t, env.Success, env.Message)

	_, env = doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/%d", sub.ID), f.studentToken, nil)
	var asStudent struct {
		Submissions []struct {
			StudentID uint `json:"student_id"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &asStudent))
	require.Len(t, asStudent.Submissions, 1)
	assert.Equal(t, f.student.ID, asStudent.Submissions[0].StudentID)

	_, env = doJSON(t, f.app, "GET", fmt.Sprintf("/assignment/%d", sub.ID), f.teacherToken, nil)
	var asTeacher struct {
		Submissions []json.RawMessage `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &asTeacher))
	assert.Len(t, asTeacher.Submissions, 2)
}

func TestAddAndRemoveAttachment(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)
	require.NoError(t, f.db.Create(&models.Attachment{SubmittableID: sub.ID, Name: "a", StorageKey: "assignments/a", Position: 0}).Error)

	resp, env := doMultipart(t, f.app, "POST", fmt.Sprintf("/assignment/%d/attachment", sub.ID), f.teacherToken,
		nil, map[string][]string{"file": {"rubric.pdf"}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var added models.Attachment
	require.NoError(t, f.db.Where("submittable_id = ? AND name = ?", sub.ID, "rubric.pdf").First(&added).Error)
	assert.Equal(t, 1, added.Position, "new attachments append after the highest position")

	resp, env = doJSON(t, f.app, "DELETE", fmt.Sprintf("/assignment/%d/attachment/%d", sub.ID, added.ID), f.teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	assert.Contains(t, f.store.deleted(), added.StorageKey)
	var count int64
	f.db.Model(&models.Attachment{}).Where("submittable_id = ?", sub.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteCascadesBlobsAndRows(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.db.Create(&models.Attachment{
			SubmittableID: sub.ID,
			Name:          fmt.Sprintf("att-%d", i),
			StorageKey:    fmt.Sprintf("assignments/att-%d", i),
			Position:      i,
		}).Error)
	}
	students := []models.Student{f.student, f.student2}
	extra, _ := makeStudent(t, f.db, "third@classroom.test")
	require.NoError(t, f.db.Create(&models.Enrollment{StudentID: extra.ID, CourseID: f.course.ID}).Error)
	students = append(students, extra)
	for i, s := range students {
		require.NoError(t, f.db.Create(&models.Submission{
			SubmittableID: sub.ID,
			StudentID:     s.ID,
			StorageKey:    fmt.Sprintf("assignments/submissions/sub-%d", i),
			SubmittedAt:   time.Now(),
			Status:        models.SubmissionStatusSubmitted,
		}).Error)
	}

	// Row removal must survive storage failures
	f.store.failDelete = true

	resp, env := doJSON(t, f.app, "DELETE", fmt.Sprintf("/assignment/%d", sub.ID), f.teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	assert.Len(t, f.store.deleted(), 5, "one delete attempt per owned blob")

	var subs, atts, rows int64
	f.db.Model(&models.Submittable{}).Where("id = ?", sub.ID).Count(&subs)
	f.db.Model(&models.Attachment{}).Where("submittable_id = ?", sub.ID).Count(&atts)
	f.db.Model(&models.Submission{}).Where("submittable_id = ?", sub.ID).Count(&rows)
	assert.EqualValues(t, 0, subs)
	assert.EqualValues(t, 0, atts)
	assert.EqualValues(t, 0, rows)
}

func TestDeleteRejectsForeignTeacher(t *testing.T) {
	f := newFixtures(t)
	sub := f.makeAssignment(t, time.Now().Add(24*time.Hour), true)

	resp, _ := doJSON(t, f.app, "DELETE", fmt.Sprintf("/assignment/%d", sub.ID), f.otherTeacherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	f.db.Model(&models.Submittable{}).Where("id = ?", sub.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
