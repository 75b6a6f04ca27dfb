package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/store"
)

const (
	// StudentCollection holds enrolled students.
	StudentCollection = "Students"
	// StudentKey is the natural key of a student.
	StudentKey = "student_id"
)

// NewStudent is the payload for adding a student. YearLevel is stored as sent.
type NewStudent struct {
	StudentID ID     `json:"student_id"`
	FullName  string `json:"full_name"`
	ClassCode string `json:"class_code"`
	YearLevel any    `json:"year_level"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// StudentPatch lists the student fields an update may touch.
type StudentPatch struct {
	FullName  Optional[string] `json:"full_name"`
	ClassCode Optional[string] `json:"class_code"`
	YearLevel Optional[any]    `json:"year_level"`
	Email     Optional[string] `json:"email"`
	Phone     Optional[string] `json:"phone"`
}

func (p StudentPatch) set() store.Document {
	doc := store.Document{}
	putIfPresent(doc, "full_name", p.FullName)
	putIfPresent(doc, "class_code", p.ClassCode)
	putIfPresent(doc, "year_level", p.YearLevel)
	putIfPresent(doc, "email", p.Email)
	putIfPresent(doc, "phone", p.Phone)
	return doc
}

// StudentService manages the Students collection.
type StudentService struct {
	students store.Collection
	now      func() time.Time
}

// NewStudentService creates a service over the Students collection.
func NewStudentService(students store.Collection) *StudentService {
	return &StudentService{students: students, now: time.Now}
}

func (s *StudentService) Add(ctx context.Context, in NewStudent) error {
	if in.StudentID == "" {
		return apperr.Validation("Student ID is required")
	}
	if err := ensureAbsent(ctx, s.students, StudentKey, string(in.StudentID)); err != nil {
		return conflictOr(err, "Student ID already exists", "add student")
	}
	_, err := s.students.InsertOne(ctx, store.Document{
		StudentKey:   string(in.StudentID),
		"full_name":  in.FullName,
		"class_code": in.ClassCode,
		"year_level": in.YearLevel,
		"email":      in.Email,
		"phone":      in.Phone,
		FaceField:    []any{},
		"created_at": s.now().UTC(),
	})
	if err != nil {
		return conflictOr(err, "Student ID already exists", "add student")
	}
	log.Printf("student added: %s", in.StudentID)
	return nil
}

func (s *StudentService) Update(ctx context.Context, studentID string, patch StudentPatch) error {
	if studentID == "" {
		return apperr.Validation("Student ID is required")
	}
	set := patch.set()
	if len(set) == 0 {
		return apperr.Validation("No valid fields provided for update")
	}
	res, err := s.students.UpdateOne(ctx, store.Filter{StudentKey: studentID}, set)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("update student %s: %w", studentID, err))
	}
	if res.Matched == 0 {
		return apperr.NotFound("Student not found")
	}
	log.Printf("student updated: %s", studentID)
	return nil
}

func (s *StudentService) Delete(ctx context.Context, studentID string) error {
	if studentID == "" {
		return apperr.Validation("Student ID is required")
	}
	n, err := s.students.DeleteOne(ctx, store.Filter{StudentKey: studentID})
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("delete student %s: %w", studentID, err))
	}
	if n == 0 {
		return apperr.NotFound("Student not found")
	}
	log.Printf("student deleted: %s", studentID)
	return nil
}

func (s *StudentService) DeleteMany(ctx context.Context, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, apperr.Validation("No IDs provided")
	}
	n, err := s.students.DeleteMany(ctx, store.Filter{StudentKey: store.In(studentIDs)})
	if err != nil {
		return 0, apperr.Internal("Server error", fmt.Errorf("bulk delete students: %w", err))
	}
	log.Printf("student bulk delete: %d removed", n)
	return n, nil
}

// List returns every student without face data.
func (s *StudentService) List(ctx context.Context) ([]store.Document, error) {
	docs, err := s.students.FindMany(ctx, store.Filter{}, store.Exclude(FaceField))
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list students: %w", err))
	}
	return docs, nil
}

// Get returns one student for kiosk lookup, stripped of _id and face data.
func (s *StudentService) Get(ctx context.Context, studentID string) (store.Document, error) {
	if studentID == "" {
		return nil, apperr.Validation("Student ID is required")
	}
	doc, err := s.students.FindOne(ctx, store.Filter{StudentKey: studentID}, store.Exclude(store.IDField, FaceField))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Student not found")
	}
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("get student %s: %w", studentID, err))
	}
	return doc, nil
}
