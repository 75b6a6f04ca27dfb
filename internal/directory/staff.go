package directory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/store"
)

const (
	// StaffCollection holds teachers and other staff.
	StaffCollection = "Staff"
	// StaffKey is the natural key of a staff member.
	StaffKey = "staff_id"
	// FaceField is never returned by a read.
	FaceField = "face_vector"
)

// NewStaff is the payload for adding a staff member.
type NewStaff struct {
	StaffID    ID     `json:"staff_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// StaffPatch lists the staff fields an update may touch.
type StaffPatch struct {
	FullName   Optional[string] `json:"full_name"`
	Department Optional[string] `json:"department"`
	Email      Optional[string] `json:"email"`
}

func (p StaffPatch) set() store.Document {
	doc := store.Document{}
	putIfPresent(doc, "full_name", p.FullName)
	putIfPresent(doc, "department", p.Department)
	putIfPresent(doc, "email", p.Email)
	return doc
}

// StaffService manages the Staff collection.
type StaffService struct {
	staff store.Collection
}

// NewStaffService creates a service over the Staff collection.
func NewStaffService(staff store.Collection) *StaffService {
	return &StaffService{staff: staff}
}

// Add inserts a staff member with empty face data and schedule.
func (s *StaffService) Add(ctx context.Context, in NewStaff) error {
	if in.StaffID == "" {
		return apperr.Validation("Staff ID is required")
	}
	if err := ensureAbsent(ctx, s.staff, StaffKey, string(in.StaffID)); err != nil {
		return conflictOr(err, "Staff ID already exists", "add staff")
	}
	_, err := s.staff.InsertOne(ctx, store.Document{
		StaffKey:     string(in.StaffID),
		"full_name":  in.FullName,
		"department": in.Department,
		"email":      in.Email,
		FaceField:    []any{},
		"schedule":   []any{},
	})
	if err != nil {
		return conflictOr(err, "Staff ID already exists", "add staff")
	}
	log.Printf("staff added: %s", in.StaffID)
	return nil
}

// Update applies the present fields of patch to one staff member.
func (s *StaffService) Update(ctx context.Context, staffID string, patch StaffPatch) error {
	if staffID == "" {
		return apperr.Validation("Staff ID is required")
	}
	set := patch.set()
	if len(set) == 0 {
		return apperr.Validation("No valid fields provided for update")
	}
	res, err := s.staff.UpdateOne(ctx, store.Filter{StaffKey: staffID}, set)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("update staff %s: %w", staffID, err))
	}
	if res.Matched == 0 {
		return apperr.NotFound("Staff ID not found")
	}
	log.Printf("staff updated: %s", staffID)
	return nil
}

// Delete removes a single staff member.
func (s *StaffService) Delete(ctx context.Context, staffID string) error {
	if staffID == "" {
		return apperr.Validation("Staff ID is required")
	}
	n, err := s.staff.DeleteOne(ctx, store.Filter{StaffKey: staffID})
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("delete staff %s: %w", staffID, err))
	}
	if n == 0 {
		return apperr.NotFound("Staff not found")
	}
	log.Printf("staff deleted: %s", staffID)
	return nil
}

// DeleteMany removes every listed staff member and reports how many existed.
func (s *StaffService) DeleteMany(ctx context.Context, staffIDs []string) (int64, error) {
	if len(staffIDs) == 0 {
		return 0, apperr.Validation("No IDs provided")
	}
	n, err := s.staff.DeleteMany(ctx, store.Filter{StaffKey: store.In(staffIDs)})
	if err != nil {
		return 0, apperr.Internal("Server error", fmt.Errorf("bulk delete staff: %w", err))
	}
	log.Printf("staff bulk delete: %d removed", n)
	return n, nil
}

// List returns every staff member without face data.
func (s *StaffService) List(ctx context.Context) ([]store.Document, error) {
	docs, err := s.staff.FindMany(ctx, store.Filter{}, store.Exclude(FaceField))
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list staff: %w", err))
	}
	return docs, nil
}

func ensureAbsent(ctx context.Context, c store.Collection, field, value string) error {
	_, err := c.FindOne(ctx, store.Filter{field: value}, store.Exclude(FaceField))
	switch {
	case err == nil:
		return store.ErrDuplicate
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}

func conflictOr(err error, conflictMsg, op string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict(conflictMsg)
	}
	return apperr.Internal("Server error", fmt.Errorf("%s: %w", op, err))
}
