package attendance

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/store"
)

// MaxListLimit caps how many entries Recent returns.
const MaxListLimit = 500

// Entry is one recorded access decision. Caller fields keep the JSON type
// they were sent with.
type Entry struct {
	UserID    any
	UserType  any
	RoomID    any
	Status    any
	Reason    any
	Timestamp time.Time
}

// LogInput is the caller's view of an entry. A nil field was missing or null.
// There is no timestamp: the server always assigns it.
type LogInput struct {
	UserID   any `json:"user_id"`
	UserType any `json:"user_type"`
	RoomID   any `json:"room_id"`
	Status   any `json:"status"`
	Reason   any `json:"reason"`
}

func (in LogInput) complete() bool {
	return in.UserID != nil && in.UserType != nil && in.RoomID != nil && in.Status != nil && in.Reason != nil
}

// Service records and lists access decisions.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Log appends an entry stamped with the server clock. Entries are never
// deduplicated.
func (s *Service) Log(ctx context.Context, in LogInput) (string, error) {
	if !in.complete() {
		return "", apperr.Validation("Missing required log fields.")
	}
	e := Entry{
		UserID:    in.UserID,
		UserType:  in.UserType,
		RoomID:    in.RoomID,
		Status:    in.Status,
		Reason:    in.Reason,
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	}
	id, err := s.repo.InsertEntry(ctx, e)
	if err != nil {
		return "", apperr.Internal("Server error during logging process.", fmt.Errorf("insert access log: %w", err))
	}
	log.Printf("access logged: %v (%v) room=%v", e.UserID, e.Status, e.RoomID)
	return id, nil
}

// Recent lists entries newest first, optionally narrowed to a user or room.
func (s *Service) Recent(ctx context.Context, userID, roomID string, limit int) ([]store.Document, error) {
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	docs, err := s.repo.ListEntries(ctx, userID, roomID, limit)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list access log: %w", err))
	}
	return docs, nil
}
