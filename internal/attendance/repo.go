package attendance

import (
	"context"

	"github.com/NutMontree/kiosk/internal/store"
)

// Collection is the append-only access log.
const Collection = "Attendance"

// Repository persists access log entries.
type Repository struct {
	log store.Collection
}

// NewRepository creates a repo.
func NewRepository(log store.Collection) *Repository {
	return &Repository{log: log}
}

// InsertEntry appends an entry and returns its generated id.
func (r *Repository) InsertEntry(ctx context.Context, e Entry) (string, error) {
	return r.log.InsertOne(ctx, store.Document{
		"user_id":   e.UserID,
		"user_type": e.UserType,
		"room_id":   e.RoomID,
		"status":    e.Status,
		"reason":    e.Reason,
		"timestamp": e.Timestamp,
	})
}

// ListEntries returns entries newest first with optional filters.
func (r *Repository) ListEntries(ctx context.Context, userID, roomID string, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	filter := store.Filter{}
	if userID != "" {
		filter["user_id"] = userID
	}
	if roomID != "" {
		filter["room_id"] = roomID
	}
	return r.log.FindMany(ctx, filter, store.SortDesc("timestamp"), store.Limit(int64(limit)))
}
