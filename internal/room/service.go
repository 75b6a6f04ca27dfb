package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/queue"
	"github.com/NutMontree/kiosk/internal/store"
)

const (
	// Collection holds the pre-seeded rooms.
	Collection = "Rooms"
	// Key is the natural key of a room.
	Key = "room_id"

	Locked   = "LOCK"
	Unlocked = "UNLOCK"

	// MessageType tags lock commands on the relay queue.
	MessageType = "lock"
)

var lockChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kiosk_room_lock_changes_total",
	Help: "Room lock status changes applied, by new status.",
}, []string{"status"})

// LockCommand is what the relay worker forwards to a physical lock.
type LockCommand struct {
	RoomID   string    `json:"room_id"`
	Status   string    `json:"status"`
	IssuedAt time.Time `json:"issued_at"`
}

// Service changes and reports room lock state.
type Service struct {
	rooms store.Collection
	relay queue.Publisher
	now   func() time.Time
}

// NewService creates a room service. relay may be nil to disable the lock relay.
func NewService(rooms store.Collection, relay queue.Publisher) *Service {
	return &Service{rooms: rooms, relay: relay, now: time.Now}
}

// SetLock sets a room's lock status. A room already in the requested state
// is reported as not found, the same as an unknown room.
func (s *Service) SetLock(ctx context.Context, roomID, status string) error {
	if roomID == "" || (status != Locked && status != Unlocked) {
		return apperr.Validation("Invalid parameters.")
	}
	res, err := s.rooms.UpdateOne(ctx, store.Filter{Key: roomID}, store.Document{"lock_status": status})
	if err != nil {
		return apperr.Internal("Server error during DB update.", fmt.Errorf("set lock %s: %w", roomID, err))
	}
	if res.Modified == 0 {
		return apperr.NotFound(fmt.Sprintf("Room %s not found or status already %s.", roomID, status))
	}
	lockChanges.WithLabelValues(status).Inc()
	log.Printf("room %s lock status changed to %s", roomID, status)
	s.publish(ctx, LockCommand{RoomID: roomID, Status: status, IssuedAt: s.now().UTC()})
	return nil
}

func (s *Service) publish(ctx context.Context, cmd LockCommand) {
	if s.relay == nil {
		return
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("encode lock command for %s: %v", cmd.RoomID, err)
		return
	}
	if err := s.relay.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		log.Printf("queue publish failed for room %s: %v", cmd.RoomID, err)
	}
}

// LockStatus returns the stored lock status of a room.
func (s *Service) LockStatus(ctx context.Context, roomID string) (string, error) {
	doc, err := s.rooms.FindOne(ctx, store.Filter{Key: roomID})
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.NotFound(fmt.Sprintf("Room ID %s not found.", roomID))
	}
	if err != nil {
		return "", apperr.Internal("Server error", fmt.Errorf("get room %s: %w", roomID, err))
	}
	return doc.String("lock_status"), nil
}

// List returns every room document.
func (s *Service) List(ctx context.Context) ([]store.Document, error) {
	docs, err := s.rooms.FindMany(ctx, store.Filter{})
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list rooms: %w", err))
	}
	return docs, nil
}
