package room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/queue"
	"github.com/NutMontree/kiosk/internal/store"
)

func seeded() *store.MemoryDatabase {
	db := store.NewMemoryDatabase()
	db.Seed(Collection,
		store.Document{Key: "R101", "lock_status": Locked, "room_name": "Physics Lab"},
		store.Document{Key: "R102", "lock_status": Unlocked, "room_name": "Library"},
	)
	return db
}

func TestSetLockPublishesCommand(t *testing.T) {
	ctx := context.Background()
	q := queue.NewInMemory(4)
	svc := NewService(seeded().Collection(Collection), q)

	require.NoError(t, svc.SetLock(ctx, "R101", Unlocked))

	status, err := svc.LockStatus(ctx, "R101")
	require.NoError(t, err)
	assert.Equal(t, Unlocked, status)

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	msg := <-msgs
	assert.Equal(t, MessageType, msg.Type)
	var cmd LockCommand
	require.NoError(t, json.Unmarshal(msg.Body, &cmd))
	assert.Equal(t, "R101", cmd.RoomID)
	assert.Equal(t, Unlocked, cmd.Status)
	assert.False(t, cmd.IssuedAt.IsZero())
}

func TestSetLockSameStateIsNotFound(t *testing.T) {
	svc := NewService(seeded().Collection(Collection), nil)
	err := svc.SetLock(context.Background(), "R102", Unlocked)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetLockValidation(t *testing.T) {
	svc := NewService(seeded().Collection(Collection), nil)
	for _, tc := range []struct{ room, status string }{
		{"R101", "lock"},
		{"R101", "OPEN"},
		{"R101", ""},
		{"", Locked},
	} {
		err := svc.SetLock(context.Background(), tc.room, tc.status)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), tc)
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, queue.Message) error {
	return errors.New("redis: connection refused")
}

func TestSetLockIgnoresRelayFailure(t *testing.T) {
	svc := NewService(seeded().Collection(Collection), failingPublisher{})
	assert.NoError(t, svc.SetLock(context.Background(), "R101", Unlocked))
}

func TestLockStatusUnknownRoom(t *testing.T) {
	svc := NewService(seeded().Collection(Collection), nil)
	_, err := svc.LockStatus(context.Background(), "R999")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
