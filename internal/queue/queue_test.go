package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "lock", Body: json.RawMessage(`{"room_id":"R101"}`)}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	select {
	case msg := <-msgs:
		assert.Equal(t, "lock", msg.Type)
		assert.JSONEq(t, `{"room_id":"R101"}`, string(msg.Body))
	case <-ctx.Done():
		t.Fatal("no message consumed")
	}
}

func TestInMemoryPublishDoesNotBlockWhenFull(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, Message{Type: "lock"}))
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "lock"}), ErrFull)
}
