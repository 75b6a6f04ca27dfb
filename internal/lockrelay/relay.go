// Package lockrelay forwards queued lock commands to the room hardware.
package lockrelay

import (
	"context"
	"encoding/json"
	"log"

	"github.com/NutMontree/kiosk/internal/queue"
	"github.com/NutMontree/kiosk/internal/room"
)

// Sink delivers one lock command to a lock controller.
type Sink interface {
	Deliver(ctx context.Context, cmd room.LockCommand) error
}

// LogSink only logs commands. Used when no broker is configured.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, cmd room.LockCommand) error {
	log.Printf("lockrelay: %s -> %s (no broker configured)", cmd.RoomID, cmd.Status)
	return nil
}

// Relay drains lock commands from a queue into a Sink.
type Relay struct {
	source queue.Queue
	sink   Sink
}

func New(source queue.Queue, sink Sink) *Relay {
	return &Relay{source: source, sink: sink}
}

// Run blocks until ctx is done or the queue closes. Failed deliveries are
// logged and dropped; the database remains the source of truth.
func (r *Relay) Run(ctx context.Context) error {
	messages, err := r.source.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range messages {
		if msg.Type != room.MessageType {
			continue
		}
		var cmd room.LockCommand
		if err := json.Unmarshal(msg.Body, &cmd); err != nil {
			log.Printf("lockrelay: drop malformed command: %v", err)
			continue
		}
		if err := r.sink.Deliver(ctx, cmd); err != nil {
			log.Printf("lockrelay: deliver %s %s: %v", cmd.RoomID, cmd.Status, err)
			continue
		}
		log.Printf("lockrelay: %s -> %s", cmd.RoomID, cmd.Status)
	}
	return ctx.Err()
}
