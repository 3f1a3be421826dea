package events

import (
	"context"
	"log"
	"time"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the server stops accepting
// requests before closing the producer, so in-flight async emits complete.
// Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine so the caller is not blocked. Errors are
// logged and dropped. producer and event may be nil; EmitAsync then returns
// without starting a goroutine. The goroutine uses context.Background() so
// request cancellation does not abort an in-flight emit.
func EmitAsync(producer Producer, event *Event) {
	if producer == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := producer.Emit(ctx, event); err != nil {
			log.Printf("events: async emit of %s failed: %v", event.Type, err)
		}
	}()
}
