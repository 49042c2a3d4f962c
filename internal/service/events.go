package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/printops/jobtrack/internal/events"
)

// publishEvent stamps and publishes an event, tolerating a nil dispatcher.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.New().String()
	event.Timestamp = time.Now().UTC()
	_ = dispatcher.Publish(ctx, event)
}
