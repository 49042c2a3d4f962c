package realtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/events"
)

// Bridge fans domain events out to WebSocket subscribers. Every job event
// lands on the board topic and on the job's own topic.
type Bridge struct {
	hub    *Hub
	logger *zap.Logger
}

func NewBridge(hub *Hub, logger *zap.Logger) *Bridge {
	return &Bridge{hub: hub, logger: logger}
}

// Attach subscribes the bridge to the dispatcher's job events.
func (b *Bridge) Attach(d events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventJobCreated,
		events.EventJobUpdated,
		events.EventJobReaped,
	} {
		d.Subscribe(t, b.handle)
	}
}

func (b *Bridge) handle(_ context.Context, ev events.Event) error {
	b.hub.Broadcast(TopicBoard, string(ev.Type), ev.Payload)
	if ev.JobID != "" {
		b.hub.Broadcast(JobTopic(ev.JobID), string(ev.Type), ev.Payload)
	}
	b.logger.Debug("event pushed", zap.String("type", string(ev.Type)), zap.String("job_id", ev.JobID))
	return nil
}
