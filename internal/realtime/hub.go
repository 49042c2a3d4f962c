package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Topic names. Every job mutation is pushed on the board topic and on the
// job's own topic, so the Kanban board, the job detail view and the client
// tracker all receive snapshots without polling.
const (
	TopicBoard = "board"
	topicJob   = "jobs/"
)

// JobTopic returns the per-job topic name.
func JobTopic(jobID string) string {
	return topicJob + jobID
}

// RedisPublisher publishes to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishTopicEvent(topic, event string, payload []byte) error
}

// RedisSubscriber subscribes to topic channels and invokes handler for
// incoming events. Cancel stops the subscription; it is guaranteed to run
// before the hub releases the topic.
type RedisSubscriber interface {
	SubscribeTopic(topic string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains topic -> set of connections and broadcasts messages.
// Redis pub/sub carries events across instances: local broadcast plus
// publish to Redis.
type Hub struct {
	topics map[string]map[string]*Client
	subs   map[string]func() // cancel Redis subscription per topic
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RedisPublisher
	sub    RedisSubscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	return &Hub{
		topics: make(map[string]map[string]*Client),
		subs:   make(map[string]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to a topic. The first client on a topic starts
// the Redis subscription for it. A failed subscription leaves local
// delivery working and is logged; cross-instance push for the topic is
// degraded, not the connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.topics[c.Topic] == nil {
		h.topics[c.Topic] = make(map[string]*Client)
		if h.sub != nil {
			topic := c.Topic
			cancel, err := h.sub.SubscribeTopic(topic, func(event string, payload []byte) {
				h.broadcastLocal(topic, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Error("topic subscription failed, cross-instance push degraded",
					zap.String("topic", topic), zap.Error(err))
			} else {
				h.subs[topic] = cancel
			}
		}
	}
	h.topics[c.Topic][c.ID] = c
	count := len(h.topics[c.Topic])
	h.mu.Unlock()
	h.logger.Debug("client subscribed",
		zap.String("client_id", c.ID), zap.String("topic", c.Topic), zap.Int("subscribers", count))
}

// Unregister removes a client from its topic. The last client leaving
// cancels the Redis subscription before the topic is released.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var count int
	if m, ok := h.topics[c.Topic]; ok {
		delete(m, c.ID)
		count = len(m)
		if len(m) == 0 {
			delete(h.topics, c.Topic)
			if cancel, ok := h.subs[c.Topic]; ok {
				cancel()
				delete(h.subs, c.Topic)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client unsubscribed",
		zap.String("client_id", c.ID), zap.String("topic", c.Topic), zap.Int("subscribers", count))
}

// Broadcast sends to local clients on the topic and publishes to Redis for
// other instances.
func (h *Hub) Broadcast(topic, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.broadcastLocal(topic, event, json.RawMessage(data))
	if h.pub != nil {
		_ = h.pub.PublishTopicEvent(topic, event, data)
	}
}

func (h *Hub) broadcastLocal(topic, event string, payload json.RawMessage) {
	msg := WSMessage{Event: event, Data: payload}

	// Snapshot the membership under the lock so concurrent
	// register/unregister calls cannot mutate the map mid-iteration.
	h.mu.RLock()
	m := h.topics[topic]
	clients := make([]*Client, 0, len(m))
	for _, c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
