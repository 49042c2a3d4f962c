package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "jobtrack:topic:"

type pubsubEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisPubSub bridges hub broadcasts across instances via Redis channels,
// one channel per topic.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger}
}

func (r *RedisPubSub) PublishTopicEvent(topic, event string, payload []byte) error {
	data, err := json.Marshal(pubsubEnvelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}
	return r.client.Publish(context.Background(), channelPrefix+topic, data).Err()
}

// SubscribeTopic starts a goroutine consuming the topic channel. The
// returned cancel closes the subscription and stops the goroutine.
func (r *RedisPubSub) SubscribeTopic(topic string, handler func(event string, payload []byte)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := r.client.Subscribe(ctx, channelPrefix+topic)

	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		ch := sub.Channel()
		for msg := range ch {
			var env pubsubEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warn("bad pubsub payload", zap.String("topic", topic), zap.Error(err))
				continue
			}
			handler(env.Event, env.Payload)
		}
	}()

	return func() {
		_ = sub.Close()
		cancel()
	}, nil
}
