// FilePath: internal/notify/redis.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// AlertEvent is the payload published when a device's active alert set
// changes. An empty Alerts map means the device returned to normal.
type AlertEvent struct {
	DeviceID  string            `json:"device_id"`
	Alerts    map[string]string `json:"alerts"`
	Timestamp time.Time         `json:"timestamp"`
}

// RedisPublisher fans alert transitions out to a Redis channel so
// external notifiers (mailers, pagers, dashboards) can subscribe
// without touching the engine.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(addr, password string, db int, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	nuts.L.Infof("[RedisPublisher] Connected to %s, publishing alerts on %q", addr, channel)
	return &RedisPublisher{client: client, channel: channel}, nil
}

// PublishAlert sends one alert transition. Failures are logged, not
// propagated: notification is best-effort and must never stall a
// device task.
func (p *RedisPublisher) PublishAlert(deviceID string, alerts map[string]string) {
	event := AlertEvent{
		DeviceID:  deviceID,
		Alerts:    alerts,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		nuts.L.Errorf("[RedisPublisher] failed to encode alert event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		nuts.L.Warnf("[RedisPublisher] failed to publish alert for %s: %v", deviceID, err)
	}
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
