package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel the authority publishes to.
const DefaultRedisChannel = "seatlock:updates"

// RedisDialer subscribes to a redis pub/sub channel carrying the same
// notifications as the websocket endpoint.
type RedisDialer struct {
	client  *redis.Client
	channel string
}

// NewRedisDialer builds a dialer for addr. Close releases the client.
func NewRedisDialer(addr, channel string) *RedisDialer {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisDialer{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

// NewRedisDialerFromClient reuses an existing client.
func NewRedisDialerFromClient(client *redis.Client, channel string) *RedisDialer {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisDialer{client: client, channel: channel}
}

// Dial subscribes and waits for the subscription to be confirmed.
func (d *RedisDialer) Dial(ctx context.Context) (Conn, error) {
	pubsub := d.client.Subscribe(ctx, d.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", d.channel, err)
	}
	return &redisConn{pubsub: pubsub}, nil
}

// Close closes the underlying client.
func (d *RedisDialer) Close() error {
	return d.client.Close()
}

type redisConn struct {
	pubsub *redis.PubSub
}

func (r *redisConn) Read(ctx context.Context) ([]byte, error) {
	msg, err := r.pubsub.ReceiveMessage(ctx)
	if err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return nil, fmt.Errorf("subscription closed: %w", err)
		}
		return nil, err
	}
	return []byte(msg.Payload), nil
}

func (r *redisConn) Close() error {
	return r.pubsub.Close()
}
