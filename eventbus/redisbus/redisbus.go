// Package redisbus bridges goAccount lifecycle events onto Redis pub/sub
// so other processes can react to registrations, confirmations and
// password resets.
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/logging"
)

const defaultChannel = "ga:events"

// Sink publishes each event as JSON on a Redis channel. It implements
// goAccount.EventSink.
type Sink struct {
	redis   redis.UniversalClient
	channel string
	logger  logging.Logger
	failed  atomic.Uint64
}

// NewSink returns a sink on channel, or "ga:events" when channel is empty.
func NewSink(client redis.UniversalClient, channel string, logger logging.Logger) *Sink {
	if channel == "" {
		channel = defaultChannel
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Sink{redis: client, channel: channel, logger: logger}
}

// Emit publishes ev. Failures are logged and counted.
func (s *Sink) Emit(ctx context.Context, ev goAccount.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.failed.Add(1)
		return
	}
	if err := s.redis.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.failed.Add(1)
		s.logger.Warn(ctx, "event publish failed", "channel", s.channel, "event", string(ev.Name), "error", err)
	}
}

// Failed returns the number of events that could not be published.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}

// Listen subscribes to channel and calls handle for every decoded event
// until ctx is done. ready, when non-nil, is closed once the subscription
// is active.
func Listen(ctx context.Context, client redis.UniversalClient, channel string, ready chan<- struct{}, handle goAccount.EventHandler) error {
	if handle == nil {
		return errors.New("redisbus: handler required")
	}
	if channel == "" {
		channel = defaultChannel
	}

	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redisbus: subscribe %s: %w", channel, err)
	}
	if ready != nil {
		close(ready)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev goAccount.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			if err := handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}
