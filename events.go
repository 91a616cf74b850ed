package goAccount

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goAccount/internal/dispatch"
	"github.com/MrEthical07/goAccount/logging"
)

// EventName identifies a lifecycle event.
type EventName string

// Lifecycle events, published after the flow's transaction commits.
const (
	EventUserLoggedIn     EventName = "on_user_logged_in"
	EventUserRegistration EventName = "on_user_registration"
	EventConfirmedUser    EventName = "on_confirmed_user"
	EventForgotPassword   EventName = "on_forgot_password"
	EventResetPassword    EventName = "on_reset_password"
)

// Event is one published lifecycle fact. User never carries a password hash.
type Event struct {
	Name      EventName `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	User      *User     `json:"user,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// EventHandler observes events. A returned error or a panic is logged and
// counted; it never reaches the flow that published the event.
type EventHandler func(ctx context.Context, ev Event) error

// EventSink receives every published event, after subscribers.
type EventSink interface {
	Emit(ctx context.Context, ev Event)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a buffered channel. Events that do not
// fit are dropped and counted.
type ChannelSink struct {
	events  chan Event
	dropped atomic.Uint64
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(_ context.Context, ev Event) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events found the channel full.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON document per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, ev Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// EventBus fans lifecycle events out to subscribers and sinks on a
// background goroutine. Subscriptions may be added at any time.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventName][]EventHandler
	all      []EventHandler
	sinks    []EventSink

	dispatcher *dispatch.Dispatcher[Event]
	logger     logging.Logger
	metrics    *Metrics
}

func newEventBus(cfg EventsConfig, logger logging.Logger, metrics *Metrics) *EventBus {
	if logger == nil {
		logger = logging.Nop()
	}
	b := &EventBus{
		handlers: make(map[EventName][]EventHandler),
		logger:   logger,
		metrics:  metrics,
	}
	b.dispatcher = dispatch.New(dispatch.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, b.deliver)
	return b
}

// Subscribe registers h for events named name.
func (b *EventBus) Subscribe(name EventName, h EventHandler) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

// SubscribeAll registers h for every event.
func (b *EventBus) SubscribeAll(h EventHandler) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	b.all = append(b.all, h)
	b.mu.Unlock()
}

// AddSink registers an outbound sink.
func (b *EventBus) AddSink(s EventSink) {
	if b == nil || s == nil {
		return
	}
	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()
}

// Publish queues ev. It reports false when the bus is disabled, closed or
// full; the caller carries on either way.
func (b *EventBus) Publish(ctx context.Context, ev Event) bool {
	if b == nil {
		return false
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return b.dispatcher.Emit(ctx, ev)
}

// Close stops intake and waits until queued events are delivered.
func (b *EventBus) Close() {
	if b == nil {
		return
	}
	b.dispatcher.Close()
}

// Dropped returns the number of events discarded for backpressure.
func (b *EventBus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dispatcher.Dropped()
}

func (b *EventBus) deliver(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers[ev.Name])+len(b.all))
	handlers = append(handlers, b.handlers[ev.Name]...)
	handlers = append(handlers, b.all...)
	sinks := append([]EventSink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.invoke(ctx, h, ev); err != nil {
			b.metrics.Inc(MetricEventHandlerFailure)
			b.logger.Warn(ctx, "event handler failed", "event", string(ev.Name), "error", err)
		}
	}
	for _, s := range sinks {
		emit := func(ctx context.Context, ev Event) error {
			s.Emit(ctx, ev)
			return nil
		}
		if err := b.invoke(ctx, emit, ev); err != nil {
			b.metrics.Inc(MetricEventHandlerFailure)
			b.logger.Warn(ctx, "event sink failed", "event", string(ev.Name), "error", err)
		}
	}
}

func (b *EventBus) invoke(ctx context.Context, h EventHandler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, ev)
}
