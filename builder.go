package goAccount

import (
	"errors"
	"time"

	"github.com/MrEthical07/goAccount/internal/dispatch"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/logging"
	"github.com/MrEthical07/goAccount/password"
)

type subscription struct {
	name    EventName
	all     bool
	handler EventHandler
}

// Builder assembles an [Engine]. It is single use: Build may succeed once.
type Builder struct {
	config Config

	store    AccountStore
	notifier Notifier
	hasher   password.Hasher
	logger   logging.Logger
	now      func() time.Time

	sinks         []EventSink
	subscriptions []subscription

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAccountStore sets the persistence port. Required.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithNotifier sets the mail port. Required.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithPasswordHasher overrides the hasher derived from Config.Password.
func (b *Builder) WithPasswordHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides time.Now for token timestamps and account records.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithEventSink adds an outbound event sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sinks = append(b.sinks, sink)
	return b
}

// WithEventHandler subscribes h to events named name.
func (b *Builder) WithEventHandler(name EventName, h EventHandler) *Builder {
	b.subscriptions = append(b.subscriptions, subscription{name: name, handler: h})
	return b
}

// WithEventHandlerAll subscribes h to every event.
func (b *Builder) WithEventHandlerAll(h EventHandler) *Builder {
	b.subscriptions = append(b.subscriptions, subscription{all: true, handler: h})
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the flow latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and starts the engine's background
// mail and event workers. Call [Engine.Close] to stop them.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrStoreRequired
	}
	if b.notifier == nil {
		return nil, ErrNotifierRequired
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = logging.Nop()
	}

	// -------- TOKEN CODEC --------
	codec, err := jwt.NewCodec(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Audience:      cfg.Token.Audience,
		Leeway:        cfg.Token.Leeway,
		KeyID:         cfg.Token.KeyID,
		VerifyKeys:    cfg.Token.VerifyKeys,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD HASHER --------
	hasher := b.hasher
	if hasher == nil {
		hasher, err = newPasswordHasher(cfg.Password)
		if err != nil {
			return nil, err
		}
	}

	engine := &Engine{
		config:   cfg,
		store:    b.store,
		codec:    codec,
		hasher:   hasher,
		notifier: b.notifier,
		metrics:  NewMetrics(cfg.Metrics),
		logger:   logger,
		now:      now,
	}

	// -------- EVENT BUS --------
	engine.bus = newEventBus(cfg.Events, logger, engine.metrics)
	for _, s := range b.sinks {
		engine.bus.AddSink(s)
	}
	for _, s := range b.subscriptions {
		if s.all {
			engine.bus.SubscribeAll(s.handler)
			continue
		}
		engine.bus.Subscribe(s.name, s.handler)
	}

	// -------- MAIL QUEUE --------
	engine.mail = dispatch.New(dispatch.Config{
		Enabled:    true,
		BufferSize: cfg.Notifications.BufferSize,
		DropIfFull: cfg.Notifications.DropIfFull,
	}, engine.deliverMail)

	engine.deps = engine.flowDeps()

	b.built = true

	return engine, nil
}

func newPasswordHasher(cfg PasswordConfig) (password.Hasher, error) {
	switch cfg.Algorithm {
	case "bcrypt":
		bc, err := password.NewBcrypt(cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		return password.NewChain(bc)
	default:
		a2, err := password.NewArgon2(password.Config{
			Memory:           cfg.Memory,
			Time:             cfg.Time,
			Parallelism:      cfg.Parallelism,
			SaltLength:       cfg.SaltLength,
			KeyLength:        cfg.KeyLength,
			MaxPasswordBytes: cfg.MaxPasswordBytes,
		})
		if err != nil {
			return nil, err
		}
		if !cfg.AcceptLegacyBcrypt {
			return password.NewChain(a2)
		}
		bc, err := password.NewBcrypt(cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		return password.NewChain(a2, bc)
	}
}
