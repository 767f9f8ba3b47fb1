package evf

// Tunable defaults, matching the original compile-time configuration
// constants.
const (
	DefaultMaxActiveObjects           = 32
	DefaultMaxUserEventTypes          = 32
	DefaultEventQueueLength           = defaultEventQueueLength
	DefaultActiveObjectNameLength     = 32
	DefaultActiveObjectMaxSubscribers = 32
	DefaultPriorityMax                = 32
)

// runtimeConfig holds the resolved configuration for a Runtime, built from
// defaults plus any Options supplied to NewRuntime.
type runtimeConfig struct {
	maxActiveObjects    int
	maxUserEventTypes   int
	maxNameLength       int
	maxSubscriptions    int
	priorityMax         int
	assertionsEnabled   bool
	logger              Logger
}

// Option configures a Runtime at construction: a small interface wrapping
// a closure over the config struct, applied in resolveOptions before the
// Runtime is built.
type Option interface {
	apply(*runtimeConfig)
}

type optionFunc func(*runtimeConfig)

func (f optionFunc) apply(c *runtimeConfig) { f(c) }

// WithMaxActiveObjects overrides MAX_ACTIVE_OBJECTS.
func WithMaxActiveObjects(n int) Option {
	return optionFunc(func(c *runtimeConfig) { c.maxActiveObjects = n })
}

// WithMaxUserEventTypes overrides MAX_USER_EVENT_TYPES.
func WithMaxUserEventTypes(n int) Option {
	return optionFunc(func(c *runtimeConfig) { c.maxUserEventTypes = n })
}

// WithActiveObjectNameLength overrides AO_MAX_NAME_LENGTH (enforced as a
// byte-length check, since Go strings aren't fixed-size storage the way
// the original's char array was).
func WithActiveObjectNameLength(n int) Option {
	return optionFunc(func(c *runtimeConfig) { c.maxNameLength = n })
}

// WithActiveObjectMaxSubscriptions overrides AO_MAX_SUBSCRIPTIONS.
func WithActiveObjectMaxSubscriptions(n int) Option {
	return optionFunc(func(c *runtimeConfig) { c.maxSubscriptions = n })
}

// WithPriorityMax overrides PRIORITY_MAX, the number of distinct priority
// levels the scheduler's bucket array supports (valid priorities are
// [0, PriorityMax)).
func WithPriorityMax(n int) Option {
	return optionFunc(func(c *runtimeConfig) { c.priorityMax = n })
}

// WithAssertionsEnabled mirrors ASSERTIONS_ENABLED: when true, programming
// errors (InvalidState, InvalidType, CapacityExceeded) are additionally
// routed through Port.Assert, in addition to being returned as a typed
// error.
func WithAssertionsEnabled(enabled bool) Option {
	return optionFunc(func(c *runtimeConfig) { c.assertionsEnabled = enabled })
}

// WithLogger overrides the structured logger used for lifecycle,
// delivery-failure, and timer diagnostics. The default logs to stderr via
// a slog text handler.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *runtimeConfig) { c.logger = l })
}

// resolveOptions builds a config from defaults, then applies overrides in
// the order supplied.
func resolveOptions(opts []Option) *runtimeConfig {
	cfg := &runtimeConfig{
		maxActiveObjects:  DefaultMaxActiveObjects,
		maxUserEventTypes: DefaultMaxUserEventTypes,
		maxNameLength:     DefaultActiveObjectNameLength,
		maxSubscriptions:  DefaultActiveObjectMaxSubscribers,
		priorityMax:       DefaultPriorityMax,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}
	return cfg
}
