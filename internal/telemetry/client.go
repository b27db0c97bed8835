package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Event names.
const (
	EventServerStarted = "server_started"
	EventTaskCreated   = "task_created"
	EventTaskCompleted = "task_completed"
	EventTasksReset    = "tasks_reset"
	EventCommand       = "command_executed"
)

// Client is the interface for telemetry clients.
type Client interface {
	// Track sends an event asynchronously. It never blocks and never fails.
	Track(event string, properties map[string]any)

	// Close flushes pending events.
	Close() error
}

// enqueuer is the part of the PostHog client we use.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient sends events to PostHog.
type PostHogClient struct {
	client  enqueuer
	config  *Config
	version string
	mu      sync.RWMutex
	closed  bool
}

// ClientConfig holds configuration for initializing the telemetry client.
type ClientConfig struct {
	APIKey   string
	Version  string
	Config   *Config
	Endpoint string // optional, for self-hosted PostHog
}

// New returns a PostHog client when telemetry is enabled and an API key is
// configured, and a NoopClient otherwise.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" || !cfg.Config.IsEnabled() {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClientWithEnqueuer(client, cfg.Config, cfg.Version), nil
}

func newPostHogClientWithEnqueuer(enq enqueuer, cfg *Config, version string) *PostHogClient {
	return &PostHogClient{client: enq, config: cfg, version: version}
}

// Track enqueues event with the standard properties added.
func (c *PostHogClient) Track(event string, properties map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed || !c.config.IsEnabled() {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("app_version", c.version)
	// No person profiles: events stay anonymous.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.config.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes the queue. Later Track calls are dropped.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient is a telemetry client that does nothing.
type NoopClient struct{}

// Track is a no-op.
func (c *NoopClient) Track(event string, properties map[string]any) {}

// Close is a no-op.
func (c *NoopClient) Close() error { return nil }

// NewNoopClient returns a client that does nothing.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// quietPostHogLogger keeps transport warnings out of the server log.
type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
