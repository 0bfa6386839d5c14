package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client records usage events.
type Client interface {
	// Track enqueues an event and returns immediately. No-op when disabled.
	Track(event string, properties map[string]any)
	// Close flushes pending events.
	Close() error
}

// Properties is shorthand for event properties.
type Properties = map[string]any

// enqueuer is the subset of the PostHog client we use; tests substitute it.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// Options configures New.
type Options struct {
	APIKey string
	// Endpoint overrides the PostHog host, for self-hosted instances.
	Endpoint string
	Version  string
	State    *State
}

// PostHogClient sends events to PostHog in the background.
type PostHogClient struct {
	mu      sync.RWMutex
	client  enqueuer
	state   *State
	version string
	closed  bool
}

// New returns a PostHog client when opts.State is enabled and an API key is
// set, and a NoopClient otherwise.
func New(opts Options) (Client, error) {
	if opts.APIKey == "" || !opts.State.IsEnabled() {
		return NoopClient{}, nil
	}
	cfg := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietLogger{},
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	ph, err := posthog.NewWithConfig(opts.APIKey, cfg)
	if err != nil {
		return nil, err
	}
	return newPostHogClient(ph, opts.State, opts.Version), nil
}

func newPostHogClient(enq enqueuer, state *State, version string) *PostHogClient {
	return &PostHogClient{client: enq, state: state, version: version}
}

func (c *PostHogClient) Track(event string, properties map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || !c.state.IsEnabled() {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("app_version", c.version)
	// Anonymous events only: no person profiles.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.state.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient drops every event.
type NoopClient struct{}

func (NoopClient) Track(string, map[string]any) {}

func (NoopClient) Close() error { return nil }

// quietLogger keeps PostHog transport warnings out of command output.
type quietLogger struct{}

func (quietLogger) Debugf(string, ...interface{}) {}
func (quietLogger) Logf(string, ...interface{})   {}
func (quietLogger) Warnf(string, ...interface{})  {}
func (quietLogger) Errorf(string, ...interface{}) {}
