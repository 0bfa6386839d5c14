/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/events"
	"github.com/josephgoksu/taskgraph/internal/memory"
	"github.com/josephgoksu/taskgraph/internal/metrics"
	"github.com/josephgoksu/taskgraph/internal/telemetry"
)

// appRuntime owns everything a command opens: the store, the event
// publisher and the telemetry client.
type appRuntime struct {
	store     *memory.SQLiteStore
	metrics   *metrics.Metrics
	events    events.Publisher
	telemetry telemetry.Client
	started   time.Time

	ctx      *app.Context
	tasks    *app.TaskApp
	projects *app.ProjectApp
}

// openApp opens the store in the configured data directory and wires the
// app layer. Callers must Close the result.
func openApp() (*appRuntime, error) {
	store, err := memory.NewSQLiteStore(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open store in %s: %w", cfg.Data.Dir, err)
	}
	rt := &appRuntime{
		store:     store,
		metrics:   metrics.New(),
		events:    events.Noop{},
		telemetry: openTelemetry(),
		started:   time.Now(),
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.DialNATS(events.NATSOptions{
			URL:           cfg.Events.NATSURL,
			SubjectPrefix: cfg.Events.SubjectPrefix,
			Logger:        log,
		})
		if err != nil {
			// Events are best effort: a missing broker must not block task work.
			log.Warn("event publishing disabled", "url", cfg.Events.NATSURL, "error", err)
		} else {
			rt.events = pub
		}
	}

	rt.ctx = app.NewContext(store,
		app.WithLogger(log),
		app.WithEvents(rt.events),
		app.WithMetrics(rt.metrics),
		app.WithTelemetry(rt.telemetry),
	)
	rt.tasks = app.NewTaskApp(rt.ctx)
	rt.projects = app.NewProjectApp(rt.ctx)
	log.Debug("store opened", "path", store.Path())
	return rt, nil
}

func openTelemetry() telemetry.Client {
	state, err := telemetry.LoadState(cfg.Data.Dir)
	if err != nil {
		log.Debug("telemetry state unreadable", "error", err)
		return telemetry.NoopClient{}
	}
	if cfg.Telemetry.Enabled {
		state.Enabled = true
	}
	client, err := telemetry.New(telemetry.Options{
		APIKey:   cfg.Telemetry.APIKey,
		Endpoint: cfg.Telemetry.Endpoint,
		Version:  version,
		State:    state,
	})
	if err != nil {
		log.Debug("telemetry disabled", "error", err)
		return telemetry.NoopClient{}
	}
	return client
}

// Close flushes telemetry and events and closes the store.
func (rt *appRuntime) Close(command string, cmdErr error) error {
	rt.telemetry.Track(telemetry.EventCommandExecuted, telemetry.Properties{
		"command":     command,
		"success":     cmdErr == nil,
		"duration_ms": time.Since(rt.started).Milliseconds(),
	})
	return errors.Join(rt.telemetry.Close(), rt.events.Close(), rt.store.Close())
}

// withApp runs fn with an open runtime and closes it afterwards.
func withApp(command string, fn func(rt *appRuntime) error) (err error) {
	rt, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(command, err); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(rt)
}
