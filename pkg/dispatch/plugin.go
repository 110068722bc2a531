package dispatch

import (
	"context"
	"reflect"

	"github.com/keshon/dispatchkit/pkg/cmd"
)

// Plugin is a unit of related commands and background behavior, loadable and
// unloadable at runtime without restarting the host.
//
// The manager calls Load once before registration; a Load failure aborts the
// load with no registration and no background task. Run is started as a
// cancellable background task and is expected to run until its context is
// cancelled. Unload is called during unload, after the Run task has been
// cancelled and has returned.
type Plugin interface {
	Load(ctx context.Context) error
	Run(ctx context.Context) error
	Unload(ctx context.Context) error

	// Commands enumerates the plugin's command descriptors. It is called
	// once per load; the returned commands are indexed by name and alias.
	Commands() []*cmd.Command
}

// Named lets a plugin override its registration name. Without it the plugin
// registers under its Go type name.
type Named interface {
	PluginName() string
}

// Listener lets a plugin receive dispatched events by name. Handlers for a
// fired event run concurrently across plugins with a structured join.
type Listener interface {
	Listeners() map[string]EventHandler
}

// Base is a no-op Plugin implementation for embedding. Its Run blocks until
// cancelled so the background task stays alive without doing work.
type Base struct{}

// Load implements Plugin.
func (Base) Load(ctx context.Context) error { return nil }

// Run implements Plugin; it parks until the task is cancelled.
func (Base) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Unload implements Plugin.
func (Base) Unload(ctx context.Context) error { return nil }

// Commands implements Plugin.
func (Base) Commands() []*cmd.Command { return nil }

// pluginName resolves the registration name: the Named override when
// present, the bare type name otherwise.
func pluginName(p Plugin) string {
	if n, ok := p.(Named); ok {
		return n.PluginName()
	}
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
