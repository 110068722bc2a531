package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"sync"

	"github.com/keshon/dispatchkit/pkg/cmd"
	"github.com/keshon/dispatchkit/pkg/jobmgr"
	"github.com/keshon/dispatchkit/pkg/limiter"
	"github.com/keshon/dispatchkit/pkg/util"
)

// Policy gates which messages continue past the filter step.
type Policy struct {
	IgnoreBots   bool // drop messages from automated accounts
	SelfOnly     bool // only the host identity may invoke commands
	IgnoreGuilds bool // drop messages inside grouped conversation contexts
	IgnoreDMs    bool // drop messages outside grouped conversation contexts
}

// Config holds construction options for a Manager. Exactly one prefix source
// is required: Check, PrefixFunc, Prefixes or Prefix (checked in that
// order). Everything else defaults.
type Config struct {
	Check      MessageCheck
	Prefix     string
	Prefixes   []string
	PrefixFunc PrefixFunc

	Policy Policy
	SelfID string // host identity, compared against message authors

	Limiter    *limiter.Adaptive
	Converters *ConverterRegistry
	Events     *Emitter
	Jobs       *jobmgr.Manager
	Logger     *log.Logger
}

// registration is one live plugin: the instance plus the handle of its
// background task. Lifetime of the job equals lifetime of the registration.
type registration struct {
	plugin  Plugin
	name    string
	jobName string
}

// Manager owns command dispatch and plugin lifecycle. Dispatch reads the
// command tables while load/unload mutates them; all table access is
// serialized through the manager's lock, so resolution never observes a
// half-updated table.
type Manager struct {
	check      MessageCheck
	policy     Policy
	selfID     string
	limiter    *limiter.Adaptive
	converters *ConverterRegistry
	events     *Emitter
	jobs       *jobmgr.Manager
	logger     *log.Logger
	registry   *cmd.Registry // standalone commands

	mu             sync.RWMutex
	plugins        map[string]*registration
	pluginCommands map[string]map[string]*cmd.Command
	modulePlugins  map[string][]string
}

// New creates a Manager. It registers the built-in help command and a
// default command_error handler that logs failures until the host registers
// its own handler.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	check := cfg.Check
	switch {
	case check != nil:
	case cfg.PrefixFunc != nil:
		check = DynamicPrefixCheck(cfg.PrefixFunc)
	case len(cfg.Prefixes) > 0:
		check = PrefixCheck(cfg.Prefixes...)
	case cfg.Prefix != "":
		check = PrefixCheck(cfg.Prefix)
	default:
		return nil, errors.New("dispatch: must provide one of Check, PrefixFunc, Prefixes or Prefix")
	}

	m := &Manager{
		check:          check,
		policy:         cfg.Policy,
		selfID:         cfg.SelfID,
		limiter:        cfg.Limiter,
		converters:     cfg.Converters,
		events:         cfg.Events,
		jobs:           cfg.Jobs,
		logger:         cfg.Logger,
		registry:       cmd.NewRegistry(),
		plugins:        make(map[string]*registration),
		pluginCommands: make(map[string]map[string]*cmd.Command),
		modulePlugins:  make(map[string][]string),
	}
	if m.converters == nil {
		m.converters = NewConverterRegistry()
	}
	if m.events == nil {
		m.events = NewEmitter()
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.jobs == nil {
		m.jobs = jobmgr.NewManager(func(msg string) {
			m.logger.Printf("[INFO] job %s", msg)
		})
	}

	m.registry.Register(m.helpCommand())
	m.registerDefaultErrorHandler()
	return m, nil
}

// Events returns the manager's signal emitter.
func (m *Manager) Events() *Emitter { return m.events }

// Converters returns the manager's converter registry.
func (m *Manager) Converters() *ConverterRegistry { return m.converters }

// Registry returns the standalone command registry.
func (m *Manager) Registry() *cmd.Registry { return m.registry }

// Jobs returns the background task supervisor.
func (m *Manager) Jobs() *jobmgr.Manager { return m.jobs }

// AddCommand registers a standalone command under its name and aliases.
func (m *Manager) AddCommand(c *cmd.Command) { m.registry.Register(c) }

// RemoveCommand drops a standalone command by name and returns it, or nil.
func (m *Manager) RemoveCommand(name string) *cmd.Command { return m.registry.Remove(name) }

// --- Plugin lifecycle ---

// LoadPlugin loads a single plugin: the Load hook runs first, then the Run
// hook is started as a cancellable background task, and only once that task
// is live is the plugin registered and its commands indexed. A Load failure
// aborts everything; no task starts, nothing registers. Loading a name that
// is already loaded is a no-op: no hooks run and the existing registration
// is untouched.
func (m *Manager) LoadPlugin(ctx context.Context, p Plugin) error {
	return m.loadPlugin(ctx, p, "")
}

// LoadPlugins loads a batch of plugins under a module key, allowing the
// whole batch to be unloaded later via UnloadModule. Loading stops at the
// first failure.
func (m *Manager) LoadPlugins(ctx context.Context, module string, plugins ...Plugin) error {
	for _, p := range plugins {
		if err := m.loadPlugin(ctx, p, module); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) loadPlugin(ctx context.Context, p Plugin, module string) error {
	name := pluginName(p)

	m.mu.RLock()
	_, exists := m.plugins[name]
	m.mu.RUnlock()
	if exists {
		// already in the target state; the existing registration stands
		return nil
	}

	if err := p.Load(ctx); err != nil {
		return fmt.Errorf("dispatch: plugin %q load hook: %w", name, err)
	}

	// StartAsync returns once the runner goroutine is live, so every
	// registered plugin has a valid cancellation handle.
	jobName := "plugin:" + name
	if err := m.jobs.StartAsync(jobName, p.Run); err != nil {
		return fmt.Errorf("dispatch: plugin %q run task: %w", name, err)
	}

	table := make(map[string]*cmd.Command)
	for _, c := range p.Commands() {
		table[c.Name()] = c
		for _, alias := range c.Aliases() {
			table[alias] = c
		}
	}

	m.mu.Lock()
	m.plugins[name] = &registration{plugin: p, name: name, jobName: jobName}
	m.pluginCommands[name] = table
	if module != "" {
		m.modulePlugins[module] = append(m.modulePlugins[module], name)
	}
	m.mu.Unlock()

	m.logger.Printf("[INFO] Loaded plugin: %s (%d commands)", name, len(table))
	return nil
}

// UnloadPlugin unloads a plugin by name: its background task is cancelled
// and awaited first, so the Unload hook observes a quiesced task, then the
// plugin's names and aliases are dropped from lookup. Unloading a name that
// is not loaded is a no-op returning nil.
func (m *Manager) UnloadPlugin(ctx context.Context, name string) (Plugin, error) {
	m.mu.Lock()
	reg, ok := m.plugins[name]
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	delete(m.plugins, name)
	m.mu.Unlock()

	if err := m.jobs.Stop(reg.jobName); err != nil {
		m.logger.Printf("[WARN] Plugin %s task already stopped: %v", name, err)
	}

	hookErr := reg.plugin.Unload(ctx)

	m.mu.Lock()
	delete(m.pluginCommands, name)
	for module, names := range m.modulePlugins {
		for i, n := range names {
			if n == name {
				m.modulePlugins[module] = append(names[:i], names[i+1:]...)
				break
			}
		}
		if len(m.modulePlugins[module]) == 0 {
			delete(m.modulePlugins, module)
		}
	}
	m.mu.Unlock()

	if hookErr != nil {
		return reg.plugin, fmt.Errorf("dispatch: plugin %q unload hook: %w", name, hookErr)
	}
	m.logger.Printf("[INFO] Unloaded plugin: %s", name)
	return reg.plugin, nil
}

// UnloadPluginByType unloads the first loaded plugin whose concrete type
// matches proto's. When several instances share a type, which one is
// affected depends on map iteration order; use UnloadPluginInstance for
// identity-based unload.
func (m *Manager) UnloadPluginByType(ctx context.Context, proto Plugin) (Plugin, error) {
	want := reflect.TypeOf(proto)

	m.mu.RLock()
	name := ""
	for n, reg := range m.plugins {
		if reflect.TypeOf(reg.plugin) == want {
			name = n
			break
		}
	}
	m.mu.RUnlock()

	if name == "" {
		return nil, nil
	}
	return m.UnloadPlugin(ctx, name)
}

// UnloadPluginInstance unloads exactly the given plugin instance, or is a
// no-op when that instance is not loaded.
func (m *Manager) UnloadPluginInstance(ctx context.Context, p Plugin) (Plugin, error) {
	m.mu.RLock()
	name := ""
	for n, reg := range m.plugins {
		if reg.plugin == p {
			name = n
			break
		}
	}
	m.mu.RUnlock()

	if name == "" {
		return nil, nil
	}
	return m.UnloadPlugin(ctx, name)
}

// UnloadModule unloads every plugin loaded under the module key.
func (m *Manager) UnloadModule(ctx context.Context, module string) error {
	m.mu.RLock()
	names := append([]string(nil), m.modulePlugins[module]...)
	m.mu.RUnlock()

	var errs []error
	for _, name := range names {
		if _, err := m.UnloadPlugin(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Plugin returns a loaded plugin by name, or nil.
func (m *Manager) Plugin(name string) Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if reg, ok := m.plugins[name]; ok {
		return reg.plugin
	}
	return nil
}

// PluginNames returns the names of all loaded plugins.
func (m *Manager) PluginNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.plugins))
	for n := range m.plugins {
		names = append(names, n)
	}
	return names
}

// --- Resolution ---

// LookupCommand resolves a single command word across the standalone table
// and every loaded plugin's table. A standalone command shadows any
// identically-named plugin command; across plugins the iteration order is
// unspecified and the first match wins.
func (m *Manager) LookupCommand(name string) *cmd.Command {
	if c := m.registry.Get(name); c != nil {
		return c
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, table := range m.pluginCommands {
		if c, ok := table[name]; ok {
			return c
		}
	}
	return nil
}

// GetCommand resolves a space-separated dotted path such as "role add",
// walking subcommand tables by name or alias. Segments are split plainly on
// whitespace; quotes are ordinary characters here, unlike message
// tokenization. Returns nil when any segment fails to match.
func (m *Manager) GetCommand(dotted string) *cmd.Command {
	tokens := strings.Fields(dotted)
	if len(tokens) == 0 {
		return nil
	}

	command := m.LookupCommand(tokens[0])
	if command == nil {
		return nil
	}
	for _, token := range tokens[1:] {
		command = command.FindSubcommand(token)
		if command == nil {
			return nil
		}
	}
	return command
}

// --- Dispatch pipeline ---

// HandleMessage runs the dispatch pipeline for one inbound message:
// filter, prefix match, resolve, convert, invoke. No match at any stage is
// silent. A dispatch-level failure is caught exactly once here and routed
// to the emitter as two signals: command_error, then the error's own kind
// signal. The returned error covers infrastructure failures (check or
// emitter), not command failures.
func (m *Manager) HandleMessage(ctx context.Context, msg *Message) error {
	if msg == nil || msg.Author.ID == "" {
		return nil
	}
	if msg.Author.Bot && m.policy.IgnoreBots {
		return nil
	}
	if m.policy.SelfOnly && msg.Author.ID != m.selfID {
		return nil
	}
	if msg.InGuild() && m.policy.IgnoreGuilds {
		return nil
	}
	if !msg.InGuild() && m.policy.IgnoreDMs {
		return nil
	}

	match, err := m.check(ctx, msg)
	if err != nil {
		return fmt.Errorf("dispatch: message check: %w", err)
	}
	if match == nil {
		return nil
	}

	if m.limiter != nil && !m.limiter.Allow() {
		m.logger.Printf("[WARN] Rate limited, dropping command %q", match.Word)
		return nil
	}

	cctx := &Context{
		Message:    msg,
		RootWord:   match.Word,
		FullTokens: match.Tokens,
		Tokens:     match.Tokens,
		Manager:    m,
	}

	runErr := cctx.run(ctx)
	if runErr == nil {
		if m.limiter != nil {
			m.limiter.Success()
		}
		return nil
	}

	var derr DispatchError
	if !errors.As(runErr, &derr) {
		return runErr
	}
	return errors.Join(
		m.events.Fire(ctx, SignalCommandError, derr, cctx),
		m.events.Fire(ctx, derr.Signal(), derr, cctx),
	)
}

// DispatchEvent fans an event out to every loaded plugin listener for it.
// The listener set is snapshotted under the registry lock, so a plugin
// mid-load or mid-unload is included or excluded atomically. All listeners
// run concurrently; the call returns after the whole group finishes, with
// all failures joined.
func (m *Manager) DispatchEvent(ctx context.Context, event string, args ...any) error {
	m.mu.RLock()
	var handlers []EventHandler
	for _, reg := range m.plugins {
		if l, ok := reg.plugin.(Listener); ok {
			if h, ok := l.Listeners()[event]; ok {
				handlers = append(handlers, h)
			}
		}
	}
	m.mu.RUnlock()

	return util.FanOut(ctx, len(handlers), len(handlers), func(ctx context.Context, i int) error {
		return handlers[i](ctx, args...)
	})
}

// registerDefaultErrorHandler installs the fallback command_error handler.
// It logs full error detail, but retires itself the first time it notices a
// second handler on the signal, so reports are never duplicated once the
// host customizes reporting.
func (m *Manager) registerDefaultErrorHandler() {
	var off func()
	off = m.events.On(SignalCommandError, func(_ context.Context, args ...any) error {
		if m.events.HandlerCount(SignalCommandError) > 1 {
			off()
			return nil
		}
		if len(args) == 0 {
			return nil
		}
		err, _ := args[0].(error)
		if cctx, ok := argContext(args); ok {
			m.logger.Printf("[ERR] Error in command %q: %+v", cctx.RootWord, err)
		} else {
			m.logger.Printf("[ERR] Error in command: %+v", err)
		}
		return nil
	})
}

func argContext(args []any) (*Context, bool) {
	for _, a := range args {
		if c, ok := a.(*Context); ok {
			return c, true
		}
	}
	return nil, false
}
