package cmd

import "strings"

// Command is the descriptor that marks a handler as invocable: naming,
// declared parameter shape, and the subcommand tree. Descriptors are built
// once at definition time and are immutable afterwards, except that
// Subcommand appends to the subcommand list; entries are never removed or
// reordered for the lifetime of the process.
type Command struct {
	name        string
	description string
	doc         string
	aliases     []string
	sub         bool
	subcommands []*Command
	params      []Param
	handler     Handler
	owner       any
}

// Option customizes a Command at definition time.
type Option func(*Command)

// WithDescription sets the one-line description.
func WithDescription(d string) Option {
	return func(c *Command) { c.description = d }
}

// WithDoc sets the long-form help text. When no description is given, the
// first line of the doc text becomes the description.
func WithDoc(doc string) Option {
	return func(c *Command) { c.doc = doc }
}

// WithAliases sets alternative names. Order is preserved.
func WithAliases(aliases ...string) Option {
	return func(c *Command) { c.aliases = aliases }
}

// WithParams declares the parameter shape the dispatcher converts tokens
// against. Panics on shapes where a later parameter could never receive a
// token (see validateParams).
func WithParams(params ...Param) Option {
	return func(c *Command) { c.params = params }
}

// WithOwner records the plugin instance the command belongs to. Standalone
// commands have no owner.
func WithOwner(owner any) Option {
	return func(c *Command) { c.owner = owner }
}

// New builds a command descriptor. The name is required; the handler runs
// when the dispatcher has converted the argument tokens. Invalid parameter
// shapes panic, in the spirit of regexp.MustCompile: command definition is
// programmer input, not user input.
func New(name string, handler Handler, opts ...Option) *Command {
	if name == "" {
		panic("cmd: command name must not be empty")
	}
	c := &Command{name: name, handler: handler}
	for _, opt := range opts {
		opt(c)
	}
	if c.description == "" && c.doc != "" {
		c.description = firstLine(c.doc)
	}
	if err := validateParams(name, c.params); err != nil {
		panic("cmd: " + err.Error())
	}
	return c
}

// Subcommand defines a nested command and appends it to this command's
// subcommand list. The nested descriptor is independent: annotating the same
// handler under two parents produces two descriptors.
func (c *Command) Subcommand(name string, handler Handler, opts ...Option) *Command {
	sub := New(name, handler, opts...)
	sub.sub = true
	sub.owner = c.owner
	c.subcommands = append(c.subcommands, sub)
	return sub
}

// Name returns the primary command name.
func (c *Command) Name() string { return c.name }

// Description returns the one-line description, possibly empty.
func (c *Command) Description() string { return c.description }

// Doc returns the long-form help text, possibly empty.
func (c *Command) Doc() string { return c.doc }

// Aliases returns the alias list in declaration order.
func (c *Command) Aliases() []string { return c.aliases }

// IsSubcommand reports whether the command was defined via Subcommand.
func (c *Command) IsSubcommand() bool { return c.sub }

// Subcommands returns the registered subcommands in registration order.
func (c *Command) Subcommands() []*Command { return c.subcommands }

// Params returns the declared parameter shape.
func (c *Command) Params() []Param { return c.params }

// Handler returns the execution handler.
func (c *Command) Handler() Handler { return c.handler }

// Owner returns the owning plugin instance, or nil for standalone commands.
func (c *Command) Owner() any { return c.owner }

// Matches reports whether token equals the primary name or any alias.
func (c *Command) Matches(token string) bool {
	if c.name == token {
		return true
	}
	for _, a := range c.aliases {
		if a == token {
			return true
		}
	}
	return false
}

// FindSubcommand returns the first subcommand whose name or alias equals
// token, or nil.
func (c *Command) FindSubcommand(token string) *Command {
	for _, sub := range c.subcommands {
		if sub.Matches(token) {
			return sub
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
