package dispatch

import (
	"context"
	"errors"
	"reflect"

	"github.com/keshon/dispatchkit/pkg/cmd"
)

// Context is the per-message invocation context: the matched command word,
// the token cursor, and back-references to the manager and inbound message.
// One Context exists per matched message and is discarded after the handler
// returns.
type Context struct {
	Message    *Message
	RootWord   string
	FullTokens []string
	Tokens     []string // remaining, shrinks as subcommands consume
	Manager    *Manager
	Command    *cmd.Command // resolved descriptor, set during run
}

// Converter returns the converter registered for t on the owning manager.
func (c *Context) Converter(t reflect.Type) Converter {
	return c.Manager.converters.Lookup(t)
}

// run resolves the command contained in the context and invokes it.
// Unmatched trailing tokens become argument tokens, not a resolution
// failure; a root word that resolves to nothing ends the run silently.
func (c *Context) run(ctx context.Context) error {
	command := c.Manager.LookupCommand(c.RootWord)
	if command == nil {
		return nil
	}

	tokens := c.Tokens
	for len(tokens) > 0 {
		next := command.FindSubcommand(tokens[0])
		if next == nil {
			break
		}
		command = next
		tokens = tokens[1:]
	}
	c.Tokens = tokens
	c.Command = command

	handler := command.Handler()
	if handler == nil {
		return nil
	}

	args, kwargs, err := convertArgs(c, tokens, command.Params(), c.Manager.converters)
	if err != nil {
		return err
	}

	inv := &cmd.Invocation{Args: args, Kwargs: kwargs, Data: c}
	if err := handler(ctx, inv); err != nil {
		var derr DispatchError
		if errors.As(err, &derr) {
			return err
		}
		return &InvokeError{Command: command.Name(), Err: err}
	}
	return nil
}
