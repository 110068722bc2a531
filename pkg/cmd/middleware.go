package cmd

import "context"

// Middleware wraps a handler (e.g. logging, permission check, metrics).
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Wrap returns a copy of c whose handler is replaced by run. The descriptor
// fields (name, aliases, params, subcommands) are shared with the original,
// so the wrapped command resolves and converts identically.
func Wrap(c *Command, run Handler) *Command {
	clone := *c
	clone.handler = run
	return &clone
}

// Guard wraps a handler with a predicate; when the predicate returns false
// the handler is skipped without error.
func Guard(allow func(ctx context.Context, inv *Invocation) bool) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			if !allow(ctx, inv) {
				return nil
			}
			return next(ctx, inv)
		}
	}
}
