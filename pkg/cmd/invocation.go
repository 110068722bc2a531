// Package cmd provides a transport-agnostic command model: a command is a
// descriptor with a name, aliases, a declared parameter shape, and a handler
// invoked with converted arguments. How commands are matched and dispatched
// (message prefix, CLI, tests) is defined by the dispatch layer that reads
// these descriptors.
package cmd

import "context"

// Invocation carries the converted input a dispatcher passes to a handler:
// positional arguments, keyword arguments, and an opaque payload. Dispatchers
// set Data to their per-message context.
type Invocation struct {
	Args   []any
	Kwargs map[string]any
	Data   any
}

// Handler is the universal execution contract for a command.
type Handler func(ctx context.Context, inv *Invocation) error
