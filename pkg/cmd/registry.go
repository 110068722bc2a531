package cmd

import (
	"sort"
	"sync"
)

// Registry stores standalone commands by name and alias. It does not perform
// dispatch; the dispatch layer looks commands up and invokes them with its
// own context. Safe for concurrent use: dispatch reads while plugins and
// hosts add or remove commands at runtime.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds a command under its primary name and every alias. Within the
// registry all of those keys resolve to the same descriptor. A later
// registration with a colliding name replaces the earlier entry.
func (r *Registry) Register(c *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[c.Name()] = c
	for _, alias := range c.Aliases() {
		r.commands[alias] = c
	}
}

// Get returns the command registered under name or alias, or nil.
func (r *Registry) Get(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Remove drops the command registered under name, including its aliases,
// and returns it. Returns nil if nothing is registered under name.
func (r *Registry) Remove(name string) *Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.commands[name]
	if !ok {
		return nil
	}
	for key, v := range r.commands {
		if v == c {
			delete(r.commands, key)
		}
	}
	return c
}

// GetAll returns the distinct registered commands, sorted by name.
func (r *Registry) GetAll() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[*Command]struct{}, len(r.commands))
	list := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
