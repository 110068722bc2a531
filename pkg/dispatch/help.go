package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/dispatchkit/pkg/cmd"
)

// helpCommand builds the built-in standalone help command. It renders a
// plain listing of every reachable command and fires it on the emitter as
// SignalHelp, leaving presentation to the host.
func (m *Manager) helpCommand() *cmd.Command {
	handler := func(ctx context.Context, inv *cmd.Invocation) error {
		cctx, _ := inv.Data.(*Context)
		text := m.renderHelp()
		return m.events.Fire(ctx, SignalHelp, text, cctx)
	}
	return cmd.New("help", handler,
		cmd.WithDescription("Lists available commands."),
	)
}

func (m *Manager) renderHelp() string {
	byName := make(map[string]*cmd.Command)
	for _, c := range m.registry.GetAll() {
		byName[c.Name()] = c
	}

	m.mu.RLock()
	for _, table := range m.pluginCommands {
		for _, c := range table {
			// standalone commands shadow plugin commands of the same name
			if _, ok := byName[c.Name()]; !ok {
				byName[c.Name()] = c
			}
		}
	}
	m.mu.RUnlock()

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, n := range names {
		c := byName[n]
		if c.Description() != "" {
			fmt.Fprintf(&b, "  %s - %s\n", n, c.Description())
		} else {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}
	return b.String()
}
