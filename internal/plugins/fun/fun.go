// Package fun bundles lightweight toy commands and a presence ticker.
package fun

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/keshon/dispatchkit/pkg/cmd"
	"github.com/keshon/dispatchkit/pkg/dispatch"

	"github.com/bwmarrin/discordgo"
)

var (
	stringType = reflect.TypeOf("")
	intType    = reflect.TypeOf(int(0))
)

// Plugin implements dispatch.Plugin.
type Plugin struct {
	dg   *discordgo.Session
	seen atomic.Int64
}

// New creates the fun plugin.
func New(dg *discordgo.Session) *Plugin {
	return &Plugin{dg: dg}
}

// PluginName implements dispatch.Named.
func (p *Plugin) PluginName() string { return "fun" }

// Load implements dispatch.Plugin.
func (p *Plugin) Load(ctx context.Context) error {
	log.Println("[INFO] Fun plugin loading")
	return nil
}

// Run refreshes the bot presence periodically until cancelled.
func (p *Plugin) Run(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.dg.UpdateGameStatus(0, "type help"); err != nil {
				log.Println("[WARN] Presence update failed:", err)
			}
		}
	}
}

// Unload implements dispatch.Plugin.
func (p *Plugin) Unload(ctx context.Context) error {
	log.Println("[INFO] Fun plugin unloaded")
	return nil
}

// Commands implements dispatch.Plugin.
func (p *Plugin) Commands() []*cmd.Command {
	ping := cmd.New("ping", p.ping,
		cmd.WithDescription("Checks whether the bot is alive."),
		cmd.WithOwner(p),
	)
	roll := cmd.New("roll", p.roll,
		cmd.WithDescription("Rolls a die."),
		cmd.WithAliases("dice"),
		cmd.WithParams(
			cmd.OptArg("sides", intType, 6),
			cmd.OptRest("reason", stringType, ""),
		),
		cmd.WithOwner(p),
	)
	echo := cmd.New("echo", p.echo,
		cmd.WithDescription("Repeats the given text."),
		cmd.WithAliases("say"),
		cmd.WithParams(cmd.VarArgs("text", stringType)),
		cmd.WithOwner(p),
	)
	seen := cmd.New("seen", p.seenCount,
		cmd.WithDescription("Shows how many messages the bot has seen."),
		cmd.WithOwner(p),
	)
	return []*cmd.Command{ping, roll, echo, seen}
}

// Listeners implements dispatch.Listener.
func (p *Plugin) Listeners() map[string]dispatch.EventHandler {
	return map[string]dispatch.EventHandler{
		"message_create": func(_ context.Context, _ ...any) error {
			p.seen.Add(1)
			return nil
		},
	}
}

func (p *Plugin) ping(ctx context.Context, inv *cmd.Invocation) error {
	latency := p.dg.HeartbeatLatency().Round(time.Millisecond)
	return p.reply(inv, fmt.Sprintf("Pong! (%s)", latency))
}

func (p *Plugin) roll(ctx context.Context, inv *cmd.Invocation) error {
	sides := inv.Args[0].(int)
	if sides < 2 {
		return p.reply(inv, "A die needs at least 2 sides.")
	}
	result := rand.Intn(sides) + 1

	text := fmt.Sprintf("Rolled %d (d%d)", result, sides)
	if reason, _ := inv.Kwargs["reason"].(string); reason != "" {
		text += " for " + reason
	}
	return p.reply(inv, text)
}

func (p *Plugin) echo(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return p.reply(inv, "Nothing to echo.")
	}
	text, _ := inv.Args[0].(string)
	return p.reply(inv, text)
}

func (p *Plugin) seenCount(ctx context.Context, inv *cmd.Invocation) error {
	return p.reply(inv, fmt.Sprintf("Seen %d messages since load.", p.seen.Load()))
}

func (p *Plugin) reply(inv *cmd.Invocation, text string) error {
	cctx := inv.Data.(*dispatch.Context)
	_, err := p.dg.ChannelMessageSend(cctx.Message.ChannelID, text)
	return err
}
