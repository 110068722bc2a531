// Package moderation bundles guild administration commands: role
// management, custom prefixes, and per-guild plugin toggles.
package moderation

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/keshon/dispatchkit/internal/storage"
	"github.com/keshon/dispatchkit/pkg/cmd"
	"github.com/keshon/dispatchkit/pkg/dispatch"

	"github.com/bwmarrin/discordgo"
)

var stringType = reflect.TypeOf("")

// Plugin implements dispatch.Plugin.
type Plugin struct {
	dispatch.Base
	dg    *discordgo.Session
	store *storage.Storage
}

// New creates the moderation plugin.
func New(dg *discordgo.Session, store *storage.Storage) *Plugin {
	return &Plugin{dg: dg, store: store}
}

// PluginName implements dispatch.Named.
func (p *Plugin) PluginName() string { return "moderation" }

// Load implements dispatch.Plugin.
func (p *Plugin) Load(ctx context.Context) error {
	log.Println("[INFO] Moderation plugin loading")
	return nil
}

// Unload implements dispatch.Plugin.
func (p *Plugin) Unload(ctx context.Context) error {
	log.Println("[INFO] Moderation plugin unloaded")
	return nil
}

// Commands implements dispatch.Plugin.
func (p *Plugin) Commands() []*cmd.Command {
	guard := p.enabledGuard()

	role := cmd.New("role", p.roleHelp,
		cmd.WithDoc("Manage member roles.\nUse the add and remove subcommands."),
		cmd.WithOwner(p),
	)
	role.Subcommand("add", cmd.Apply(p.roleAdd, guard),
		cmd.WithDescription("Grants a role to a member."),
		cmd.WithAliases("give"),
		cmd.WithParams(
			cmd.Arg("role", stringType),
			cmd.Arg("member", stringType),
		),
	)
	role.Subcommand("remove", cmd.Apply(p.roleRemove, guard),
		cmd.WithDescription("Removes a role from a member."),
		cmd.WithAliases("take"),
		cmd.WithParams(
			cmd.Arg("role", stringType),
			cmd.Arg("member", stringType),
		),
	)

	prefix := cmd.New("prefix", p.prefix,
		cmd.WithDescription("Shows or sets this guild's command prefix."),
		cmd.WithParams(cmd.OptArg("prefix", stringType, "")),
		cmd.WithOwner(p),
	)

	plugin := cmd.New("plugin", p.pluginHelp,
		cmd.WithDoc("Enable or disable plugins for this guild."),
		cmd.WithOwner(p),
	)
	plugin.Subcommand("disable", p.pluginToggle(true),
		cmd.WithDescription("Disables a plugin in this guild."),
		cmd.WithParams(cmd.Arg("name", stringType)),
	)
	plugin.Subcommand("enable", p.pluginToggle(false),
		cmd.WithDescription("Enables a plugin in this guild."),
		cmd.WithParams(cmd.Arg("name", stringType)),
	)

	history := cmd.New("history", p.history,
		cmd.WithDescription("Shows recent command invocations."),
		cmd.WithOwner(p),
	)

	return []*cmd.Command{role, prefix, plugin, history}
}

// enabledGuard skips guarded handlers in guilds where the plugin is
// disabled.
func (p *Plugin) enabledGuard() cmd.Middleware {
	return cmd.Guard(func(_ context.Context, inv *cmd.Invocation) bool {
		cctx, ok := inv.Data.(*dispatch.Context)
		if !ok || !cctx.Message.InGuild() {
			return true
		}
		disabled, err := p.store.IsPluginDisabled(cctx.Message.GuildID, p.PluginName())
		if err != nil {
			log.Println("[WARN] Plugin toggle lookup failed:", err)
			return true
		}
		return !disabled
	})
}

func (p *Plugin) roleHelp(ctx context.Context, inv *cmd.Invocation) error {
	return p.reply(inv, "Usage: role add <role> <member> | role remove <role> <member>")
}

func (p *Plugin) roleAdd(ctx context.Context, inv *cmd.Invocation) error {
	return p.roleChange(inv, true)
}

func (p *Plugin) roleRemove(ctx context.Context, inv *cmd.Invocation) error {
	return p.roleChange(inv, false)
}

func (p *Plugin) roleChange(inv *cmd.Invocation, add bool) error {
	cctx := inv.Data.(*dispatch.Context)
	if !cctx.Message.InGuild() {
		return p.reply(inv, "This command only works in a guild.")
	}

	roleID := stripMention(inv.Args[0].(string))
	memberID := stripMention(inv.Args[1].(string))

	var err error
	if add {
		err = p.dg.GuildMemberRoleAdd(cctx.Message.GuildID, memberID, roleID)
	} else {
		err = p.dg.GuildMemberRoleRemove(cctx.Message.GuildID, memberID, roleID)
	}
	if err != nil {
		return fmt.Errorf("role change failed: %w", err)
	}

	if add {
		return p.reply(inv, "Role granted.")
	}
	return p.reply(inv, "Role removed.")
}

func (p *Plugin) prefix(ctx context.Context, inv *cmd.Invocation) error {
	cctx := inv.Data.(*dispatch.Context)
	if !cctx.Message.InGuild() {
		return p.reply(inv, "Prefixes are per guild.")
	}

	newPrefix := inv.Args[0].(string)
	if newPrefix == "" {
		current, err := p.store.GetGuildPrefix(cctx.Message.GuildID)
		if err != nil {
			return err
		}
		if current == "" {
			return p.reply(inv, "This guild uses the default prefix.")
		}
		return p.reply(inv, fmt.Sprintf("Current prefix: %s", current))
	}

	if err := p.store.SetGuildPrefix(cctx.Message.GuildID, newPrefix); err != nil {
		return err
	}
	return p.reply(inv, fmt.Sprintf("Prefix set to %s", newPrefix))
}

func (p *Plugin) pluginHelp(ctx context.Context, inv *cmd.Invocation) error {
	return p.reply(inv, "Usage: plugin disable <name> | plugin enable <name>")
}

func (p *Plugin) pluginToggle(disable bool) cmd.Handler {
	return func(ctx context.Context, inv *cmd.Invocation) error {
		cctx := inv.Data.(*dispatch.Context)
		if !cctx.Message.InGuild() {
			return p.reply(inv, "Plugin toggles are per guild.")
		}

		name := inv.Args[0].(string)
		if err := p.store.SetPluginDisabled(cctx.Message.GuildID, name, disable); err != nil {
			return err
		}
		if disable {
			return p.reply(inv, fmt.Sprintf("Plugin %s disabled.", name))
		}
		return p.reply(inv, fmt.Sprintf("Plugin %s enabled.", name))
	}
}

func (p *Plugin) history(ctx context.Context, inv *cmd.Invocation) error {
	cctx := inv.Data.(*dispatch.Context)
	if !cctx.Message.InGuild() {
		return p.reply(inv, "History is per guild.")
	}

	records, err := p.store.FetchCommandHistory(cctx.Message.GuildID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return p.reply(inv, "No commands recorded yet.")
	}

	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s %s %s\n", r.Datetime.Format("2006-01-02 15:04"), r.Command, r.Args)
	}
	return p.reply(inv, "```\n"+b.String()+"```")
}

func (p *Plugin) reply(inv *cmd.Invocation, text string) error {
	cctx := inv.Data.(*dispatch.Context)
	_, err := p.dg.ChannelMessageSend(cctx.Message.ChannelID, text)
	return err
}

// stripMention reduces <@id>, <@!id> and <@&id> mention forms to the bare ID.
func stripMention(s string) string {
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimPrefix(s, "@")
	s = strings.TrimPrefix(s, "!")
	s = strings.TrimPrefix(s, "&")
	return s
}
