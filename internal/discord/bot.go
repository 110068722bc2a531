package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/keshon/dispatchkit/internal/config"
	"github.com/keshon/dispatchkit/internal/plugins/fun"
	"github.com/keshon/dispatchkit/internal/plugins/moderation"
	"github.com/keshon/dispatchkit/internal/storage"
	"github.com/keshon/dispatchkit/pkg/dispatch"
	"github.com/keshon/dispatchkit/pkg/limiter"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Bot bridges a Discord session and the dispatch engine.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	manager *dispatch.Manager
	limiter *limiter.Adaptive
}

// StartBot starts the Discord bot and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{cfg: cfg, storage: store}
	if err := b.run(ctx); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run opens the session, wires the dispatch manager and handles shutdown.
func (b *Bot) run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.configureIntents()
	b.limiter = limiter.NewAdaptive(
		rate.Limit(b.cfg.RateInitial),
		rate.Limit(b.cfg.RateMin),
		rate.Limit(b.cfg.RateMax),
		1, 0.5,
	)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	manager, err := dispatch.New(&dispatch.Config{
		Check:  b.messageCheck(),
		SelfID: dg.State.User.ID,
		Policy: dispatch.Policy{
			IgnoreBots:   b.cfg.IgnoreBots,
			SelfOnly:     b.cfg.SelfOnly,
			IgnoreGuilds: b.cfg.IgnoreGuilds,
			IgnoreDMs:    b.cfg.IgnoreDMs,
		},
		Limiter: b.limiter,
	})
	if err != nil {
		return fmt.Errorf("failed to create dispatch manager: %w", err)
	}
	b.manager = manager

	b.registerReporting()

	if err := manager.LoadPlugins(ctx, "builtin",
		moderation.New(dg, b.storage),
		fun.New(dg),
	); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}

	dg.AddHandler(b.onMessageCreate)

	log.Printf("[INFO] ✅ Discord bot %v is running.", dg.State.User.Username)

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")

	unloadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := manager.UnloadModule(unloadCtx, "builtin"); err != nil {
		log.Println("[ERR] Error unloading plugins:", err)
	}
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

// messageCheck builds the prefix matcher: a guild with a stored custom
// prefix matches only that prefix; everyone else gets the configured
// candidate list, tested in order.
func (b *Bot) messageCheck() dispatch.MessageCheck {
	fallback := dispatch.PrefixCheck(b.cfg.CommandPrefixes...)
	return func(ctx context.Context, msg *dispatch.Message) (*dispatch.Match, error) {
		if msg.InGuild() {
			if p, err := b.storage.GetGuildPrefix(msg.GuildID); err == nil && p != "" {
				return dispatch.PrefixCheck(p)(ctx, msg)
			}
		}
		return fallback(ctx, msg)
	}
}

// registerReporting replaces the engine's fallback error logging with
// channel replies and routes help output to the invoking channel.
func (b *Bot) registerReporting() {
	events := b.manager.Events()

	events.On(dispatch.SignalCommandError, func(_ context.Context, args ...any) error {
		err, cctx := reportArgs(args)
		if cctx == nil {
			return nil
		}
		log.Printf("[ERR] Command %q failed: %v", cctx.RootWord, err)
		b.replyEmbed(cctx.Message.ChannelID, fmt.Sprintf("Error running command: %v", err))
		return nil
	})

	events.On(dispatch.SignalHelp, func(_ context.Context, args ...any) error {
		if len(args) < 2 {
			return nil
		}
		text, _ := args[0].(string)
		cctx, _ := args[1].(*dispatch.Context)
		if cctx == nil || text == "" {
			return nil
		}
		b.replyEmbed(cctx.Message.ChannelID, "```\n"+text+"```")
		return nil
	})
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	msg := &dispatch.Message{
		Content:   m.Content,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author: dispatch.Author{
			ID:  m.Author.ID,
			Bot: m.Author.Bot,
		},
	}

	b.recordHistory(m)

	if err := b.manager.DispatchEvent(context.Background(), "message_create", msg); err != nil {
		log.Println("[ERR] Error in plugin event handler:", err)
	}

	if err := b.manager.HandleMessage(context.Background(), msg); err != nil {
		log.Println("[ERR] Error handling message:", err)
	}
}

// recordHistory keeps a short per-guild trail of command invocations.
func (b *Bot) recordHistory(m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}
	for _, p := range b.cfg.CommandPrefixes {
		if p == "" || !strings.HasPrefix(m.Content, p) {
			continue
		}
		tokens := dispatch.Tokenize(m.Content[len(p):])
		if len(tokens) == 0 {
			return
		}
		rec := storage.CommandHistoryRecord{
			ChannelID: m.ChannelID,
			UserID:    m.Author.ID,
			Command:   tokens[0],
			Args:      strings.Join(tokens[1:], " "),
			Datetime:  time.Now(),
		}
		if err := b.storage.AppendCommandToHistory(m.GuildID, rec); err != nil {
			log.Println("[WARN] Failed to record command history:", err)
		}
		return
	}
}

func (b *Bot) replyEmbed(channelID, description string) {
	_, err := b.dg.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Description: description,
	})
	if err != nil {
		var rle *discordgo.RateLimitError
		if errors.As(err, &rle) {
			b.limiter.RateLimited()
		}
		log.Println("[ERR] Failed to send embed:", err)
	}
}

func reportArgs(args []any) (error, *dispatch.Context) {
	var err error
	var cctx *dispatch.Context
	for _, a := range args {
		switch v := a.(type) {
		case error:
			err = v
		case *dispatch.Context:
			cctx = v
		}
	}
	return err, cctx
}
