package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	chat    Chatter
	cmds    core.CmdRouter
	sender  *sender
	timeout time.Duration
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatter Chatter,
	cmds core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		chat:    chatter,
		cmds:    cmds,
		sender:  newSender(b),
		timeout: time.Minute,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: restrict to allowed chats when configured
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil || !bot.cfg.IsAllowed(c.Chat().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("bot", b.bot.Me.Username).Msg("starting telegram bot")

	commands := []tele.Command{{Text: "help", Description: "What can I ask?"}}
	for _, cmd := range b.cmds.ListCommands() {
		commands = append(commands, tele.Command{Text: cmd.Name(), Description: cmd.Description()})
	}
	if err := b.bot.SetCommands(commands); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to register telegram commands")
	}

	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	base := c.Get(baseContextKey).(context.Context)
	sessionID := SessionID(c.Chat().ID)

	ctx, cancel := context.WithTimeout(log.WithFields(base, "session_id", sessionID), b.timeout)
	defer cancel()
	logger := log.FromCtx(ctx)

	if out, ok := b.cmds.Execute(ctx, sessionID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, true)
	}

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	resp, err := b.chat.Chat(ctx, chat.Request{Message: c.Text(), SessionID: sessionID})
	if err != nil {
		logger.Error().Err(err).Msg("chat failed")
		return c.Send(userError(err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), resp.Response, false)
}

// SessionID maps a Telegram chat to its pipeline session.
func SessionID(chatID int64) string {
	return fmt.Sprintf("telegram-%d", chatID)
}
