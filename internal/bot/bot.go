package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Houeta/market-map/internal/session"
	"gopkg.in/telebot.v4"
)

const (
	loadingText       = "Loading Market Map..."
	loginRequiredText = "Please /login or /signup to continue."
	failureText       = "Something went wrong. Please try again."
)

// command runs one chat command against the session of the chat and returns the reply.
type command func(ctx context.Context, s *session.Session, args []string) (string, error)

// route binds a chat command to its implementation.
type route struct {
	endpoint  string
	protected bool
	run       command
	// args extracts the command arguments; the words after the command by default.
	args func(c telebot.Context) []string
}

// Bot contains the bot API instance and other information.
type Bot struct {
	ctx      context.Context
	bot      API
	log      *slog.Logger
	sessions Sessions
}

// NewBot authorizes on Telegram and registers every command.
// ctx bounds the requests issued while serving updates.
func NewBot(ctx context.Context, log *slog.Logger, token string, poller time.Duration, sessions Sessions) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance := &Bot{ctx: ctx, bot: bot, log: log, sessions: sessions}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

func (b *Bot) routes() []route {
	return []route{
		// Public routes.
		{endpoint: "/start", run: b.startCommand},
		{endpoint: "/login", run: b.loginCommand},
		{endpoint: "/signup", run: b.signupCommand},
		{endpoint: "/logout", run: b.logoutCommand},
		{endpoint: "/menu", run: b.menuCommand},
		{endpoint: "/reset", run: b.resetCommand, args: chatArgs},

		// Protected routes.
		{endpoint: "/profile", protected: true, run: b.profileCommand},
		{endpoint: telebot.OnPhoto, protected: true, run: b.photoCommand, args: photoArgs},
		{endpoint: "/market", protected: true, run: b.marketCommand},
		{endpoint: "/category", protected: true, run: b.categoryCommand},
		{endpoint: "/watchlist", protected: true, run: b.watchlistCommand},
		{endpoint: "/refresh", protected: true, run: b.refreshCommand},
		{endpoint: "/search", protected: true, run: b.searchCommand},
		{endpoint: "/clearsearch", protected: true, run: b.clearSearchCommand},
		{endpoint: "/watch", protected: true, run: b.watchCommand},
		{endpoint: "/clearwatchlist", protected: true, run: b.clearWatchlistCommand},
		{endpoint: "/open", protected: true, run: b.openCommand},
		{endpoint: "/trend", protected: true, run: b.trendCommand},
		{endpoint: "/stats", protected: true, run: b.statsCommand},
		{endpoint: "/swipe", protected: true, run: b.swipeCommand},
		{endpoint: "/close", protected: true, run: b.closeCommand},
	}
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	for _, r := range b.routes() {
		b.bot.Handle(r.endpoint, b.handler(r))
	}
}

// handler adapts a route to telebot: it resolves the chat's session and sends the reply.
func (b *Bot) handler(r route) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		key := chatKey(c)
		s := b.sessions.Session(b.ctx, key)

		b.log.Debug("Handling command", "command", r.endpoint, "chat", key)

		args := c.Args()
		if r.args != nil {
			args = r.args(c)
		}

		if err := c.Send(b.reply(b.ctx, s, r, args)); err != nil {
			return fmt.Errorf("failed to send reply to %s: %w", r.endpoint, err)
		}

		return nil
	}
}

// chatKey identifies the session of the chat an update came from.
func chatKey(c telebot.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

// reply holds a command until the startup delay is over and, for protected routes,
// gates it on authentication.
func (b *Bot) reply(ctx context.Context, s *session.Session, r route, args []string) string {
	if err := s.Auth.WaitInitialLoading(ctx); err != nil {
		return loadingText
	}

	if r.protected && !s.Auth.IsAuthenticated() {
		return loginRequiredText
	}

	text, err := r.run(ctx, s, args)
	if err != nil {
		b.log.ErrorContext(ctx, "Command failed", "command", r.endpoint, "error", err)
		return failureText
	}

	return text
}
