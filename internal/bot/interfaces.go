package bot

import (
	"context"

	"github.com/Houeta/market-map/internal/session"
	"gopkg.in/telebot.v4"
)

type API interface {
	// Handle lets you set the handler for some command name or one of the supported endpoints. It also applies middleware if such passed to the function.
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
	// Start brings bot into motion by consuming incoming updates (see Bot.Updates channel).
	Start()
	// Stop gracefully shuts the poller down.
	Stop()
}

// Sessions hands out the session of a chat.
type Sessions interface {
	Session(ctx context.Context, key string) *session.Session
	// Reset forgets the session of a chat together with its persisted state.
	Reset(ctx context.Context, key string) error
}
