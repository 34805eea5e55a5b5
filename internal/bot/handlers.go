package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Houeta/market-map/internal/pricing"
	"github.com/Houeta/market-map/internal/services/home"
	"github.com/Houeta/market-map/internal/session"
	"gopkg.in/telebot.v4"
)

// startCommand process command /start.
func (b *Bot) startCommand(ctx context.Context, s *session.Session, _ []string) (string, error) {
	user := s.Auth.User()
	if user == nil {
		b.log.InfoContext(ctx, "Anonymous user started the bot")
		return "Welcome to Market Map, live market intelligence from Jumia Nigeria.\n\n" +
			"Sign in with /login <email> <password> or create an account with /signup <email> <password>.", nil
	}

	b.log.InfoContext(ctx, "User started the bot", "user_id", user.ID)

	return fmt.Sprintf("Welcome back, %s!\n\n%s", user.Name, helpText), nil
}

func (b *Bot) loginCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) != 2 {
		return "Usage: /login <email> <password>", nil
	}

	user, err := s.SignIn(ctx, args[0], args[1])
	if errors.Is(err, pricing.ErrInvalidCredentials) {
		return "Invalid email or password.", nil
	}
	if err != nil {
		b.log.ErrorContext(ctx, "Login failed", "error", err)
		return "Login failed. Please try again.", nil
	}

	s.Home.Navigate(ctx, url.Values{})

	return fmt.Sprintf("Welcome back, %s!\n\n%s", user.Name, b.homeText(s)), nil
}

func (b *Bot) signupCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) != 2 {
		return "Usage: /signup <email> <password>", nil
	}

	if err := s.SignUp(ctx, args[0], args[1]); err != nil {
		if regErr, ok := pricing.IsRegistrationError(err); ok {
			return regErr.Message, nil
		}
		b.log.ErrorContext(ctx, "Signup failed", "error", err)
		return "Registration failed. Please try again.", nil
	}

	return "Account created. Sign in with /login <email> <password>.", nil
}

func (b *Bot) logoutCommand(ctx context.Context, s *session.Session, _ []string) (string, error) {
	if !s.Auth.IsAuthenticated() {
		return "You are not signed in.", nil
	}
	s.SignOut(ctx)

	return "You have been signed out.", nil
}

// menuCommand toggles the sidebar.
func (b *Bot) menuCommand(_ context.Context, s *session.Session, _ []string) (string, error) {
	if !s.Nav.ToggleSidebar() {
		return "Menu closed.", nil
	}

	return renderMenu(s.Auth.State()), nil
}

func (b *Bot) profileCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) > 0 {
		u, err := url.ParseRequestURI(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return "Send a picture link starting with http:// or https://.", nil
		}
		s.Auth.SetProfileImage(ctx, u.String())
	}

	return renderProfile(s.Auth.State()), nil
}

// photoCommand makes an uploaded photo the profile picture.
func (b *Bot) photoCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "Send a photo to use it as your profile picture.", nil
	}
	s.Auth.SetProfileImage(ctx, telegramPhotoPrefix+args[0])

	return "Profile picture updated.\n\n" + renderProfile(s.Auth.State()), nil
}

// resetCommand forgets everything stored for the chat.
func (b *Bot) resetCommand(ctx context.Context, _ *session.Session, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("bot.resetCommand: missing chat key")
	}

	if err := b.sessions.Reset(ctx, args[0]); err != nil {
		return "", fmt.Errorf("bot.resetCommand: %w", err)
	}

	return "Your session and watchlist have been reset. Use /start to begin again.", nil
}

// marketCommand opens the market overview, optionally searching for query.
func (b *Bot) marketCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) > 0 {
		s.Search.SetQuery(strings.Join(args, " "))
	}

	return b.navigate(ctx, s, url.Values{}), nil
}

func (b *Bot) categoryCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	if len(args) != 1 || !slices.ContainsFunc(categories, func(c category) bool { return c.slug == args[0] }) {
		slugs := make([]string, 0, len(categories))
		for _, c := range categories {
			slugs = append(slugs, c.slug)
		}
		return "Usage: /category <name>\nCategories: " + strings.Join(slugs, ", "), nil
	}

	return b.navigate(ctx, s, url.Values{home.ParamCategory: {args[0]}}), nil
}

func (b *Bot) watchlistCommand(ctx context.Context, s *session.Session, _ []string) (string, error) {
	return b.navigate(ctx, s, url.Values{home.ParamView: {string(home.ViewWatchlist)}}), nil
}

func (b *Bot) refreshCommand(ctx context.Context, s *session.Session, _ []string) (string, error) {
	s.Home.Refresh(ctx)

	return b.homeText(s), nil
}

func (b *Bot) searchCommand(_ context.Context, s *session.Session, args []string) (string, error) {
	if len(args) == 0 {
		return "Usage: /search <query>", nil
	}
	s.Search.SetQuery(strings.Join(args, " "))

	return b.homeText(s), nil
}

func (b *Bot) clearSearchCommand(_ context.Context, s *session.Session, _ []string) (string, error) {
	s.Search.Clear()

	return b.homeText(s), nil
}

func (b *Bot) watchCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	id, ok := itemID(s, args)
	if !ok {
		return "Usage: /watch <n>, where n is a number from the current listing.", nil
	}

	watched, ok := s.Home.ToggleWatch(ctx, id)
	if !ok {
		return "That item is no longer listed.", nil
	}
	if watched {
		return "Added to your watchlist.", nil
	}

	return "Removed from your watchlist.", nil
}

func (b *Bot) clearWatchlistCommand(ctx context.Context, s *session.Session, _ []string) (string, error) {
	if !s.Home.ClearWatchlist(ctx) {
		return "Open a non-empty /watchlist to clear it.", nil
	}

	return "Your watchlist has been cleared.", nil
}

func (b *Bot) openCommand(ctx context.Context, s *session.Session, args []string) (string, error) {
	id, ok := itemID(s, args)
	if !ok {
		return "Usage: /open <n>, where n is a number from the current listing.", nil
	}

	if _, ok := s.Home.Select(ctx, id); !ok {
		return "That item is no longer listed.", nil
	}

	return renderModal(s.Modal.Snapshot()), nil
}

func (b *Bot) trendCommand(_ context.Context, s *session.Session, _ []string) (string, error) {
	s.Modal.ShowTrend()

	return renderModal(s.Modal.Snapshot()), nil
}

func (b *Bot) statsCommand(_ context.Context, s *session.Session, _ []string) (string, error) {
	s.Modal.ShowStats()

	return renderModal(s.Modal.Snapshot()), nil
}

// swipeCommand emulates a horizontal drag of dx pixels on the overlay.
func (b *Bot) swipeCommand(_ context.Context, s *session.Session, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: /swipe <dx>, negative to reveal the stats.", nil
	}

	dx, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "Usage: /swipe <dx>, negative to reveal the stats.", nil
	}
	s.Modal.Drag(dx)

	return renderModal(s.Modal.Snapshot()), nil
}

func (b *Bot) closeCommand(_ context.Context, s *session.Session, _ []string) (string, error) {
	s.Modal.Close()

	return b.homeText(s), nil
}

// navigate closes the sidebar, applies params and renders the result.
func (b *Bot) navigate(ctx context.Context, s *session.Session, params url.Values) string {
	s.Nav.CloseSidebar()
	s.Home.Navigate(ctx, params)

	return b.homeText(s)
}

func (b *Bot) homeText(s *session.Session) string {
	return renderHome(s.Home.Snapshot(), s.Watchlist.Contains)
}

// photoArgs passes the file id of the largest size of an uploaded photo.
func photoArgs(c telebot.Context) []string {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}

	return []string{msg.Photo.FileID}
}

func chatArgs(c telebot.Context) []string {
	return []string{chatKey(c)}
}

// itemID resolves a 1-based listing number to the id of the displayed item.
func itemID(s *session.Session, args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", false
	}

	items := s.Home.Snapshot().Items
	if n < 1 || n > len(items) {
		return "", false
	}

	return items[n-1].ID, true
}
