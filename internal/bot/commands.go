// ABOUTME: Text command parsing and dispatch for the chat adapter
// ABOUTME: Maps commands to core calls and renders user-facing replies

package bot

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/JRahala/beerbot-web/internal/store"
)

// commandKind identifies a parsed chat command.
type commandKind int

const (
	cmdHelp commandKind = iota
	cmdHello
	cmdRegister
	cmdDrink
	cmdBulk
	cmdStats
	cmdLeaderboard
	cmdHistory
)

// command is one parsed chat command.
type command struct {
	kind      commandKind
	drinkName string
	quantity  int
	count     int
	limit     int
	caption   string
}

const helpText = `Commands:
  register              Register your account
  drink <name> [qty]    Log a drink (append "; caption" for a note)
  bulk <count> <name>   Log several drinks as separate events
  stats                 Your totals, weekly average, and favorite
  top                   This week's leaderboard
  history [n]           Your most recent drinks
  hello                 Say hello`

// parseCommand parses the body of a chat message after the prefix has
// been stripped. Validation of quantities happens here, before the core
// is ever called.
func parseCommand(body string) (*command, error) {
	// A caption follows the first semicolon.
	var caption string
	if i := strings.Index(body, ";"); i >= 0 {
		caption = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "help":
		return &command{kind: cmdHelp}, nil
	case "hello":
		return &command{kind: cmdHello}, nil
	case "register":
		return &command{kind: cmdRegister}, nil

	case "drink":
		if len(args) == 0 {
			return nil, fmt.Errorf("usage: drink <name> [quantity]")
		}
		quantity := 1
		// A trailing number is a quantity when it is not the only token.
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
				if n < 1 {
					return nil, fmt.Errorf("quantity must be a positive number")
				}
				quantity = n
				args = args[:len(args)-1]
			}
		}
		return &command{
			kind:      cmdDrink,
			drinkName: strings.Join(args, " "),
			quantity:  quantity,
			caption:   caption,
		}, nil

	case "bulk":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: bulk <count> <name>")
		}
		count, err := strconv.Atoi(args[0])
		if err != nil || count < 1 {
			return nil, fmt.Errorf("count must be a positive number")
		}
		return &command{
			kind:      cmdBulk,
			count:     count,
			drinkName: strings.Join(args[1:], " "),
			caption:   caption,
		}, nil

	case "stats":
		return &command{kind: cmdStats}, nil
	case "top", "leaderboard":
		return &command{kind: cmdLeaderboard}, nil

	case "history":
		limit := 10
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("usage: history [count]")
			}
			limit = n
		}
		return &command{kind: cmdHistory, limit: limit}, nil
	}

	return nil, fmt.Errorf("unknown command %q — try help", fields[0])
}

// externalID derives a stable positive numeric identity from a chat user
// or room ID.
func externalID(matrixID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(matrixID))
	return int64(h.Sum64() & (1<<63 - 1))
}

// displayName extracts the localpart of a Matrix user ID as the
// human-readable name.
func displayName(sender string) string {
	name := strings.TrimPrefix(sender, "@")
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	return name
}

// respond executes one command and returns the user-facing reply text.
// The room is the group context: events logged here are attributed to it.
func (b *Bot) respond(ctx context.Context, roomID, sender, body string) string {
	cmd, err := parseCommand(body)
	if err != nil {
		return "⚠️ " + err.Error()
	}

	userID := externalID(sender)
	name := displayName(sender)
	group := &store.GroupRef{ID: externalID(roomID), Name: roomID}

	switch cmd.kind {
	case cmdHelp:
		return helpText

	case cmdHello:
		return fmt.Sprintf("👋 Hello %s! BeerBot is here 🍻", name)

	case cmdRegister:
		if _, err := b.store.EnsureRegistered(ctx, userID, name, group); err != nil {
			b.logger.Error("registration failed", "sender", sender, "error", err)
			return "⚠️ Registration failed, please try again."
		}
		return fmt.Sprintf("✅ %s registered for this server!", name)

	case cmdDrink:
		accountID, errReply := b.resolveAccount(ctx, userID, name, group)
		if errReply != "" {
			return errReply
		}
		event, err := b.store.LogDrink(ctx, store.LogParams{
			AccountID: accountID,
			Group:     group,
			DrinkName: cmd.drinkName,
			Quantity:  cmd.quantity,
			Caption:   cmd.caption,
		})
		if err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				return "⚠️ " + verr.Error()
			}
			b.logger.Error("logging drink failed", "sender", sender, "error", err)
			return "⚠️ Could not log drink due to an error."
		}
		return fmt.Sprintf("🍺 Logged %d x %s for %s!", event.Quantity, event.DrinkName, name)

	case cmdBulk:
		accountID, errReply := b.resolveAccount(ctx, userID, name, group)
		if errReply != "" {
			return errReply
		}
		events, err := b.store.LogDrinks(ctx, store.LogParams{
			AccountID: accountID,
			Group:     group,
			DrinkName: cmd.drinkName,
			Caption:   cmd.caption,
		}, cmd.count)
		if err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				return "⚠️ " + verr.Error()
			}
			b.logger.Error("bulk logging failed", "sender", sender, "error", err)
			return "⚠️ Could not log drinks due to an error."
		}
		return fmt.Sprintf("🍺 Logged %d x %s for %s!", len(events), events[0].DrinkName, name)

	case cmdStats:
		account, err := b.store.GetAccount(ctx, userID)
		if errors.Is(err, store.ErrNotRegistered) {
			return notRegisteredReply
		}
		if err != nil {
			b.logger.Error("stats lookup failed", "sender", sender, "error", err)
			return "⚠️ Could not fetch stats due to an error."
		}
		summary, err := b.store.Summary(ctx, account.ID)
		if err != nil {
			b.logger.Error("summary failed", "sender", sender, "error", err)
			return "⚠️ Could not fetch stats due to an error."
		}
		return formatSummary(account.DisplayName, summary)

	case cmdLeaderboard:
		since := store.StartOfWeek(time.Now())
		groupID := group.ID
		entries, err := b.store.Leaderboard(ctx, &groupID, since)
		if err != nil {
			b.logger.Error("leaderboard failed", "room", roomID, "error", err)
			return "⚠️ Could not fetch the leaderboard due to an error."
		}
		return formatLeaderboard(entries)

	case cmdHistory:
		accountID, err := b.store.LookupAccount(ctx, userID)
		if errors.Is(err, store.ErrNotRegistered) {
			return notRegisteredReply
		}
		if err != nil {
			b.logger.Error("history lookup failed", "sender", sender, "error", err)
			return "⚠️ Could not fetch history due to an error."
		}
		events, err := b.store.History(ctx, accountID, cmd.limit)
		if err != nil {
			b.logger.Error("history failed", "sender", sender, "error", err)
			return "⚠️ Could not fetch history due to an error."
		}
		return formatHistory(events)
	}

	return helpText
}

const notRegisteredReply = "⚠️ You are not registered yet! Please use `register` first."

// resolveAccount maps the sender to an internal account ID, applying the
// auto-registration toggle when enabled. Returns a non-empty reply string
// on failure.
func (b *Bot) resolveAccount(ctx context.Context, userID int64, name string, group *store.GroupRef) (int64, string) {
	accountID, err := b.store.LookupAccount(ctx, userID)
	if err == nil {
		return accountID, ""
	}
	if !errors.Is(err, store.ErrNotRegistered) {
		b.logger.Error("account lookup failed", "external_id", userID, "error", err)
		return 0, "⚠️ Could not look up your account due to an error."
	}

	if !b.botCfg.AutoRegister {
		return 0, notRegisteredReply
	}

	placeholder := fmt.Sprintf("User#%d", userID)
	if name != "" {
		placeholder = name
	}
	accountID, err = b.store.EnsureRegistered(ctx, userID, placeholder, group)
	if err != nil {
		b.logger.Error("auto-registration failed", "external_id", userID, "error", err)
		return 0, "⚠️ Could not register your account due to an error."
	}
	return accountID, ""
}

func formatSummary(name string, s *store.Summary) string {
	if s.Total == 0 {
		return fmt.Sprintf("📊 %s has not logged any drinks yet.", name)
	}
	favorite := s.FavoriteDrink
	if favorite == "" {
		favorite = "—"
	}
	last := "—"
	if s.LastEventTime != nil {
		last = s.LastEventTime.UTC().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("📊 %s — total: %d, avg/week: %.1f, favorite: %s, last: %s",
		name, s.Total, s.AvgPerWeek, favorite, last)
}

func formatLeaderboard(entries []store.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 Nobody has logged a drink this week yet."
	}
	var b strings.Builder
	b.WriteString("🏆 This week's leaderboard:\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s — %d\n", i+1, entry.DisplayName, entry.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistory(events []*store.DrinkEvent) string {
	if len(events) == 0 {
		return "📜 No drinks logged yet."
	}
	var b strings.Builder
	b.WriteString("📜 Recent drinks:\n")
	for _, event := range events {
		fmt.Fprintf(&b, "• %s", event.DrinkName)
		if event.Category != store.CategoryUnset {
			fmt.Fprintf(&b, " (%s)", event.Category)
		}
		fmt.Fprintf(&b, " — %s\n", event.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}
