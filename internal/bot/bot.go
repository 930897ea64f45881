// ABOUTME: Matrix chat adapter for beerbot
// ABOUTME: Handles the sync loop and routes text commands into the core

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/JRahala/beerbot-web/internal/config"
	"github.com/JRahala/beerbot-web/internal/store"
)

// sendTimeout bounds Matrix API calls so shutdown never hangs on the
// homeserver.
const sendTimeout = 30 * time.Second

// Bot connects a Matrix account to the drink-tracking core. It holds no
// mutable state of its own; everything durable lives in the store.
type Bot struct {
	matrixCfg config.MatrixConfig
	botCfg    config.BotConfig
	matrix    *mautrix.Client
	store     store.Store
	logger    *slog.Logger

	// ctx is the parent context for command-processing goroutines
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Matrix bot from configuration.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Bot, error) {
	client, err := mautrix.NewClient(cfg.Matrix.Homeserver, id.UserID(cfg.Matrix.UserID), cfg.Matrix.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return &Bot{
		matrixCfg: cfg.Matrix,
		botCfg:    cfg.Bot,
		matrix:    client,
		store:     st,
		logger:    logger.With("component", "bot"),
	}, nil
}

// Run starts the sync loop and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("starting matrix bot",
		"homeserver", b.matrixCfg.Homeserver,
		"user_id", b.matrixCfg.UserID,
	)

	b.ctx, b.cancel = context.WithCancel(ctx)
	defer b.cancel()

	syncer, ok := b.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, b.handleMessageEvent)

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.matrix.SyncWithContext(b.ctx)
	}()

	b.logger.Info("matrix bot running")

	select {
	case <-ctx.Done():
		b.logger.Info("shutting down matrix bot")
		return nil
	case err := <-syncErr:
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMessageEvent filters incoming Matrix messages and dispatches
// commands.
func (b *Bot) handleMessageEvent(ctx context.Context, evt *event.Event) {
	// Ignore our own messages
	if evt.Sender == id.UserID(b.matrixCfg.UserID) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}
	if content.MsgType != event.MsgText {
		return
	}

	roomID := evt.RoomID.String()
	body := content.Body

	if !b.isRoomAllowed(roomID) {
		b.logger.Debug("ignoring message from non-allowed room", "room", roomID)
		return
	}

	if !strings.HasPrefix(body, b.matrixCfg.CommandPrefix) {
		return
	}
	body = strings.TrimSpace(strings.TrimPrefix(body, b.matrixCfg.CommandPrefix))
	if body == "" {
		return
	}

	b.logger.Info("received command",
		"room", roomID,
		"sender", evt.Sender.String(),
	)

	// Process in a goroutine so a slow backend never blocks the sync loop.
	// The bot context keeps in-flight commands tied to Run's lifetime.
	go func() {
		reply := b.respond(b.ctx, roomID, evt.Sender.String(), body)
		if reply != "" {
			b.sendMessage(evt.RoomID, reply)
		}
	}()
}

// isRoomAllowed checks the allow-list; an empty list allows all rooms.
func (b *Bot) isRoomAllowed(roomID string) bool {
	if len(b.matrixCfg.AllowedRooms) == 0 {
		return true
	}
	for _, allowed := range b.matrixCfg.AllowedRooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// sendMessage sends a text message to a room.
func (b *Bot) sendMessage(roomID id.RoomID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if _, err := b.matrix.SendText(ctx, roomID, text); err != nil {
		b.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}
