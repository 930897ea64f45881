// ABOUTME: Store interfaces and data types for beerbot persistence
// ABOUTME: Defines Account, Group, DrinkEvent structs and the storage contracts

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotRegistered is returned when an operation requires an account that
// has not been registered yet.
var ErrNotRegistered = errors.New("account not registered")

// ValidationError reports input that was rejected before any storage call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Category is the derived classification of a logged drink.
type Category string

const (
	CategoryBeer     Category = "beer"
	CategoryWine     Category = "wine"
	CategoryShot     Category = "shot"
	CategoryCocktail Category = "cocktail"

	// CategoryUnset marks drinks that did not match any known name.
	CategoryUnset Category = ""
)

// Account is a registered drinker. ExternalID is the stable chat-platform
// identity; DisplayName is last-write-wins on re-registration.
type Account struct {
	ID          int64
	ExternalID  int64
	DisplayName string
	CreatedAt   time.Time
}

// GroupRef identifies an optional group context (a chat server/room) by its
// external numeric ID. Groups are created lazily on first reference.
type GroupRef struct {
	ID   int64
	Name string
}

// DrinkEvent is an immutable logged drink. Rows are never updated or
// deleted after creation.
type DrinkEvent struct {
	ID        int64
	AccountID int64
	GroupID   *int64
	DrinkName string
	Category  Category
	Caption   string
	MediaRef  string
	Quantity  int
	CreatedAt time.Time
}

// LogParams are the inputs to LogDrink.
type LogParams struct {
	AccountID int64
	Group     *GroupRef
	DrinkName string
	Quantity  int
	Caption   string
	MediaRef  string
}

// Summary is the per-account aggregate view.
type Summary struct {
	Total         int
	AvgPerWeek    float64
	FavoriteDrink string
	LastEventTime *time.Time
}

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	DisplayName string
	Count       int
}

// SchemaManager creates the persistent schema on startup. EnsureSchema is
// idempotent; failure is fatal for the process.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// AccountStore owns account/group registration and membership.
type AccountStore interface {
	// EnsureRegistered upserts the account by external ID, lazily upserts
	// the group when provided, and links membership. Safe to call
	// redundantly; always returns the same internal account ID for a
	// given external ID.
	EnsureRegistered(ctx context.Context, externalID int64, displayName string, group *GroupRef) (int64, error)

	// LookupAccount returns the internal account ID for an external ID,
	// or ErrNotRegistered. Pure lookup, no side effects.
	LookupAccount(ctx context.Context, externalID int64) (int64, error)

	// GetAccount returns the full account row for an external ID,
	// or ErrNotRegistered.
	GetAccount(ctx context.Context, externalID int64) (*Account, error)
}

// DrinkStore appends immutable drink events.
type DrinkStore interface {
	// LogDrink appends one event. Quantity must be >= 1 and the drink
	// name non-empty; violations return a ValidationError before any
	// storage call is issued.
	LogDrink(ctx context.Context, p LogParams) (*DrinkEvent, error)

	// LogDrinks appends count separate events with quantity 1 each,
	// preserving per-event timestamps.
	LogDrinks(ctx context.Context, p LogParams, count int) ([]*DrinkEvent, error)
}

// StatsStore computes aggregate views. Aggregates are always derived by
// querying, never by mutable counters.
type StatsStore interface {
	Summary(ctx context.Context, accountID int64) (*Summary, error)
	Leaderboard(ctx context.Context, groupID *int64, since time.Time) ([]LeaderboardEntry, error)
	WeeklyLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	History(ctx context.Context, accountID int64, limit int) ([]*DrinkEvent, error)
}

// Store combines all persistence contracts. SQLStore implements the whole
// interface over either backend.
type Store interface {
	SchemaManager
	AccountStore
	DrinkStore
	StatsStore

	// Close releases the underlying database handle.
	Close() error
}

// StartOfWeek returns the most recent Monday 00:00 UTC at or before t.
// This is the boundary used by weekly leaderboard queries.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7 // days since Monday
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -back)
}
