// Package store provides persistent storage for beerbot over SQLite or
// PostgreSQL.
//
// # Architecture
//
// The package uses an interface-driven architecture with specialized
// interfaces:
//
//   - SchemaManager: idempotent schema creation at startup
//   - AccountStore: account/group registration and membership
//   - DrinkStore: append-only drink event logging and classification
//   - StatsStore: summaries, leaderboards, and history
//
// SQLStore implements all interfaces in a single struct over database/sql.
// The backend is chosen once at Open from configuration and never
// re-evaluated: "sqlite" uses modernc.org/sqlite against a local file,
// "postgres" uses the pgx stdlib driver with SSL required by default.
//
// # Data Models
//
//   - Account: registered drinker keyed by a stable external chat ID;
//     display name is last-write-wins
//   - GroupRef: optional group context (chat server/room), created lazily
//   - DrinkEvent: immutable logged drink with derived category, optional
//     caption/media reference, and quantity >= 1
//   - Summary / LeaderboardEntry: derived aggregate views
//
// # Consistency
//
// Every write path runs in a single transaction per call, so readers never
// observe an event referencing a missing account or group. Registration is
// an idempotent upsert; concurrent duplicate registrations resolve to one
// row. Aggregates are always computed by querying the event log, never by
// maintaining counters.
//
// # Timestamps
//
// All timestamps are stored as RFC3339 UTC text on both backends, which
// keeps range comparisons lexicographic and the query surface identical.
//
// # Leaderboard Rule
//
// Leaderboards count events, not quantities: an event logged with
// quantity=3 contributes one to its owner's leaderboard score. Bulk
// logging writes separate quantity-1 events and therefore contributes one
// per event. The quantity field is still recorded on every event.
package store
