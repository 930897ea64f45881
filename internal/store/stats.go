// ABOUTME: Aggregate queries for personal stats and leaderboards
// ABOUTME: All aggregates are derived by querying the event log

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// maxLeaderboardEntries caps every leaderboard to the top ten.
const maxLeaderboardEntries = 10

// defaultHistoryLimit applies when History is called with limit <= 0.
const defaultHistoryLimit = 50

// Summary computes the per-account aggregate view. With no events the
// summary is all zero values.
//
// AvgPerWeek divides the total by the elapsed whole weeks between the
// first and most recent event, with a floor of one week.
func (s *SQLStore) Summary(ctx context.Context, accountID int64) (*Summary, error) {
	var total int
	var firstStr, lastStr sql.NullString

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(id), MIN(created_at), MAX(created_at)
		FROM drink_events
		WHERE account_id = ?
	`), accountID).Scan(&total, &firstStr, &lastStr)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}

	summary := &Summary{Total: total}
	if total == 0 {
		return summary, nil
	}

	first, err := parseTime(firstStr.String)
	if err != nil {
		return nil, err
	}
	last, err := parseTime(lastStr.String)
	if err != nil {
		return nil, err
	}
	summary.LastEventTime = &last

	weeks := int(last.Sub(first) / (7 * 24 * time.Hour))
	if weeks < 1 {
		weeks = 1
	}
	summary.AvgPerWeek = float64(total) / float64(weeks)

	// Favorite: highest event count, ties broken by earliest insertion.
	err = s.db.QueryRowContext(ctx, s.rebind(`
		SELECT drink_name
		FROM drink_events
		WHERE account_id = ?
		GROUP BY drink_name
		ORDER BY COUNT(id) DESC, MIN(id) ASC
		LIMIT 1
	`), accountID).Scan(&summary.FavoriteDrink)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying favorite drink: %w", err)
	}

	return summary, nil
}

// Leaderboard ranks display names by event count for events at or after
// since, optionally restricted to one group. Events are counted once each
// regardless of their quantity field; accounts with no events in the
// window are excluded.
func (s *SQLStore) Leaderboard(ctx context.Context, groupID *int64, since time.Time) ([]LeaderboardEntry, error) {
	query := `
		SELECT a.display_name, COUNT(e.id) AS total
		FROM drink_events e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.created_at >= ?`
	args := []any{formatTime(since)}

	if groupID != nil {
		query += ` AND e.group_id = ?`
		args = append(args, *groupID)
	}

	query += `
		GROUP BY a.display_name
		ORDER BY total DESC, a.display_name ASC
		LIMIT ?`
	args = append(args, maxLeaderboardEntries)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.DisplayName, &entry.Count); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard rows: %w", err)
	}
	return entries, nil
}

// WeeklyLeaderboard reads the weekly_leaderboard view, whose window starts
// at the most recent Monday 00:00 UTC.
func (s *SQLStore) WeeklyLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT display_name, drinks_this_week
		FROM weekly_leaderboard
		ORDER BY drinks_this_week DESC, display_name ASC
		LIMIT ?
	`), maxLeaderboardEntries)
	if err != nil {
		return nil, fmt.Errorf("querying weekly leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.DisplayName, &entry.Count); err != nil {
			return nil, fmt.Errorf("scanning weekly leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weekly leaderboard rows: %w", err)
	}
	return entries, nil
}

// History returns an account's drink events newest first, capped at limit.
func (s *SQLStore) History(ctx context.Context, accountID int64, limit int) ([]*DrinkEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, account_id, group_id, drink_name, category, caption, media_ref, quantity, created_at
		FROM drink_events
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var events []*DrinkEvent
	for rows.Next() {
		event, err := scanDrinkEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return events, nil
}

// scanDrinkEvent reads one drink_events row.
func scanDrinkEvent(rows *sql.Rows) (*DrinkEvent, error) {
	var event DrinkEvent
	var groupID sql.NullInt64
	var category, caption, mediaRef sql.NullString
	var createdAt string

	if err := rows.Scan(
		&event.ID,
		&event.AccountID,
		&groupID,
		&event.DrinkName,
		&category,
		&caption,
		&mediaRef,
		&event.Quantity,
		&createdAt,
	); err != nil {
		return nil, fmt.Errorf("scanning drink event: %w", err)
	}

	if groupID.Valid {
		id := groupID.Int64
		event.GroupID = &id
	}
	event.Category = Category(category.String)
	event.Caption = caption.String
	event.MediaRef = mediaRef.String

	var err error
	event.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
