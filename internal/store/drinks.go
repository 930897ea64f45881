// ABOUTME: Append-only drink event logging over the SQL store
// ABOUTME: Validates input, derives the category, and writes one row per event

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// LogDrink appends one immutable drink event. The drink name is lowercased
// and classified; the group is lazily upserted and the membership link
// ensured inside the same transaction as the event insert, so a concurrent
// reader never observes an event referencing a missing parent row.
func (s *SQLStore) LogDrink(ctx context.Context, p LogParams) (*DrinkEvent, error) {
	name := strings.ToLower(strings.TrimSpace(p.DrinkName))
	if name == "" {
		return nil, &ValidationError{Field: "drink_name", Reason: "must not be empty"}
	}
	if p.Quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	now := time.Now().UTC().Truncate(time.Second)
	category := Classify(name)

	event := &DrinkEvent{
		AccountID: p.AccountID,
		DrinkName: name,
		Category:  category,
		Caption:   p.Caption,
		MediaRef:  p.MediaRef,
		Quantity:  p.Quantity,
		CreatedAt: now,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var groupID sql.NullInt64
		if p.Group != nil {
			if _, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO groups (id, name) VALUES (?, ?)
				ON CONFLICT (id) DO NOTHING
			`), p.Group.ID, p.Group.Name); err != nil {
				return fmt.Errorf("upserting group: %w", err)
			}
			if _, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO memberships (account_id, group_id, joined_at)
				VALUES (?, ?, ?)
				ON CONFLICT (account_id, group_id) DO NOTHING
			`), p.AccountID, p.Group.ID, formatTime(now)); err != nil {
				return fmt.Errorf("linking membership: %w", err)
			}
			groupID = sql.NullInt64{Int64: p.Group.ID, Valid: true}
			id := p.Group.ID
			event.GroupID = &id
		}

		row := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO drink_events (account_id, group_id, drink_name, category, caption, media_ref, quantity, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`),
			p.AccountID,
			groupID,
			name,
			nullString(string(category)),
			nullString(p.Caption),
			nullString(p.MediaRef),
			p.Quantity,
			formatTime(now),
		)
		if err := row.Scan(&event.ID); err != nil {
			return fmt.Errorf("inserting drink event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("logged drink",
		"account_id", p.AccountID,
		"drink", name,
		"category", string(category),
		"quantity", p.Quantity,
	)
	return event, nil
}

// LogDrinks appends count separate events with quantity 1 each. This
// preserves per-event timestamp granularity, unlike a single event with
// quantity=count.
func (s *SQLStore) LogDrinks(ctx context.Context, p LogParams, count int) ([]*DrinkEvent, error) {
	if count < 1 {
		return nil, &ValidationError{Field: "count", Reason: "must be a positive integer"}
	}

	p.Quantity = 1
	events := make([]*DrinkEvent, 0, count)
	for i := 0; i < count; i++ {
		event, err := s.LogDrink(ctx, p)
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
	return events, nil
}
