// ABOUTME: Account and group registration over the SQL store
// ABOUTME: Idempotent upserts for accounts, groups, and memberships

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureRegistered upserts the account by external ID, creating the group
// and membership link when a group is provided. The whole sequence runs in
// one transaction so a concurrent reader never sees a membership without
// its account. Re-registration updates the display name only.
func (s *SQLStore) EnsureRegistered(ctx context.Context, externalID int64, displayName string, group *GroupRef) (int64, error) {
	if displayName == "" {
		return 0, &ValidationError{Field: "display_name", Reason: "must not be empty"}
	}

	now := formatTime(time.Now())
	var accountID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO accounts (external_id, display_name, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (external_id) DO UPDATE SET display_name = excluded.display_name
			RETURNING id
		`), externalID, displayName, now)
		if err := row.Scan(&accountID); err != nil {
			return fmt.Errorf("upserting account: %w", err)
		}

		if group == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO groups (id, name) VALUES (?, ?)
			ON CONFLICT (id) DO NOTHING
		`), group.ID, group.Name); err != nil {
			return fmt.Errorf("upserting group: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO memberships (account_id, group_id, joined_at)
			VALUES (?, ?, ?)
			ON CONFLICT (account_id, group_id) DO NOTHING
		`), accountID, group.ID, now); err != nil {
			return fmt.Errorf("linking membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("registered account", "external_id", externalID, "account_id", accountID, "display_name", displayName)
	return accountID, nil
}

// LookupAccount returns the internal account ID for an external ID.
// Returns ErrNotRegistered when no account exists.
func (s *SQLStore) LookupAccount(ctx context.Context, externalID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id FROM accounts WHERE external_id = ?`,
	), externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotRegistered
	}
	if err != nil {
		return 0, fmt.Errorf("querying account: %w", err)
	}
	return id, nil
}

// GetAccount returns the full account row for an external ID.
func (s *SQLStore) GetAccount(ctx context.Context, externalID int64) (*Account, error) {
	var account Account
	var createdAt string

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, external_id, display_name, created_at
		FROM accounts
		WHERE external_id = ?
	`), externalID).Scan(&account.ID, &account.ExternalID, &account.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	account.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
