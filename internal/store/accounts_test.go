// ABOUTME: Tests for account registration and lookup
// ABOUTME: Covers idempotence, display name updates, and membership uniqueness

package store

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureRegistered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.EnsureRegistered(ctx, 1001, "alice#0001", nil)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero account id")
	}

	got, err := s.LookupAccount(ctx, 1001)
	if err != nil {
		t.Fatalf("LookupAccount failed: %v", err)
	}
	if got != id {
		t.Errorf("LookupAccount: got %d, want %d", got, id)
	}
}

func TestEnsureRegistered_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureRegistered(ctx, 1001, "alice#0001", nil)
	if err != nil {
		t.Fatalf("first EnsureRegistered failed: %v", err)
	}

	second, err := s.EnsureRegistered(ctx, 1001, "alice#0001", nil)
	if err != nil {
		t.Fatalf("second EnsureRegistered failed: %v", err)
	}
	if first != second {
		t.Errorf("account id changed on re-registration: %d then %d", first, second)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE external_id = 1001`).Scan(&count); err != nil {
		t.Fatalf("counting accounts: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one account row, got %d", count)
	}
}

func TestEnsureRegistered_UpdatesDisplayName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureRegistered(ctx, 1001, "alice#0001", nil); err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	if _, err := s.EnsureRegistered(ctx, 1001, "alice.renamed", nil); err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}

	account, err := s.GetAccount(ctx, 1001)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.DisplayName != "alice.renamed" {
		t.Errorf("display name not updated: got %q", account.DisplayName)
	}
}

func TestEnsureRegistered_WithGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	group := &GroupRef{ID: 42, Name: "The Pub"}

	id, err := s.EnsureRegistered(ctx, 1001, "alice#0001", group)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}

	// Registering again in the same group must not duplicate the
	// membership or the group.
	if _, err := s.EnsureRegistered(ctx, 1001, "alice#0001", group); err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}

	var memberships int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM memberships WHERE account_id = ? AND group_id = 42`, id).Scan(&memberships); err != nil {
		t.Fatalf("counting memberships: %v", err)
	}
	if memberships != 1 {
		t.Errorf("expected one membership row, got %d", memberships)
	}

	var groups int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM groups WHERE id = 42`).Scan(&groups); err != nil {
		t.Fatalf("counting groups: %v", err)
	}
	if groups != 1 {
		t.Errorf("expected one group row, got %d", groups)
	}
}

func TestEnsureRegistered_EmptyDisplayName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.EnsureRegistered(context.Background(), 1001, "", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLookupAccount_NotRegistered(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LookupAccount(context.Background(), 9999)
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}

	_, err = s.GetAccount(context.Background(), 9999)
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("GetAccount: expected ErrNotRegistered, got %v", err)
	}
}
