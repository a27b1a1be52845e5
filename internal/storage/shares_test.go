package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestCreateShare verifies share creation including the widget ID round trip.
func TestCreateShare(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	project, _ := seedProject(t, s, 0)

	share, err := s.CreateShare(ctx, project.ID, "share-token-1", "ops dashboard", []int64{3, 1, 7}, nil)
	if err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	if share.ID <= 0 {
		t.Errorf("expected positive ID, got %d", share.ID)
	}

	if share.Name != "ops dashboard" {
		t.Errorf("expected name 'ops dashboard', got '%s'", share.Name)
	}

	if !share.Active {
		t.Errorf("expected new share to be active")
	}

	if len(share.WidgetIDs) != 3 {
		t.Fatalf("expected 3 widget IDs, got %d", len(share.WidgetIDs))
	}

	if share.WidgetIDs[0] != 3 || share.WidgetIDs[1] != 1 || share.WidgetIDs[2] != 7 {
		t.Errorf("expected widget IDs [3 1 7] preserved in order, got %v", share.WidgetIDs)
	}
}

// TestCreateShareDuplicateToken verifies ErrDuplicate for reused tokens.
func TestCreateShareDuplicateToken(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	project, _ := seedProject(t, s, 0)

	if _, err := s.CreateShare(ctx, project.ID, "dup-token", "first", nil, nil); err != nil {
		t.Fatalf("failed to create first share: %v", err)
	}

	_, err = s.CreateShare(ctx, project.ID, "dup-token", "second", nil, nil)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got: %v", err)
	}
}

// TestCreateShareProjectNotFound verifies ErrNotFound for a missing project.
func TestCreateShareProjectNotFound(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	_, err = s.CreateShare(ctx, 999, "orphan-token", "orphan", nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// TestGetShareByToken verifies lookup by public token.
func TestGetShareByToken(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	project, _ := seedProject(t, s, 0)

	created, err := s.CreateShare(ctx, project.ID, "lookup-token", "dash", []int64{1}, nil)
	if err != nil {
		t.Fatalf("failed to create share: %v", err)
	}

	share, err := s.GetShareByToken(ctx, "lookup-token")
	if err != nil {
		t.Fatalf("GetShareByToken failed: %v", err)
	}

	if share.ID != created.ID {
		t.Errorf("expected ID %d, got %d", created.ID, share.ID)
	}

	_, err = s.GetShareByToken(ctx, "no-such-token")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown token, got: %v", err)
	}
}

// TestListSharesByProject verifies listing and scoping.
func TestListSharesByProject(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	projectA, _ := seedProject(t, s, 0)
	projectB, _ := seedProject(t, s, 0)

	shares, err := s.ListSharesByProject(ctx, projectA.ID)
	if err != nil {
		t.Fatalf("failed to list shares: %v", err)
	}
	if shares == nil {
		t.Errorf("expected empty slice, not nil")
	}

	if _, err := s.CreateShare(ctx, projectA.ID, "tok-a", "a", nil, nil); err != nil {
		t.Fatalf("failed to create share: %v", err)
	}
	if _, err := s.CreateShare(ctx, projectB.ID, "tok-b", "b", nil, nil); err != nil {
		t.Fatalf("failed to create share: %v", err)
	}

	shares, err = s.ListSharesByProject(ctx, projectA.ID)
	if err != nil {
		t.Fatalf("failed to list shares: %v", err)
	}
	if len(shares) != 1 {
		t.Errorf("expected 1 share in project A, got %d", len(shares))
	}
}

// TestUpdateShare verifies partial patching of shares.
func TestUpdateShare(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	project, _ := seedProject(t, s, 0)

	share, err := s.CreateShare(ctx, project.ID, "patch-token", "old name", []int64{1, 2}, nil)
	if err != nil {
		t.Fatalf("failed to create share: %v", err)
	}

	newName := "new name"
	inactive := false
	updated, err := s.UpdateShare(ctx, share.ID, &SharePatch{
		Name:      &newName,
		WidgetIDs: []int64{5},
		Active:    &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateShare failed: %v", err)
	}

	if updated.Name != "new name" {
		t.Errorf("expected name 'new name', got '%s'", updated.Name)
	}
	if len(updated.WidgetIDs) != 1 || updated.WidgetIDs[0] != 5 {
		t.Errorf("expected widget IDs [5], got %v", updated.WidgetIDs)
	}
	if updated.Active {
		t.Errorf("expected share to be inactive after patch")
	}

	// Nil fields leave values alone
	expiry := time.Now().Add(24 * time.Hour).UTC()
	updated, err = s.UpdateShare(ctx, share.ID, &SharePatch{ExpiresAt: &expiry})
	if err != nil {
		t.Fatalf("UpdateShare failed: %v", err)
	}
	if updated.Name != "new name" {
		t.Errorf("expected name unchanged, got '%s'", updated.Name)
	}
	if updated.ExpiresAt == nil {
		t.Errorf("expected expiry to be set")
	}
}

// TestUpdateShareNotFound verifies ErrNotFound for patching a missing share.
func TestUpdateShareNotFound(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	name := "ghost"
	_, err = s.UpdateShare(ctx, 999, &SharePatch{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// TestDeleteShare verifies share deletion.
func TestDeleteShare(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	project, _ := seedProject(t, s, 0)

	share, err := s.CreateShare(ctx, project.ID, "del-token", "doomed", nil, nil)
	if err != nil {
		t.Fatalf("failed to create share: %v", err)
	}

	if err := s.DeleteShare(ctx, share.ID); err != nil {
		t.Fatalf("DeleteShare failed: %v", err)
	}

	_, err = s.GetShareByToken(ctx, "del-token")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}

	err = s.DeleteShare(ctx, share.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got: %v", err)
	}
}
