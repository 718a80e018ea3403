package session

import (
	"context"
	"testing"

	"shopfront/internal/domain"
)

func newSessionContext(t *testing.T, m *Manager) context.Context {
	t.Helper()
	ctx, err := m.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return ctx
}

func TestLoginLogout(t *testing.T) {
	m := NewManager(nil)
	ctx := newSessionContext(t, m)

	if m.UserEmail(ctx) != "" {
		t.Fatalf("expected anonymous session")
	}

	if err := m.Login(ctx, "user@example.com"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if m.UserEmail(ctx) != "user@example.com" {
		t.Fatalf("expected logged-in email")
	}

	m.Logout(ctx)
	if m.UserEmail(ctx) != "" {
		t.Fatalf("expected anonymous after logout")
	}

	// Logout repetido sigue siendo un no-op válido.
	m.Logout(ctx)
	if m.UserEmail(ctx) != "" {
		t.Fatalf("expected anonymous after repeated logout")
	}
}

func TestFlashIsOneShot(t *testing.T) {
	m := NewManager(nil)
	ctx := newSessionContext(t, m)

	if _, ok := m.PopFlash(ctx); ok {
		t.Fatalf("expected no flash initially")
	}

	m.SetFlash(ctx, "success", "Login successful!")
	flash, ok := m.PopFlash(ctx)
	if !ok || flash.Category != "success" || flash.Message != "Login successful!" {
		t.Fatalf("expected flash, got %+v ok=%v", flash, ok)
	}

	if _, ok := m.PopFlash(ctx); ok {
		t.Fatalf("expected flash consumed after pop")
	}
}

func TestPendingResetLifecycle(t *testing.T) {
	m := NewManager(nil)
	ctx := newSessionContext(t, m)

	if _, ok := m.PendingReset(ctx); ok {
		t.Fatalf("expected no pending reset initially")
	}

	m.SetPendingReset(ctx, "user@example.com")
	pending, ok := m.PendingReset(ctx)
	if !ok || pending.Email != "user@example.com" {
		t.Fatalf("expected pending reset, got %+v ok=%v", pending, ok)
	}
	if pending.IssuedAt.IsZero() {
		t.Fatalf("expected issued-at timestamp")
	}

	m.ClearPendingReset(ctx)
	if _, ok := m.PendingReset(ctx); ok {
		t.Fatalf("expected pending reset cleared")
	}
}

func TestCartRoundTrip(t *testing.T) {
	m := NewManager(nil)
	ctx := newSessionContext(t, m)

	if items := m.Cart(ctx); len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}

	m.SetCart(ctx, []domain.CartItem{
		{ID: "a", Name: "Shirt", Price: 499.99, Quantity: 2},
		{ID: "b", Name: "Lamp", Price: 250, Quantity: 1},
	})

	items := m.Cart(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Shirt" || items[0].Quantity != 2 || items[0].Price != 499.99 {
		t.Fatalf("unexpected first item %+v", items[0])
	}

	m.SetCart(ctx, nil)
	if items := m.Cart(ctx); len(items) != 0 {
		t.Fatalf("expected cleared cart, got %d items", len(items))
	}
}
