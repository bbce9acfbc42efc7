package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func runRefreshStoreTests(t *testing.T, name string, newStore func() RefreshStore) {
	ctx := context.Background()

	t.Run(name+"/StoreAndGet", func(t *testing.T) {
		s := newStore()
		if err := s.Store(ctx, "1", "tok-a"); err != nil {
			t.Fatalf("Store: %v", err)
		}
		got, ok, err := s.Get(ctx, "1")
		if err != nil || !ok || got != "tok-a" {
			t.Fatalf("Get = %q, %v, %v", got, ok, err)
		}
	})

	t.Run(name+"/Overwrite", func(t *testing.T) {
		s := newStore()
		_ = s.Store(ctx, "1", "tok-a")
		_ = s.Store(ctx, "1", "tok-b")

		got, _, _ := s.Get(ctx, "1")
		if got != "tok-b" {
			t.Errorf("expected latest token, got %q", got)
		}
		if err := CheckRefresh(ctx, s, "1", "tok-a"); !errors.Is(err, ErrRefreshRevoked) {
			t.Errorf("old token still honored: %v", err)
		}
		if err := CheckRefresh(ctx, s, "1", "tok-b"); err != nil {
			t.Errorf("latest token rejected: %v", err)
		}
	})

	t.Run(name+"/Remove", func(t *testing.T) {
		s := newStore()
		_ = s.Store(ctx, "1", "tok-a")
		if err := s.Remove(ctx, "1"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if _, ok, _ := s.Get(ctx, "1"); ok {
			t.Error("expected token to be removed")
		}
		if err := CheckRefresh(ctx, s, "1", "tok-a"); !errors.Is(err, ErrRefreshRevoked) {
			t.Errorf("expected ErrRefreshRevoked, got %v", err)
		}
	})

	t.Run(name+"/PerUser", func(t *testing.T) {
		s := newStore()
		_ = s.Store(ctx, "1", "tok-1")
		_ = s.Store(ctx, "2", "tok-2")
		if got, _, _ := s.Get(ctx, "1"); got != "tok-1" {
			t.Errorf("user 1 token = %q", got)
		}
		if got, _, _ := s.Get(ctx, "2"); got != "tok-2" {
			t.Errorf("user 2 token = %q", got)
		}
	})
}

func TestMemoryRefreshStore(t *testing.T) {
	runRefreshStoreTests(t, "memory", func() RefreshStore { return NewMemoryRefreshStore() })
}

func TestPGRefreshStore(t *testing.T) {
	runRefreshStoreTests(t, "pg", func() RefreshStore { return NewPGRefreshStore(newMockPGConn()) })
}

func TestPGRefreshStore_ExecError(t *testing.T) {
	conn := newMockPGConn()
	conn.execErr = errors.New("connection refused")
	s := NewPGRefreshStore(conn)

	err := s.Store(context.Background(), "1", "tok")
	if err == nil || !strings.Contains(err.Error(), "store refresh token") {
		t.Errorf("expected wrapped exec error, got %v", err)
	}
}

func TestPGRefreshStore_QueryError(t *testing.T) {
	conn := newMockPGConn()
	conn.queryErr = errors.New("timeout")
	s := NewPGRefreshStore(conn)

	_, _, err := s.Get(context.Background(), "1")
	if err == nil {
		t.Error("expected query error")
	}
}

// ---------------------------------------------------------------------------
// mock pgConn
// ---------------------------------------------------------------------------

type mockPGRow struct {
	token   string
	scanErr error
	noRows  bool
}

func (r *mockPGRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if r.noRows {
		return errors.New("no rows in result set")
	}
	*(dest[0].(*string)) = r.token
	return nil
}

type mockPGConn struct {
	mu       sync.Mutex
	tokens   map[string]string
	queryErr error
	execErr  error
}

func newMockPGConn() *mockPGConn {
	return &mockPGConn{tokens: make(map[string]string)}
}

func (m *mockPGConn) QueryRow(_ context.Context, _ string, args ...any) pgRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return &mockPGRow{scanErr: m.queryErr}
	}
	tok, ok := m.tokens[args[0].(string)]
	if !ok {
		return &mockPGRow{noRows: true}
	}
	return &mockPGRow{token: tok}
}

func (m *mockPGConn) Exec(_ context.Context, sql string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.execErr != nil {
		return m.execErr
	}
	userID := args[0].(string)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		m.tokens[userID] = args[1].(string)
	case strings.HasPrefix(sql, "DELETE"):
		delete(m.tokens, userID)
	}
	return nil
}
