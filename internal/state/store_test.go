package state

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

// openTestStore opens a store in a temporary directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	var count int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Error("kv table does not exist")
	}

	if err := s.InitSchema(context.Background()); err != nil {
		t.Errorf("second InitSchema() failed: %v", err)
	}
}

func TestGetSetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}

	if err := s.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}
	value, found, err := s.Get(ctx, "k")
	if err != nil || !found || value != "two" {
		t.Errorf("Get(k) = %q, %v, %v; want two", value, found, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Error("k should be gone")
	}
}

func TestEnabled_DefaultsOff(t *testing.T) {
	s := openTestStore(t)

	enabled, err := s.Enabled(context.Background())
	if err != nil {
		t.Fatalf("Enabled() failed: %v", err)
	}
	if enabled {
		t.Error("stamping should start disabled")
	}
}

func TestEnabled_GarbageCountsAsOff(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, KeyEnabled, "perhaps"); err != nil {
		t.Fatal(err)
	}
	if enabled, err := s.Enabled(ctx); err != nil || enabled {
		t.Errorf("Enabled() = %v, %v; want false, nil", enabled, err)
	}
}

func TestToggle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, want := range []bool{true, false, true} {
		got, err := s.Toggle(ctx)
		if err != nil {
			t.Fatalf("Toggle() #%d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("Toggle() #%d = %v, want %v", i, got, want)
		}
		if enabled, _ := s.Enabled(ctx); enabled != want {
			t.Errorf("Enabled() after toggle #%d = %v, want %v", i, enabled, want)
		}
	}

	if err := s.SetEnabled(ctx, false); err != nil {
		t.Fatal(err)
	}
	if enabled, _ := s.Enabled(ctx); enabled {
		t.Error("SetEnabled(false) did not stick")
	}
}

func TestToggle_Concurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Toggle(ctx); err != nil {
				t.Errorf("Toggle() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// An even number of flips from disabled ends disabled.
	if enabled, _ := s.Enabled(ctx); enabled {
		t.Error("ten toggles should leave stamping disabled")
	}
}

func TestLastVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if v, err := s.LastVersion(ctx); err != nil || v != "" {
		t.Fatalf("LastVersion() = %q, %v; want empty", v, err)
	}
	if err := s.SetLastVersion(ctx, "v0.2.0"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.LastVersion(ctx); v != "v0.2.0" {
		t.Errorf("LastVersion() = %q, want v0.2.0", v)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if enabled, _ := s.Enabled(ctx); !enabled {
		t.Error("enabled flag was not persisted")
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}
