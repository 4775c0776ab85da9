package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xits/voicelog/internal/registry"
	"github.com/xits/voicelog/internal/voicelog"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "voicelog.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(account string) *voicelog.ActivityRecord {
	return &voicelog.ActivityRecord{
		Type:      voicelog.ActivityCall,
		Account:   account,
		Contact:   "Jane Smith",
		Summary:   "Jane Smith about the renewal",
		RawText:   "Called Jane Smith about the renewal",
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestReplaceAndListAccounts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	accounts := []registry.Account{
		{Name: "SaskTel"},
		{Name: "Cameco Corporation", Aliases: []string{"Cameco"}},
	}
	if err := s.ReplaceAccounts(ctx, accounts, "calproxy"); err != nil {
		t.Fatalf("ReplaceAccounts: %v", err)
	}

	got, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	want := []registry.Account{
		{Name: "Cameco Corporation", Aliases: []string{"Cameco"}},
		{Name: "SaskTel"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("accounts mismatch (-want +got):\n%s", diff)
	}

	// Replacement swaps the whole set.
	if err := s.ReplaceAccounts(ctx, []registry.Account{{Name: "Viterra"}}, "file"); err != nil {
		t.Fatalf("ReplaceAccounts: %v", err)
	}
	got, err = s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Viterra" {
		t.Errorf("accounts after replace = %v, want just Viterra", got)
	}
}

func TestLogActivity_JournalRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.LogActivity(ctx, testRecord("SaskTel"), false)
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	if id == "" {
		t.Fatal("empty journal ID")
	}

	entries, err := s.RecentActivities(ctx, 10)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.ID != id || e.Account != "SaskTel" || e.Type != voicelog.ActivityCall || e.Posted {
		t.Errorf("entry = %+v", e)
	}
	if !e.CreatedAt.Equal(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", e.CreatedAt)
	}
}

func TestMarkPosted(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.LogActivity(ctx, testRecord("SaskTel"), false)
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	if err := s.MarkPosted(ctx, id); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}
	entries, err := s.RecentActivities(ctx, 1)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	if !entries[0].Posted {
		t.Error("entry not marked posted")
	}

	if err := s.MarkPosted(ctx, "no-such-id"); err == nil {
		t.Error("expected error for unknown journal ID")
	}
}

func TestRecentActivities_OrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, account := range []string{"SaskTel", "Viterra", "Cameco Corporation"} {
		r := testRecord(account)
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := s.LogActivity(ctx, r, true); err != nil {
			t.Fatalf("LogActivity: %v", err)
		}
	}

	entries, err := s.RecentActivities(ctx, 2)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Account != "Cameco Corporation" || entries[1].Account != "Viterra" {
		t.Errorf("order = [%s, %s], want newest first", entries[0].Account, entries[1].Account)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.ReplaceAccounts(ctx, []registry.Account{{Name: "SaskTel"}}, "calproxy"); err != nil {
		t.Fatalf("ReplaceAccounts: %v", err)
	}
	if _, err := s.LogActivity(ctx, testRecord("SaskTel"), false); err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	if _, err := s.LogActivity(ctx, testRecord("SaskTel"), true); err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.AccountCount != 1 || stats.ActivityCount != 2 || stats.UnpostedCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.DBSizeBytes == 0 {
		t.Error("db size not reported")
	}
}
