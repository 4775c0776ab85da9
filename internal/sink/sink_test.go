package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xits/voicelog/internal/voicelog"
)

func testRecord() *voicelog.ActivityRecord {
	return &voicelog.ActivityRecord{
		Type:      voicelog.ActivityEmail,
		Account:   "Cameco Corporation",
		Contact:   "Mark",
		Summary:   "Mark at Cameco about the print fleet renewal quote",
		RawText:   "Emailed Mark at Cameco about the print fleet renewal quote",
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestCalProxySink_PostsNote(t *testing.T) {
	var got notePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notes" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &CalProxySink{BaseURL: srv.URL}
	if err := s.Deliver(context.Background(), testRecord()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if got.Text != "[VOICE LOG] Mark at Cameco about the print fleet renewal quote" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Account != "Cameco Corporation" || got.Type != "email" || got.Contact != "Mark" {
		t.Errorf("payload = %+v", got)
	}
	if got.Source != "voice" {
		t.Errorf("source = %q, want voice", got.Source)
	}
	if got.Timestamp != "2026-03-14T09:30:00Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
}

func TestCalProxySink_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &CalProxySink{BaseURL: srv.URL}
	if err := s.Deliver(context.Background(), testRecord()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestCalProxySink_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := &CalProxySink{BaseURL: srv.URL}
	if err := s.Deliver(context.Background(), testRecord()); err == nil {
		t.Fatal("expected delivery error")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestFileSink_AppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "activities.jsonl")

	s, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Deliver(context.Background(), testRecord()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	second := testRecord()
	second.Account = "SaskTel"
	if err := s.Deliver(context.Background(), second); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	var lines []voicelog.ActivityRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r voicelog.ActivityRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		lines = append(lines, r)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Account != "Cameco Corporation" || lines[1].Account != "SaskTel" {
		t.Errorf("accounts = %q, %q", lines[0].Account, lines[1].Account)
	}
}

func TestDiscard(t *testing.T) {
	if err := (Discard{}).Deliver(context.Background(), testRecord()); err != nil {
		t.Errorf("Discard.Deliver: %v", err)
	}
}
