package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewLinkVisit(t *testing.T) {
	ua := strings.Repeat("a", 150)
	e := NewLinkVisit("dwr", "0xabc12345", "enhanced", ua)

	if e.Name != EventLinkVisited {
		t.Errorf("Name = %q", e.Name)
	}
	if e.ID == uuid.Nil {
		t.Error("ID should be set")
	}
	if len(e.UserAgent) != 100 {
		t.Errorf("UserAgent length = %d, want 100", len(e.UserAgent))
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	other := NewLinkVisit("dwr", "0xabc12345", "enhanced", ua)
	if e.ID == other.ID {
		t.Error("event IDs should be unique")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("a", 99) + "é"
	got := truncate(s, 100)
	if got != strings.Repeat("a", 99) {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestLogTracker_Track(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewLogTracker(slog.New(slog.NewJSONHandler(&buf, nil)))

	tracker.Track(context.Background(), NewLinkVisit("dwr", "0xabc", "standard", "Mozilla/5.0"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["event"] != EventLinkVisited {
		t.Errorf("event = %v", record["event"])
	}
	if record["format"] != "standard" {
		t.Errorf("format = %v", record["format"])
	}
	if record["username"] != "dwr" {
		t.Errorf("username = %v", record["username"])
	}
}

func TestMemoryTracker(t *testing.T) {
	var tracker MemoryTracker
	tracker.Track(context.Background(), NewLinkVisit("a", "0x1", "enhanced", ""))
	tracker.Track(context.Background(), NewLinkVisit("b", "0x2", "enhanced", ""))

	events := tracker.Events()
	if len(events) != 2 || events[0].Username != "a" || events[1].Username != "b" {
		t.Errorf("events = %+v", events)
	}
}
