// Package analytics records link visits by people following a rewritten link.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// EventLinkVisited is recorded when a person follows a rewritten link.
const EventLinkVisited = "farlinker_link_visited"

// maxUserAgentLen bounds the user agent kept on an event.
const maxUserAgentLen = 100

// Event is a single visit record.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Hash      string    `json:"hash"`
	Format    string    `json:"format"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

// Tracker records visit events. Implementations must not block the request.
type Tracker interface {
	Track(ctx context.Context, e Event)
}

// NewLinkVisit builds a visit event, truncating the user agent.
func NewLinkVisit(username, hash, format, userAgent string) Event {
	return Event{
		ID:        uuid.New(),
		Name:      EventLinkVisited,
		Username:  username,
		Hash:      hash,
		Format:    format,
		UserAgent: truncate(userAgent, maxUserAgentLen),
		Timestamp: time.Now().UTC(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// LogTracker writes events to a structured logger.
type LogTracker struct {
	logger *slog.Logger
}

// NewLogTracker creates a tracker that logs each event at info level.
func NewLogTracker(logger *slog.Logger) *LogTracker {
	return &LogTracker{logger: logger}
}

// Track logs the event.
func (t *LogTracker) Track(ctx context.Context, e Event) {
	t.logger.InfoContext(ctx, "analytics event",
		"event_id", e.ID.String(),
		"event", e.Name,
		"username", e.Username,
		"hash", e.Hash,
		"format", e.Format,
		"user_agent", e.UserAgent,
	)
}

// MemoryTracker keeps events in memory. Used in tests.
type MemoryTracker struct {
	mu     sync.Mutex
	events []Event
}

// Track appends the event.
func (t *MemoryTracker) Track(ctx context.Context, e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

// Events returns a copy of the recorded events.
func (t *MemoryTracker) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
