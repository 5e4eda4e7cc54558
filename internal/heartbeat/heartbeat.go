// Package heartbeat turns editor activity into rate-limited heartbeat
// records and fans them out to subscribers.
package heartbeat

import "time"

const (
	// EntityTypeFile is the entity type for every heartbeat this
	// collector emits.
	EntityTypeFile = "file"

	// CategoryCoding is the wakatime activity category.
	CategoryCoding = "coding"

	// UnsavedEntity is the entity key used when the active document has
	// no path yet (a scene that was never saved).
	UnsavedEntity = "Unsaved Scene"
)

// Heartbeat is a single activity record. Fields follow the wakatime-cli
// flag names; a heartbeat is immutable once built.
type Heartbeat struct {
	Entity     string  `json:"entity"`
	EntityType string  `json:"entity_type"`
	Category   string  `json:"category"`
	Time       float64 `json:"time"`
	Plugin     string  `json:"plugin"`
	Project    string  `json:"project,omitempty"`
	Branch     string  `json:"branch,omitempty"`
	Language   string  `json:"language,omitempty"`
	LineNumber int     `json:"lineno,omitempty"`
	CursorPos  int     `json:"cursorpos"`
	Lines      int     `json:"lines_in_file,omitempty"`
	IsWrite    bool    `json:"is_write"`
	IsUnsaved  bool    `json:"is_unsaved_entity"`
}

// Activity is one normalized notification from the host editor.
type Activity struct {
	// Entity is the normalized resource key: an absolute file path, or
	// UnsavedEntity when the document has no path.
	Entity string

	// IsWrite marks save events.
	IsWrite bool

	// IsUnsaved marks entities that have never been written to disk.
	IsUnsaved bool

	// Editing context, zero when the host did not provide it.
	LineNumber int
	CursorPos  int
	Lines      int
}

func unixTime(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000.0
}
