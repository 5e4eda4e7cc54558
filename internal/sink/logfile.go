package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"godotime/internal/heartbeat"
)

// ActivityLog appends every heartbeat to a JSON-lines file. Each entry
// carries the session id so one editor session can be traced through
// the log.
type ActivityLog struct {
	path      string
	sessionID string

	mu sync.Mutex
}

type logEntry struct {
	Timestamp string              `json:"timestamp"`
	Session   string              `json:"session"`
	Heartbeat heartbeat.Heartbeat `json:"heartbeat"`
}

// NewActivityLog creates a log sink writing to path.
func NewActivityLog(path string) *ActivityLog {
	return &ActivityLog{
		path:      path,
		sessionID: uuid.NewString(),
	}
}

// HandleHeartbeat appends one entry.
func (l *ActivityLog) HandleHeartbeat(hb heartbeat.Heartbeat) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer file.Close()

	entry := logEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Session:   l.sessionID,
		Heartbeat: hb,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding activity log entry: %w", err)
	}

	if _, err := fmt.Fprintf(file, "%s\n", data); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}
