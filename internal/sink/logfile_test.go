package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"godotime/internal/heartbeat"
)

func TestActivityLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := NewActivityLog(path)

	for _, entity := range []string{"/proj/a.gd", "/proj/b.gd"} {
		if err := l.HandleHeartbeat(heartbeat.Heartbeat{Entity: entity, IsWrite: true}); err != nil {
			t.Fatalf("HandleHeartbeat error: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var entries []logEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e logEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Heartbeat.Entity != "/proj/a.gd" {
		t.Errorf("first entity = %q", entries[0].Heartbeat.Entity)
	}
	if entries[0].Session == "" || entries[0].Session != entries[1].Session {
		t.Error("entries should share one non-empty session id")
	}
	if entries[0].Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestActivityLog_UnwritablePath(t *testing.T) {
	l := NewActivityLog(filepath.Join(t.TempDir(), "missing", "activity.log"))
	if err := l.HandleHeartbeat(heartbeat.Heartbeat{Entity: "/proj/a.gd"}); err == nil {
		t.Error("expected error for unwritable path")
	}
}
