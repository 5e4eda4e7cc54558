package sink

import (
	"strings"
	"sync"
	"testing"

	"github.com/tliron/kutil/logging"

	"godotime/internal/heartbeat"
)

func testSender(t *testing.T) (*WakatimeCLI, *[]heartbeat.Heartbeat) {
	t.Helper()

	s := NewWakatimeCLI("/usr/local/bin/wakatime-cli", logging.GetLogger("test"))
	s.apiKey = ""
	s.apiURL = ""

	var mu sync.Mutex
	sent := &[]heartbeat.Heartbeat{}
	s.send = func(hb heartbeat.Heartbeat) error {
		mu.Lock()
		defer mu.Unlock()
		*sent = append(*sent, hb)
		return nil
	}
	return s, sent
}

func TestBuildArgs(t *testing.T) {
	s, _ := testSender(t)

	hb := heartbeat.Heartbeat{
		Entity:     "/proj/player.gd",
		EntityType: heartbeat.EntityTypeFile,
		Category:   heartbeat.CategoryCoding,
		Time:       1748774400.123,
		Plugin:     "Godot",
		Project:    "dungeon-crawler",
		Language:   "GDScript",
		LineNumber: 42,
		CursorPos:  7,
		Lines:      100,
		IsWrite:    true,
	}

	args := strings.Join(s.buildArgs(hb), " ")

	for _, want := range []string{
		"--entity /proj/player.gd",
		"--entity-type file",
		"--time 1748774400.123",
		"--category coding",
		"--alternate-project dungeon-crawler",
		"--alternate-language GDScript",
		"--lineno 42",
		"--cursorpos 7",
		"--lines-in-file 100",
		"--write",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if strings.Contains(args, "--key") {
		t.Errorf("args should not carry --key without an api key: %s", args)
	}
}

func TestBuildArgs_Unsaved(t *testing.T) {
	s, _ := testSender(t)

	args := strings.Join(s.buildArgs(heartbeat.Heartbeat{
		Entity:    heartbeat.UnsavedEntity,
		IsUnsaved: true,
	}), " ")

	if !strings.Contains(args, "--is-unsaved-entity") {
		t.Errorf("args missing --is-unsaved-entity: %s", args)
	}
	if !strings.Contains(args, `--entity "Unsaved Scene"`) {
		t.Errorf("entity with spaces should be quoted: %s", args)
	}
}

func TestBuildArgs_APIKey(t *testing.T) {
	s, _ := testSender(t)
	s.apiKey = "waka_secret"
	s.apiURL = "https://api.example.com/api/v1"

	args := strings.Join(s.buildArgs(heartbeat.Heartbeat{Entity: "/proj/a.gd"}), " ")

	if !strings.Contains(args, "--key waka_secret") {
		t.Errorf("args missing --key: %s", args)
	}
	if !strings.Contains(args, "--api-url https://api.example.com/api/v1") {
		t.Errorf("args missing --api-url: %s", args)
	}
}

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/proj/player.gd", "/proj/player.gd"},
		{"Unsaved Scene", `"Unsaved Scene"`},
		{`say "hi"`, `"say \"hi\""`},
	}
	for _, tt := range tests {
		if got := quoteArg(tt.in); got != tt.want {
			t.Errorf("quoteArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandleHeartbeat_QueuesAndFlushes(t *testing.T) {
	s, sent := testSender(t)

	if err := s.HandleHeartbeat(heartbeat.Heartbeat{Entity: "/proj/a.gd"}); err != nil {
		t.Fatalf("HandleHeartbeat error: %v", err)
	}
	if err := s.HandleHeartbeat(heartbeat.Heartbeat{Entity: "/proj/b.gd"}); err != nil {
		t.Fatalf("HandleHeartbeat error: %v", err)
	}

	s.Flush()
	if len(*sent) != 1 || (*sent)[0].Entity != "/proj/a.gd" {
		t.Fatalf("after one flush sent = %v, want oldest heartbeat only", *sent)
	}

	s.Flush()
	if len(*sent) != 2 || (*sent)[1].Entity != "/proj/b.gd" {
		t.Fatalf("after two flushes sent = %v", *sent)
	}

	// Empty queue: flush is a no-op.
	s.Flush()
	if len(*sent) != 2 {
		t.Errorf("flush on empty queue sent %d heartbeats", len(*sent))
	}
}

func TestHandleHeartbeat_NoCLIPath(t *testing.T) {
	s := NewWakatimeCLI("", logging.GetLogger("test"))
	if err := s.HandleHeartbeat(heartbeat.Heartbeat{Entity: "/proj/a.gd"}); err == nil {
		t.Error("expected error without a wakatime-cli path")
	}
}
