package lsp

import (
	"testing"

	"godotime/internal/heartbeat"
)

func TestCleanFileURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/dev/game/player.gd", "/home/dev/game/player.gd"},
		{"file:///home/dev/game/../game/player.gd", "/home/dev/game/player.gd"},
		{"/home/dev/game/player.gd", "/home/dev/game/player.gd"},
	}
	for _, tt := range tests {
		if got := cleanFileURI(tt.uri); got != tt.want {
			t.Errorf("cleanFileURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestEntityKey(t *testing.T) {
	key, unsaved := entityKey("file:///home/dev/game/player.gd")
	if unsaved {
		t.Error("file URI should not be unsaved")
	}
	if key != "/home/dev/game/player.gd" {
		t.Errorf("key = %q", key)
	}

	for _, uri := range []string{"", "untitled:Untitled-1"} {
		key, unsaved := entityKey(uri)
		if !unsaved {
			t.Errorf("entityKey(%q) should be unsaved", uri)
		}
		if key != heartbeat.UnsavedEntity {
			t.Errorf("entityKey(%q) = %q, want sentinel", uri, key)
		}
	}
}
