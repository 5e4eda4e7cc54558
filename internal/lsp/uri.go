package lsp

import (
	"path/filepath"
	"runtime"
	"strings"

	"godotime/internal/heartbeat"
)

// cleanFileURI turns a file:// URI into a clean native path.
func cleanFileURI(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") {
		path = path[1:]
	}
	return filepath.Clean(path)
}

// entityKey normalizes a document URI into a heartbeat entity key.
// Documents without a real path (never-saved scenes, untitled buffers)
// all map to the unsaved sentinel so they share one cooldown slot.
func entityKey(uri string) (key string, unsaved bool) {
	if uri == "" || strings.HasPrefix(uri, "untitled:") {
		return heartbeat.UnsavedEntity, true
	}
	return cleanFileURI(uri), false
}
