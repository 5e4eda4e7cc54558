package config

import (
	"os"
	"path/filepath"
	"strings"
)

// WakatimeConfigPath is the shared wakatime settings file used by every
// wakatime plugin on the machine.
func WakatimeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wakatime.cfg")
}

// WakatimeLogPath is the shared wakatime-cli log file.
func WakatimeLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wakatime", "wakatime.log")
}

// WakatimeValue reads one key from ~/.wakatime.cfg. Missing file or key
// yields "".
func WakatimeValue(key string) string {
	path := WakatimeConfigPath()
	if path == "" {
		return ""
	}
	return iniValue(path, key)
}

// iniValue scans a flat ini-style file for key = value. The wakatime
// config has sections but key names do not repeat across them, so a flat
// scan is enough.
func iniValue(path, key string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) == key {
			return strings.TrimSpace(parts[1])
		}
	}

	return ""
}
