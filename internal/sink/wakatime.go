// Package sink contains the heartbeat subscribers: the wakatime-cli
// sender and the local JSON activity log.
package sink

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tliron/kutil/logging"

	"godotime/internal/config"
	"godotime/internal/heartbeat"
)

const (
	batchSendInterval = 120 * time.Second
	maxQueueSize      = 100
	cliTimeout        = 10 * time.Second
)

// WakatimeCLI queues heartbeats and hands them to the wakatime-cli
// binary, which owns credentials, offline caching and the actual
// network transmission.
type WakatimeCLI struct {
	cliPath string
	apiKey  string
	apiURL  string
	log     logging.Logger

	mu    sync.Mutex
	queue []heartbeat.Heartbeat
	timer *time.Timer

	send func(hb heartbeat.Heartbeat) error // for testing
}

// NewWakatimeCLI creates the sender. API key and url come from the
// shared ~/.wakatime.cfg so all wakatime plugins stay in sync.
func NewWakatimeCLI(cliPath string, log logging.Logger) *WakatimeCLI {
	if log == nil {
		log = logging.GetLogger("godotime.sink")
	}
	s := &WakatimeCLI{
		cliPath: cliPath,
		apiKey:  config.WakatimeValue("api_key"),
		apiURL:  config.WakatimeValue("api_url"),
		log:     log,
	}
	s.send = s.invoke
	return s
}

// HandleHeartbeat queues one heartbeat. A full queue flushes right away,
// otherwise the first queued heartbeat arms the batch timer.
func (s *WakatimeCLI) HandleHeartbeat(hb heartbeat.Heartbeat) error {
	if s.cliPath == "" {
		return fmt.Errorf("wakatime-cli path not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, hb)

	if len(s.queue) >= maxQueueSize {
		go s.Flush()
	} else if s.timer == nil {
		s.timer = time.AfterFunc(batchSendInterval, func() {
			s.mu.Lock()
			s.timer = nil
			s.mu.Unlock()
			s.Flush()
		})
	}
	return nil
}

// Flush sends the oldest queued heartbeat and re-arms the timer while
// anything remains queued.
func (s *WakatimeCLI) Flush() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	hb := s.queue[0]
	s.queue = s.queue[1:]
	remaining := len(s.queue)

	if remaining > 0 && s.timer == nil {
		s.timer = time.AfterFunc(batchSendInterval, func() {
			s.mu.Lock()
			s.timer = nil
			s.mu.Unlock()
			s.Flush()
		})
	}
	s.mu.Unlock()

	if err := s.send(hb); err != nil {
		s.log.Warningf("wakatime-cli send failed for %s: %s", hb.Entity, err.Error())
	}
}

// invoke runs wakatime-cli once for one heartbeat.
func (s *WakatimeCLI) invoke(hb heartbeat.Heartbeat) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cliPath, s.buildArgs(hb)...)
	return cmd.Run()
}

// buildArgs maps a heartbeat onto wakatime-cli flags.
func (s *WakatimeCLI) buildArgs(hb heartbeat.Heartbeat) []string {
	args := []string{}

	args = append(args, "--entity", quoteArg(hb.Entity))
	args = append(args, "--entity-type", hb.EntityType)
	args = append(args, "--time", fmt.Sprintf("%.3f", hb.Time))
	args = append(args, "--plugin", quoteArg(hb.Plugin))
	args = append(args, "--lineno", strconv.Itoa(hb.LineNumber))
	args = append(args, "--cursorpos", strconv.Itoa(hb.CursorPos))
	args = append(args, "--lines-in-file", strconv.Itoa(hb.Lines))

	if hb.Category != "" {
		args = append(args, "--category", hb.Category)
	}
	if hb.Project != "" {
		args = append(args, "--alternate-project", quoteArg(hb.Project))
	}
	if hb.Language != "" {
		args = append(args, "--alternate-language", quoteArg(hb.Language))
	}

	if s.apiKey != "" {
		args = append(args, "--key", quoteArg(s.apiKey))
	}
	if s.apiURL != "" {
		args = append(args, "--api-url", quoteArg(s.apiURL))
	}

	if hb.IsWrite {
		args = append(args, "--write")
	}
	if hb.IsUnsaved {
		args = append(args, "--is-unsaved-entity")
	}

	if runtime.GOOS == "windows" {
		if configFile := config.WakatimeConfigPath(); configFile != "" {
			args = append(args, "--config", quoteArg(configFile))
		}
		if logFile := config.WakatimeLogPath(); logFile != "" {
			args = append(args, "--log-file", quoteArg(logFile))
		}
	}

	return args
}

func quoteArg(arg string) string {
	if needsQuoting(arg) {
		return "\"" + strings.ReplaceAll(arg, "\"", "\\\"") + "\""
	}
	return arg
}

func needsQuoting(arg string) bool {
	for _, ch := range arg {
		if ch == ' ' || ch == '\t' || ch == '"' || ch == '\\' {
			return true
		}
	}
	return false
}
