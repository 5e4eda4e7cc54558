// Package lsp adapts Godot editor language-server notifications into
// normalized activity for the heartbeat dispatcher. The core never sees
// LSP types; it only receives heartbeat.Activity.
package lsp

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"github.com/tliron/kutil/logging"

	"godotime/internal/config"
	"godotime/internal/heartbeat"
	"godotime/internal/sink"
	"godotime/internal/vcs"
)

const (
	serverName = "godotime"

	// pluginTag identifies this collector in heartbeats.
	pluginTag = "Godot"

	// languageTag is the fixed language for the Godot editing
	// environment.
	languageTag = "GDScript"
)

// Server runs the LSP endpoint and owns one collector per editor
// session. The dispatcher is built on Initialize, once the workspace
// root is known.
type Server struct {
	cfg     config.Config
	log     logging.Logger
	version string

	mu         sync.Mutex
	dispatcher *heartbeat.Dispatcher
	cursors    map[string]int
}

// NewServer creates the LSP server.
func NewServer(cfg config.Config, version string, log logging.Logger) *Server {
	if log == nil {
		log = logging.GetLogger(serverName)
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		version: version,
		cursors: make(map[string]int),
	}
}

// Run serves LSP on stdio until the editor disconnects.
func (s *Server) Run() error {
	handler := protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidSave:   s.didSave,
		TextDocumentDidClose:  s.didClose,
	}

	srv := server.NewServer(&handler, serverName, s.cfg.Debug)
	srv.RunStdio()
	return nil
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := ""
	if params.RootURI != nil {
		root = cleanFileURI(*params.RootURI)
	} else if params.RootPath != nil {
		root = filepath.Clean(*params.RootPath)
	}

	if err := s.buildCollector(root); err != nil {
		return nil, err
	}

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncKindIncremental,
	}
	return protocol.InitializeResult{Capabilities: capabilities}, nil
}

// buildCollector wires resolver, dispatcher and sinks for one workspace.
func (s *Server) buildCollector(root string) error {
	project := s.cfg.Project
	if project == "" && root != "" {
		project = filepath.Base(root)
	}

	var resolver heartbeat.BranchResolver
	r, err := vcs.NewResolver(vcs.Strategy(s.cfg.BranchStrategy), s.log)
	if err != nil {
		return err
	}
	resolver = r
	if s.cfg.BranchCacheSeconds > 0 {
		resolver = vcs.Cached(r, time.Duration(s.cfg.BranchCacheSeconds)*time.Second)
	}

	dispatcher, err := heartbeat.NewDispatcher(heartbeat.Config{
		Project:     project,
		ProjectRoot: root,
		Plugin:      pluginTag,
		Language:    languageTag,
		Cooldown:    time.Duration(s.cfg.CooldownSeconds) * time.Second,
		Branch:      resolver,
		Logger:      s.log,
	})
	if err != nil {
		return err
	}

	if s.cfg.WakatimeCLI != "" {
		dispatcher.Subscribe(sink.NewWakatimeCLI(s.cfg.WakatimeCLI, s.log))
	}
	if s.cfg.LogFile != "" {
		dispatcher.Subscribe(sink.NewActivityLog(s.cfg.LogFile))
	}

	s.mu.Lock()
	s.dispatcher = dispatcher
	s.mu.Unlock()

	s.log.Infof("godotime %s ready: project=%s root=%s branch_strategy=%s", s.version, project, root, s.cfg.BranchStrategy)
	return nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	key, unsaved := entityKey(string(params.TextDocument.URI))
	lines := 1
	if params.TextDocument.Text != "" {
		lines = len(strings.Split(params.TextDocument.Text, "\n"))
	}

	s.notify(heartbeat.Activity{
		Entity:    key,
		IsUnsaved: unsaved,
		Lines:     lines,
		CursorPos: s.cursorFor(key),
	})
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	key, unsaved := entityKey(string(params.TextDocument.URI))

	lines := 1
	lineNumber := 1
	cursorPos := 0

	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[0]

		if changeEvent, ok := change.(protocol.TextDocumentContentChangeEvent); ok {
			if changeEvent.Range != nil {
				lineNumber = int(changeEvent.Range.Start.Line) + 1
				cursorPos = int(changeEvent.Range.Start.Character)
			}
			if changeEvent.Text != "" {
				lines = len(strings.Split(changeEvent.Text, "\n"))
			}
		}
	}

	s.saveCursor(key, cursorPos)

	s.notify(heartbeat.Activity{
		Entity:     key,
		IsUnsaved:  unsaved,
		LineNumber: lineNumber,
		CursorPos:  cursorPos,
		Lines:      lines,
	})
	return nil
}

func (s *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	key, unsaved := entityKey(string(params.TextDocument.URI))

	lines := 1
	if params.Text != nil {
		lines = len(strings.Split(*params.Text, "\n"))
	}

	s.notify(heartbeat.Activity{
		Entity:     key,
		IsWrite:    true,
		IsUnsaved:  unsaved,
		LineNumber: 1,
		CursorPos:  s.cursorFor(key),
		Lines:      lines,
	})
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	key, unsaved := entityKey(string(params.TextDocument.URI))

	s.notify(heartbeat.Activity{
		Entity:    key,
		IsUnsaved: unsaved,
		CursorPos: s.cursorFor(key),
	})
	return nil
}

// notify forwards activity to the dispatcher, if one exists yet. The
// editor may fire document notifications before Initialize; those are
// dropped.
func (s *Server) notify(act heartbeat.Activity) {
	s.mu.Lock()
	d := s.dispatcher
	s.mu.Unlock()

	if d == nil {
		s.log.Warningf("activity before initialize, dropping %s", act.Entity)
		return
	}
	d.Notify(act)
}

func (s *Server) saveCursor(key string, pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key] = pos
}

func (s *Server) cursorFor(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[key]
}
