// Package lsp serves grammar diagnostics for markdown over the Language
// Server Protocol on stdio.
//
// All mutable state (open documents, debounce timers, readiness, in-flight
// checks, published diagnostics) belongs to the goroutine running Run. The
// reader goroutine only decodes frames; check goroutines only run the
// checker. Both report back through the event channel.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"prosecheck/internal/cache"
	"prosecheck/internal/check"
	"prosecheck/internal/config"
	"prosecheck/internal/diag"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")

	errEndOfInput = errors.New("end of input")
)

// CommandAddWord adds its single string argument to the engine dictionary.
const CommandAddWord = "prosecheck.addWord"

const DefaultDebounce = 500 * time.Millisecond

// Dictionary accepts words the user marks as correct.
type Dictionary interface {
	AddWord(ctx context.Context, word string) error
}

// ServerOptions configures the server. Checker is required.
type ServerOptions struct {
	Checker  *check.Checker
	Debounce time.Duration
	// Ready is closed once the engine accepts checks. Nil means it already does.
	Ready      <-chan struct{}
	Dictionary Dictionary
	// Cache is dropped after a dictionary change.
	Cache   *cache.Store
	Logger  *slog.Logger
	Version string
}

// Server handles stdio JSON-RPC for prosecheck.
type Server struct {
	in     *bufio.Reader
	w      writer
	log    *slog.Logger
	events chan any
	done   chan struct{}
	ctx    context.Context
	tasks  errgroup.Group

	checker           *check.Checker
	debounce          time.Duration
	ready             bool
	readyCh           <-chan struct{}
	dict              Dictionary
	cache             *cache.Store
	docs              map[string]*document
	stamp             uint64
	shutdownRequested bool
	engineWarned      bool
	version           string
}

// document is the server's view of one open buffer.
type document struct {
	uri     string
	text    string
	version int
	// stamp identifies the current text; it grows on every edit.
	stamp uint64
	// applied is the stamp of the text the published diagnostics describe.
	applied uint64
	// checking is the stamp of the in-flight check, zero when idle.
	checking uint64
	dirty    bool
	pending  bool
	timer    *time.Timer
	timerSeq uint64
	diags    []diag.Diagnostic
}

type (
	inboundEvent   struct{ msg *rpcMessage }
	readErrorEvent struct{ err error }
	debounceEvent  struct {
		uri string
		seq uint64
	}
	checkResult struct {
		uri     string
		stamp   uint64
		version int
		diags   []diag.Diagnostic
		err     error
	}
	engineErrorEvent struct{ err error }
	configEvent      struct{ cfg *config.Config }
	addWordResult    struct {
		id   json.RawMessage
		word string
		err  error
	}
)

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	checker := opts.Checker
	if checker == nil {
		panic("lsp: ServerOptions.Checker is required")
	}
	return &Server{
		in:       bufio.NewReader(in),
		w:        writer{out: bufio.NewWriter(out)},
		log:      log,
		events:   make(chan any, 64),
		done:     make(chan struct{}),
		ctx:      context.Background(),
		checker:  checker.WithLogger(log),
		debounce: debounce,
		ready:    opts.Ready == nil,
		readyCh:  opts.Ready,
		dict:     opts.Dictionary,
		cache:    opts.Cache,
		docs:     make(map[string]*document),
		version:  opts.Version,
	}
}

// ReportEngineError tells the client that the engine could not be started.
// Safe to call from any goroutine.
func (s *Server) ReportEngineError(err error) {
	s.post(engineErrorEvent{err: err})
}

// ApplyConfig replaces check options and debounce, then re-checks open
// documents. Safe to call from any goroutine; pass it to config.Watch.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.post(configEvent{cfg: cfg})
}

func (s *Server) post(ev any) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Run serves LSP requests until exit, end of input or ctx cancellation.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx
	defer func() {
		cancel()
		close(s.done)
		for _, doc := range s.docs {
			if doc.timer != nil {
				doc.timer.Stop()
			}
		}
		_ = s.tasks.Wait()
	}()

	go s.readLoop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.readyCh:
			s.readyCh = nil
			s.onReady()
		case ev := <-s.events:
			if err := s.dispatch(ev); err != nil {
				if errors.Is(err, errEndOfInput) {
					s.log.Info("client closed the connection")
					return nil
				}
				return err
			}
		}
	}
}

func (s *Server) readLoop() {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			s.post(readErrorEvent{err: err})
			return
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", "err", err)
			continue
		}
		s.post(inboundEvent{msg: &msg})
	}
}

func (s *Server) dispatch(ev any) error {
	switch ev := ev.(type) {
	case inboundEvent:
		return s.handleMessage(ev.msg)
	case readErrorEvent:
		if errors.Is(ev.err, io.EOF) {
			return errEndOfInput
		}
		return ev.err
	case debounceEvent:
		s.onDebounce(ev)
	case checkResult:
		return s.onCheckResult(ev)
	case engineErrorEvent:
		return s.onEngineError(ev.err)
	case configEvent:
		s.onConfig(ev.cfg)
	case addWordResult:
		return s.onAddWord(ev)
	}
	return nil
}

func (s *Server) publish(doc *document, version int, diags []diag.Diagnostic) error {
	return s.w.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         doc.uri,
		Version:     &version,
		Diagnostics: toLSPDiagnostics(diags),
	})
}

func (s *Server) clear(uri string) error {
	return s.w.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []lspDiagnostic{},
	})
}

func (s *Server) showMessage(typ int, message string) error {
	return s.w.notify("window/showMessage", showMessageParams{Type: typ, Message: message})
}
