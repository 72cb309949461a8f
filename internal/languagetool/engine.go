package languagetool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultReadyMarker  = "Server started"
	DefaultStartTimeout = 60 * time.Second
	// DefaultRetryInterval is the first wait between probes of a configured
	// URL after the engine failed to start; it doubles up to maxRetryInterval.
	DefaultRetryInterval = 2 * time.Second
	maxRetryInterval     = 30 * time.Second
	probeTimeout         = 3 * time.Second
)

// DefaultCommand spawns a local server; "--port N" is appended.
var DefaultCommand = []string{"languagetool", "--http"}

type EngineOptions struct {
	// URL of an already running server. Empty skips the probe.
	URL string
	// Command spawns a server when the probe fails. Empty disables spawning.
	Command      []string
	ReadyMarker  string
	StartTimeout time.Duration
	// RetryInterval paces re-probing of URL while the engine is not ready.
	RetryInterval time.Duration
	Username      string
	APIKey        string
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Engine owns the connection to a LanguageTool server: it either attaches
// to a running one or spawns a child process and waits for its ready marker.
// Requests made before readiness fail with ErrNotReady.
type Engine struct {
	opts EngineOptions
	log  *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
	client    *Client // written once, before ready is closed

	mu        sync.Mutex
	cmd       *exec.Cmd
	lastProbe time.Time
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.ReadyMarker == "" {
		opts.ReadyMarker = DefaultReadyMarker
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{opts: opts, log: log.With("component", "languagetool"), ready: make(chan struct{})}
}

// Ready is closed once the engine accepts requests.
func (e *Engine) Ready() <-chan struct{} { return e.ready }

// IsReady reports whether Ready has been closed.
func (e *Engine) IsReady() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Client returns the API client, or ErrNotReady before readiness.
func (e *Engine) Client() (*Client, error) {
	if !e.IsReady() {
		return nil, ErrNotReady
	}
	return e.client, nil
}

// readyClient returns the client, first re-probing the configured URL when
// the engine is not ready and the last probe is older than RetryInterval.
func (e *Engine) readyClient(ctx context.Context) (*Client, error) {
	if e.IsReady() {
		return e.client, nil
	}
	if e.opts.URL == "" {
		return nil, ErrNotReady
	}
	e.mu.Lock()
	due := time.Since(e.lastProbe) >= e.opts.RetryInterval
	e.mu.Unlock()
	if !due || e.probe(ctx) != nil {
		return nil, ErrNotReady
	}
	return e.client, nil
}

// Check forwards to the ready client.
func (e *Engine) Check(ctx context.Context, req CheckRequest) (*Response, error) {
	c, err := e.readyClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Check(ctx, req)
}

// AddWord forwards to the ready client.
func (e *Engine) AddWord(ctx context.Context, word string) error {
	c, err := e.readyClient(ctx)
	if err != nil {
		return err
	}
	return c.AddWord(ctx, word)
}

// Start attaches to a running server or spawns one, and blocks until the
// engine is ready, the start timeout passes, or ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if e.IsReady() {
		return nil
	}
	if e.opts.URL != "" {
		if err := e.probe(ctx); err == nil {
			return nil
		}
	}
	if len(e.opts.Command) == 0 {
		return &UnavailableError{URL: e.opts.URL, Err: errors.New("no running server and spawning is disabled")}
	}
	return e.spawn(ctx)
}

// Retry re-probes the configured URL with exponential backoff until a server
// answers, the engine becomes ready some other way, or ctx ends. Run it after
// a failed Start so a server brought up later is still picked up.
func (e *Engine) Retry(ctx context.Context) error {
	if e.opts.URL == "" {
		return &UnavailableError{Err: errors.New("no url to retry")}
	}
	delay := e.opts.RetryInterval
	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-e.ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if err := e.probe(ctx); err == nil {
			return nil
		}
		delay = min(delay*2, maxRetryInterval)
		timer.Reset(delay)
	}
}

// probe asks the configured URL for its languages and marks the engine ready
// on success.
func (e *Engine) probe(ctx context.Context) error {
	e.mu.Lock()
	e.lastProbe = time.Now()
	e.mu.Unlock()

	c := e.newClient(e.opts.URL)
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	langs, err := c.Languages(pctx)
	cancel()
	if err != nil {
		e.log.Debug("no server at configured url", "url", e.opts.URL, "err", err)
		return err
	}
	e.log.Info("attached to running server", "url", c.BaseURL(), "languages", len(langs))
	e.markReady(c)
	return nil
}

func (e *Engine) spawn(ctx context.Context) error {
	path, err := exec.LookPath(e.opts.Command[0])
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s is not on PATH", ErrNotFound, e.opts.Command[0])
		}
		return fmt.Errorf("locate %s: %w", e.opts.Command[0], err)
	}
	port, err := freePort()
	if err != nil {
		return fmt.Errorf("pick port: %w", err)
	}

	args := append(append([]string{}, e.opts.Command[1:]...), "--port", strconv.Itoa(port))
	// #nosec G204 -- command comes from configuration
	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	e.mu.Lock()
	e.cmd = cmd
	e.mu.Unlock()
	e.log.Info("spawned server", "pid", cmd.Process.Pid, "port", port)

	marker := make(chan struct{})
	var once sync.Once
	var readers errgroup.Group
	readers.Go(func() error {
		return e.scan(stdout, func(line string) {
			e.log.Info("server output", "line", line)
			if strings.Contains(line, e.opts.ReadyMarker) {
				once.Do(func() { close(marker) })
			}
		})
	})
	readers.Go(func() error {
		return e.scan(stderr, func(line string) {
			e.log.Warn("server error output", "line", line)
		})
	})
	exited := make(chan error, 1)
	go func() {
		_ = readers.Wait()
		exited <- cmd.Wait()
	}()

	timer := time.NewTimer(e.opts.StartTimeout)
	defer timer.Stop()
	select {
	case <-marker:
		e.markReady(e.newClient("http://localhost:" + strconv.Itoa(port)))
		e.log.Info("server ready", "port", port)
		return nil
	case err := <-exited:
		return fmt.Errorf("%w: server exited before %q: %v", ErrNotReady, e.opts.ReadyMarker, err)
	case <-timer.C:
		_ = e.Stop()
		return fmt.Errorf("%w: no %q within %s", ErrNotReady, e.opts.ReadyMarker, e.opts.StartTimeout)
	case <-ctx.Done():
		_ = e.Stop()
		return ctx.Err()
	}
}

func (e *Engine) scan(r io.Reader, fn func(line string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			fn(line)
		}
	}
	return sc.Err()
}

// Stop kills a spawned server. Attached servers are left running.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cmd := e.cmd
	e.cmd = nil
	e.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill languagetool: %w", err)
	}
	return nil
}

func (e *Engine) markReady(c *Client) {
	e.readyOnce.Do(func() {
		e.client = c
		close(e.ready)
	})
}

func (e *Engine) newClient(base string) *Client {
	return NewClient(ClientOptions{
		BaseURL:    base,
		HTTPClient: e.opts.HTTPClient,
		Username:   e.opts.Username,
		APIKey:     e.opts.APIKey,
		Logger:     e.log,
	})
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address %v", l.Addr())
	}
	return addr.Port, nil
}
