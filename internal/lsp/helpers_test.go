package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"prosecheck/internal/check"
	"prosecheck/internal/languagetool/lttest"
)

const waitTimeout = 3 * time.Second

type testClient struct {
	t      *testing.T
	srv    *Server
	fake   *lttest.Fake
	in     *io.PipeWriter
	msgs   chan rpcMessage
	done   chan struct{}
	runErr error
	nextID int
}

// startServer runs a server over in-memory pipes against a fake engine.
func startServer(t *testing.T, opts ServerOptions) *testClient {
	t.Helper()
	fake := lttest.NewFake()
	if opts.Checker == nil {
		opts.Checker = check.New(fake, check.DefaultOptions())
	}
	if opts.Dictionary == nil {
		opts.Dictionary = fake
	}
	if opts.Debounce == 0 {
		opts.Debounce = 10 * time.Millisecond
	}
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(inR, outW, opts)

	c := &testClient{
		t:    t,
		srv:  srv,
		fake: fake,
		in:   inW,
		msgs: make(chan rpcMessage, 64),
		done: make(chan struct{}),
	}
	go func() {
		c.runErr = srv.Run(context.Background())
		close(c.done)
		_ = outW.Close()
	}()
	go func() {
		r := bufio.NewReader(outR)
		for {
			payload, err := readMessage(r)
			if err != nil {
				close(c.msgs)
				return
			}
			var msg rpcMessage
			if err := json.Unmarshal(payload, &msg); err == nil {
				c.msgs <- msg
			}
		}
	}()
	t.Cleanup(func() {
		_ = inW.Close()
		_ = outR.Close()
		select {
		case <-c.done:
		case <-time.After(waitTimeout):
			t.Errorf("server did not stop")
		}
	})
	return c
}

// wait returns Run's result once the server has stopped.
func (c *testClient) wait() error {
	c.t.Helper()
	select {
	case <-c.done:
		return c.runErr
	case <-time.After(waitTimeout):
		c.t.Fatalf("server did not stop")
		return nil
	}
}

func (c *testClient) write(msg map[string]any) {
	c.t.Helper()
	msg["jsonrpc"] = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := writeMessage(c.in, payload); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(map[string]any{"method": method, "params": params})
}

func (c *testClient) request(method string, params any) int {
	c.t.Helper()
	c.nextID++
	c.write(map[string]any{"id": c.nextID, "method": method, "params": params})
	return c.nextID
}

// waitFor returns the first message matching pred, skipping others.
func (c *testClient) waitFor(what string, pred func(rpcMessage) bool) rpcMessage {
	c.t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case msg, ok := <-c.msgs:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", what)
			}
			if pred(msg) {
				return msg
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func (c *testClient) response(id int) rpcMessage {
	c.t.Helper()
	want, _ := json.Marshal(id)
	return c.waitFor("response", func(m rpcMessage) bool {
		return m.Method == "" && string(m.ID) == string(want)
	})
}

func (c *testClient) publish(uri string) publishDiagnosticsParams {
	c.t.Helper()
	var params publishDiagnosticsParams
	c.waitFor("publishDiagnostics", func(m rpcMessage) bool {
		if m.Method != "textDocument/publishDiagnostics" {
			return false
		}
		params = publishDiagnosticsParams{}
		if err := json.Unmarshal(m.Params, &params); err != nil {
			c.t.Fatalf("decode publish: %v", err)
		}
		return params.URI == uri
	})
	return params
}

// quiet asserts that no message arrives for d.
func (c *testClient) quiet(d time.Duration) {
	c.t.Helper()
	select {
	case msg := <-c.msgs:
		c.t.Fatalf("unexpected message %s %s", msg.Method, msg.Params)
	case <-time.After(d):
	}
}

func (c *testClient) open(uri, text string, version int) {
	c.t.Helper()
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "markdown", Version: version, Text: text},
	})
}

func (c *testClient) replace(uri, text string, version int) {
	c.t.Helper()
	c.notify("textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []textDocumentContentChangeEvent{{Text: text}},
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func rangeOf(sl, sc, el, ec int) lspRange {
	return lspRange{Start: position{Line: sl, Character: sc}, End: position{Line: el, Character: ec}}
}
