// Package mcpserver exposes the checker as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prosecheck/internal/annotation"
	"prosecheck/internal/check"
	"prosecheck/internal/config"
	"prosecheck/internal/diagfmt"
	"prosecheck/internal/driver"
	"prosecheck/internal/source"
	"prosecheck/internal/version"
)

// Config holds MCP server dependencies.
type Config struct {
	Checker *check.Checker
	// Ready is closed once the engine accepts requests; nil means ready.
	Ready  <-chan struct{}
	Logger *slog.Logger
}

// Server serves check_markdown and annotate_markdown.
type Server struct {
	server  *mcp.Server
	checker *check.Checker
	ready   <-chan struct{}
	logger  *slog.Logger
}

// New creates a server with its tools registered.
func New(cfg Config) *Server {
	if cfg.Checker == nil {
		panic("mcpserver: nil checker")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		server: mcp.NewServer(
			&mcp.Implementation{Name: config.AppName, Version: version.Version},
			nil,
		),
		checker: cfg.Checker,
		ready:   cfg.Ready,
		logger:  logger,
	}
	s.registerCheckMarkdown()
	s.registerAnnotateMarkdown()
	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func toolResult(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	res, marshalErr := toolResult(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	res.IsError = true
	return res, nil
}

type checkMarkdownInput struct {
	Text          string   `json:"text,omitempty" jsonschema:"Markdown source to check"`
	Path          string   `json:"path,omitempty" jsonschema:"Markdown file to read when text is empty"`
	Language      string   `json:"language,omitempty" jsonschema:"Language code such as en-US, or auto"`
	DisabledRules []string `json:"disabled_rules,omitempty" jsonschema:"Extra rule IDs to disable"`
}

func (s *Server) registerCheckMarkdown() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_markdown",
		Description: "Check spelling and grammar of a markdown document, ignoring markup and code",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input checkMarkdownInput) (*mcp.CallToolResult, any, error) {
		out, err := s.checkMarkdown(ctx, input)
		if err != nil {
			s.logger.Error("check_markdown failed", "path", input.Path, "err", err)
			res, resErr := errorResult(err)
			return res, nil, resErr
		}
		res, err := toolResult(map[string]any{
			"success":     true,
			"count":       out.Count,
			"diagnostics": out.Diagnostics,
		})
		return res, nil, err
	})
}

func (s *Server) checkMarkdown(ctx context.Context, input checkMarkdownInput) (diagfmt.DiagnosticsOutput, error) {
	doc, err := loadDocument(input.Text, input.Path)
	if err != nil {
		return diagfmt.DiagnosticsOutput{}, err
	}

	checker := s.checker
	if input.Language != "" || len(input.DisabledRules) > 0 {
		opts := checker.Options()
		if input.Language != "" {
			if err := config.ValidateLanguage(input.Language); err != nil {
				return diagfmt.DiagnosticsOutput{}, err
			}
			opts.Language = input.Language
		}
		opts.DisabledRules = append(append([]string(nil), opts.DisabledRules...), input.DisabledRules...)
		checker = checker.WithOptions(opts)
	}

	if err := s.waitReady(ctx); err != nil {
		return diagfmt.DiagnosticsOutput{}, err
	}
	diags, err := checker.Check(ctx, doc.Text())
	if err != nil {
		return diagfmt.DiagnosticsOutput{}, err
	}
	res := driver.FileResult{Path: input.Path, Doc: doc, Diagnostics: diags}
	return diagfmt.BuildDiagnosticsOutput([]driver.FileResult{res}, diagfmt.JSONOpts{PathMode: diagfmt.PathModeAbsolute}), nil
}

func (s *Server) waitReady(ctx context.Context) error {
	if s.ready == nil {
		return nil
	}
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for languagetool: %w", ctx.Err())
	}
}

type annotateMarkdownInput struct {
	Text string `json:"text,omitempty" jsonschema:"Markdown source to annotate"`
	Path string `json:"path,omitempty" jsonschema:"Markdown file to read when text is empty"`
}

func (s *Server) registerAnnotateMarkdown() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "annotate_markdown",
		Description: "Show how a markdown document is split into prose and markup for the grammar engine",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input annotateMarkdownInput) (*mcp.CallToolResult, any, error) {
		doc, err := loadDocument(input.Text, input.Path)
		if err != nil {
			res, resErr := errorResult(err)
			return res, nil, resErr
		}
		segs, err := annotation.FromMarkdown(doc.Text())
		if err != nil {
			res, resErr := errorResult(err)
			return res, nil, resErr
		}
		data, err := annotation.Encode(segs)
		if err != nil {
			return nil, nil, err
		}
		res, err := toolResult(map[string]any{
			"success":   true,
			"checkable": annotation.Checkable(segs),
			"data":      json.RawMessage(data),
		})
		return res, nil, err
	})
}

func loadDocument(text, path string) (*source.Document, error) {
	switch {
	case text != "":
		return source.NewDocument(text), nil
	case path != "":
		return source.ReadFile(path)
	default:
		return nil, errors.New("either text or path is required")
	}
}
