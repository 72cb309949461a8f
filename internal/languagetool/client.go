package languagetool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 16 << 20

// DefaultDisabledRules misfire on the padding the annotation inserts.
var DefaultDisabledRules = []string{"WHITESPACE_RULE", "EN_QUOTES"}

type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	// Username and APIKey are sent with dictionary requests.
	Username string
	APIKey   string
	Logger   *slog.Logger
}

// Client is a thin LanguageTool HTTP API client. It is safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	username string
	apiKey   string
	log      *slog.Logger
}

func NewClient(opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		http:     hc,
		username: opts.Username,
		apiKey:   opts.APIKey,
		log:      log,
	}
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.base }

// Check submits an annotated document.
func (c *Client) Check(ctx context.Context, req CheckRequest) (*Response, error) {
	form := url.Values{}
	form.Set("data", string(req.Data))
	lang := req.Language
	if lang == "" {
		lang = "auto"
	}
	form.Set("language", lang)
	if req.MotherTongue != "" {
		form.Set("motherTongue", req.MotherTongue)
	}
	if len(req.DisabledRules) > 0 {
		form.Set("disabledRules", strings.Join(req.DisabledRules, ","))
	}
	if len(req.EnabledRules) > 0 {
		form.Set("enabledRules", strings.Join(req.EnabledRules, ","))
	}
	if req.Level != "" {
		form.Set("level", req.Level)
	}

	var resp Response
	if err := c.do(ctx, http.MethodPost, "check", form, &resp); err != nil {
		return nil, err
	}
	c.log.Debug("languagetool check", "language", lang, "matches", len(resp.Matches))
	return &resp, nil
}

// AddWord adds word to the user's dictionary on the server.
func (c *Client) AddWord(ctx context.Context, word string) error {
	form := url.Values{}
	form.Set("word", word)
	if c.username != "" {
		form.Set("username", c.username)
	}
	if c.apiKey != "" {
		form.Set("apiKey", c.apiKey)
	}
	return c.do(ctx, http.MethodPost, "words/add", form, nil)
}

// Languages lists the languages the server supports. It doubles as a
// liveness probe.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var out []Language
	if err := c.do(ctx, http.MethodGet, "languages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/v2/"+endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{URL: c.base, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &UnavailableError{URL: c.base, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
