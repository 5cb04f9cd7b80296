// Package nova adapts a Nova Act runtime to the automation.Backend interface.
//
// Each invocation opens a browser session at the starting page, issues one
// natural-language act, and releases the session on every exit path.
package nova

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neuronudge/nova-bridge/internal/automation"
)

const (
	// maxResponseBodySize caps how much of a runtime response is read.
	maxResponseBodySize = 1 << 20

	releaseTimeout = 10 * time.Second

	statusSucceeded = "succeeded"
)

var (
	errEmptySessionID = errors.New("runtime returned an empty session id")
	errActFailed      = errors.New("act did not succeed")
)

// Config holds Nova Act runtime settings.
type Config struct {
	// Endpoint is the runtime base URL. Empty means the binding is absent.
	Endpoint string

	// Headless asks the runtime for a headless browser.
	Headless bool

	// ActTimeout bounds a single act. Zero means no bound.
	ActTimeout time.Duration
}

// Client talks to a Nova Act runtime over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Nova Act client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// Name implements automation.Backend.
func (c *Client) Name() string { return "nova-act" }

// Available reports whether a runtime endpoint is configured.
func (c *Client) Available() bool {
	return c.cfg.Endpoint != ""
}

type openSessionRequest struct {
	StartingPage string `json:"starting_page,omitempty"`
	ClientToken  string `json:"client_token"`
	Headless     bool   `json:"headless"`
}

type openSessionResponse struct {
	SessionID string `json:"session_id"`
}

type actRequest struct {
	Prompt string `json:"prompt"`
}

type actResponse struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Invoke implements automation.Backend.
func (c *Client) Invoke(ctx context.Context, inv automation.Invocation) error {
	if !c.Available() {
		return errors.New("nova act endpoint not configured")
	}

	sessionID, err := c.openSession(ctx, inv)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if releaseErr := c.releaseSession(ctx, inv.APIKey, sessionID); releaseErr != nil {
			c.logger.Warn("Failed to release Nova session",
				"session_id", sessionID,
				"dispatch_id", inv.ID,
				"error", releaseErr)
		}
	}()

	actCtx := ctx
	if c.cfg.ActTimeout > 0 {
		var cancel context.CancelFunc
		actCtx, cancel = context.WithTimeout(ctx, c.cfg.ActTimeout)
		defer cancel()
	}

	var res actResponse
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/act"
	if err := c.do(actCtx, http.MethodPost, path, inv.APIKey, actRequest{Prompt: inv.Prompt}, &res); err != nil {
		return fmt.Errorf("act: %w", err)
	}
	if res.Status != statusSucceeded {
		msg := res.Error
		if msg == "" {
			msg = "status " + res.Status
		}
		return fmt.Errorf("%w: %s", errActFailed, msg)
	}

	c.logger.Debug("Nova act succeeded",
		"session_id", sessionID,
		"dispatch_id", inv.ID,
		"response", res.Response)
	return nil
}

func (c *Client) openSession(ctx context.Context, inv automation.Invocation) (string, error) {
	body := openSessionRequest{
		StartingPage: inv.StartingPage,
		ClientToken:  inv.ID,
		Headless:     c.cfg.Headless,
	}
	var res openSessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", inv.APIKey, body, &res); err != nil {
		return "", err
	}
	if res.SessionID == "" {
		return "", errEmptySessionID
	}
	return res.SessionID, nil
}

// releaseSession runs even when ctx is already canceled so the runtime does
// not keep an orphaned browser.
func (c *Client) releaseSession(ctx context.Context, apiKey, sessionID string) error {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	return c.do(releaseCtx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(sessionID), apiKey, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ automation.Backend = (*Client)(nil)
