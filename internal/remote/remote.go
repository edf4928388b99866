// Package remote talks to the server that is the authority for quotes.
//
// The adapter has no business logic: it fetches the server snapshot, maps it
// to quotes, and pushes the local collection back. Every failure comes back as
// a *TransportError so the orchestrator can decide what a failure means for
// the cycle.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/quotesync/quotesync/internal/quote"
)

// Defaults mirror the public mock API the collection was first synced against.
const (
	DefaultReadURL  = "https://jsonplaceholder.typicode.com/posts?_limit=5"
	DefaultWriteURL = "https://jsonplaceholder.typicode.com/posts"
	DefaultCategory = "server-sync"
	DefaultTimeout  = 10 * time.Second
)

// ErrTransport matches every error returned by an Adapter.
var ErrTransport = errors.New("transport error")

// TransportError reports a failed fetch or push.
type TransportError struct {
	Op  string // "fetch" or "push"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// Adapter reads and writes the remote collection.
type Adapter interface {
	// FetchRemote returns the server snapshot as quotes.
	FetchRemote(ctx context.Context) ([]quote.Quote, error)

	// PushLocal sends the full local collection to the server.
	PushLocal(ctx context.Context, quotes []quote.Quote) error
}

// Config configures an HTTPAdapter.
type Config struct {
	ReadURL  string
	WriteURL string

	// Category is the tag given to every server quote.
	Category string

	// Timeout bounds each request.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit breaker. Zero disables the breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration

	// Client overrides the HTTP client.
	Client *http.Client

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadURL:         DefaultReadURL,
		WriteURL:        DefaultWriteURL,
		Category:        DefaultCategory,
		Timeout:         DefaultTimeout,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
	}
}

// post is the subset of the server payload the adapter reads.
type post struct {
	Title string `json:"title"`
}

// HTTPAdapter implements Adapter over HTTP with JSON bodies.
type HTTPAdapter struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// New creates an HTTPAdapter. A nil config uses DefaultConfig().
func New(cfg *Config) (*HTTPAdapter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg

	if c.ReadURL == "" {
		return nil, fmt.Errorf("read URL cannot be empty")
	}
	if c.WriteURL == "" {
		return nil, fmt.Errorf("write URL cannot be empty")
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	client := c.Client
	if client == nil {
		client = &http.Client{}
	}

	a := &HTTPAdapter{
		cfg:    c,
		client: client,
		logger: c.Logger,
	}

	if c.BreakerFailures > 0 {
		a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "remote",
			MaxRequests: 1,
			Timeout:     c.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= c.BreakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				a.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return a, nil
}

// FetchRemote implements Adapter.FetchRemote.
func (a *HTTPAdapter) FetchRemote(ctx context.Context) ([]quote.Quote, error) {
	var quotes []quote.Quote

	err := a.guard(func() error {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.ReadURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		body, err := a.do(req)
		if err != nil {
			return err
		}

		var posts []post
		if err := json.Unmarshal(body, &posts); err != nil {
			return fmt.Errorf("failed to decode server quotes: %w", err)
		}

		quotes = make([]quote.Quote, 0, len(posts))
		for _, p := range posts {
			text := strings.TrimSpace(p.Title)
			if text == "" {
				continue
			}
			quotes = append(quotes, quote.Quote{Text: text, Category: a.cfg.Category})
		}
		return nil
	})
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}

	a.logger.Debug("fetched server quotes", "count", len(quotes))
	return quotes, nil
}

// PushLocal implements Adapter.PushLocal. The response body is ignored.
func (a *HTTPAdapter) PushLocal(ctx context.Context, quotes []quote.Quote) error {
	payload, err := quote.Encode(quotes)
	if err != nil {
		return &TransportError{Op: "push", Err: err}
	}

	err = a.guard(func() error {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WriteURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")

		_, err = a.do(req)
		return err
	})
	if err != nil {
		return &TransportError{Op: "push", Err: err}
	}

	a.logger.Debug("pushed local quotes", "count", len(quotes))
	return nil
}

// guard runs fn through the circuit breaker when one is configured.
func (a *HTTPAdapter) guard(fn func() error) error {
	if a.breaker == nil {
		return fn()
	}
	_, err := a.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (a *HTTPAdapter) do(req *http.Request) ([]byte, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	return body, nil
}
