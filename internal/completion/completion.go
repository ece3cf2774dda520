package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is an ordered list of role-tagged messages plus sampling settings.
// Zero Model/Temperature/MaxTokens defer to the backend's configured default.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// UserPrompt builds the common single-instruction request.
func UserPrompt(system, prompt string) Request {
	var msgs []Message
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: prompt})
	return Request{Messages: msgs}
}

// Completer sends one request to a generative text backend.
type Completer interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (Reply, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (Reply, error) { return f(ctx, req) }

type timeoutCompleter struct {
	next    Completer
	timeout time.Duration
}

// WithTimeout bounds every call to next. A non-positive timeout returns next
// unchanged.
func WithTimeout(next Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return next
	}
	return &timeoutCompleter{next: next, timeout: timeout}
}

func (t *timeoutCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, req)
}

type rateLimitedCompleter struct {
	next    Completer
	limiter *rate.Limiter
}

// WithRateLimit throttles calls to rps requests per second. rps <= 0 disables
// limiting.
func WithRateLimit(next Completer, rps float64, burst int) Completer {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedCompleter{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimitedCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Reply{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Complete(ctx, req)
}

// Options selects and configures a backend.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RPS         float64
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var ErrMissingAPIKey = errors.New("completion API key not configured")

// New builds the configured backend wrapped with rate limiting and the
// transport timeout.
func New(opts Options) (Completer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	defaults := Request{Model: opts.Model, Temperature: opts.Temperature, MaxTokens: opts.MaxTokens}
	var c Completer
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderAnthropic:
		c = NewAnthropicCompleter(newAnthropicClient(opts.APIKey), defaults)
	case ProviderOpenAI:
		c = NewOpenAICompleter(newOpenAIClient(opts.APIKey), defaults)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", opts.Provider)
	}
	return WithRateLimit(WithTimeout(c, opts.Timeout), opts.RPS, 1), nil
}

func withDefaults(req, defaults Request) Request {
	if req.Model == "" {
		req.Model = defaults.Model
	}
	if req.Temperature == 0 {
		req.Temperature = defaults.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaults.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	return req
}
