package analysis

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joelkehle/quote-compare/internal/completion"
)

type options struct {
	logger   *zap.Logger
	sampling completion.Request
	now      func() time.Time
	newID    func() string
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSampling sets the model, temperature and max tokens sent with every
// analyzer and synthesis request.
func WithSampling(model string, temperature float64, maxTokens int) Option {
	return func(o *options) {
		o.sampling = completion.Request{Model: model, Temperature: temperature, MaxTokens: maxTokens}
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func withIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) request(prompt string) completion.Request {
	req := completion.UserPrompt(systemPrompt, prompt)
	req.Model = o.sampling.Model
	req.Temperature = o.sampling.Temperature
	req.MaxTokens = o.sampling.MaxTokens
	return req
}
