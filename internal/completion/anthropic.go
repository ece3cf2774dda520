package completion

import (
	"context"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when neither the request nor the configuration
// names a model.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_20250514)

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

type AnthropicCompleter struct {
	messages AnthropicMessager
	defaults Request
}

func NewAnthropicCompleter(messages AnthropicMessager, defaults Request) *AnthropicCompleter {
	if defaults.Model == "" {
		defaults.Model = DefaultAnthropicModel
	}
	return &AnthropicCompleter{messages: messages, defaults: defaults}
}

// Complete sends system messages as the system prompt and the rest as the
// conversation. The raw *anthropic.Message is returned as the reply.
func (a *AnthropicCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	req = withDefaults(req, a.defaults)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	resp, err := a.messages.New(ctx, params)
	if err != nil {
		return Reply{}, err
	}
	return NewReply(resp), nil
}
