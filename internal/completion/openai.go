package completion

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT4o

type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func newOpenAIClient(apiKey string) ChatCompleter {
	return openai.NewClient(apiKey)
}

type OpenAICompleter struct {
	client   ChatCompleter
	defaults Request
}

func NewOpenAICompleter(client ChatCompleter, defaults Request) *OpenAICompleter {
	if defaults.Model == "" {
		defaults.Model = DefaultOpenAIModel
	}
	return &OpenAICompleter{client: client, defaults: defaults}
}

func (o *OpenAICompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	req = withDefaults(req, o.defaults)
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Reply{}, err
	}
	return NewReply(resp), nil
}
