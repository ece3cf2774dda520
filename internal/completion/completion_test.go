package completion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyTextShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "string", payload: `{"a":1}`, want: `{"a":1}`},
		{name: "bytes", payload: []byte(`{"a":1}`), want: `{"a":1}`},
		{name: "json string", payload: json.RawMessage(`"hello"`), want: "hello"},
		{name: "content map", payload: map[string]any{"content": "body"}, want: "body"},
		{name: "text map", payload: map[string]any{"text": "body"}, want: "body"},
		{name: "content envelope bytes", payload: []byte(`{"content":"wrapped"}`), want: "wrapped"},
		{name: "block list", payload: map[string]any{"content": []any{
			map[string]any{"type": "text", "text": "a"},
			map[string]any{"type": "tool_use", "text": "ignored"},
			map[string]any{"type": "text", "text": "b"},
		}}, want: "ab"},
		{name: "anthropic", payload: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "x"}, {Type: "text", Text: "y"},
		}}, want: "xy"},
		{name: "openai", payload: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "choice"}},
		}}, want: "choice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewReply(tc.payload).Text()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReplyTextFailsClosed(t *testing.T) {
	_, err := NewReply(42).Text()
	assert.ErrorIs(t, err, ErrUnsupportedReply)

	_, err = NewReply(map[string]any{"other": "x"}).Text()
	assert.ErrorIs(t, err, ErrUnsupportedReply)

	_, err = NewReply(map[string]any{"content": 7}).Text()
	assert.ErrorIs(t, err, ErrUnsupportedReply)

	_, err = NewReply(nil).Text()
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = TextReply("   ").Text()
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = NewReply(openai.ChatCompletionResponse{}).Text()
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`  {"a":1} `))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestClassifyAvoidsBroadNumericMatch(t *testing.T) {
	assert.Equal(t, FailureServer, Classify(assertErr("failed after 5 retries while waiting 4 seconds")))
	assert.Equal(t, FailureClient, Classify(assertErr("status code: 400 bad request")))
	assert.Equal(t, FailureServer, Classify(assertErr("status=500 upstream error")))
	assert.Equal(t, FailureRateLimit, Classify(assertErr("429 Too Many Requests")))
	assert.Equal(t, FailureTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, FailureEmpty, Classify(ErrEmptyReply))
}

type fakeMessager struct {
	got anthropic.MessageNewParams
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.got = params
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: "ok"}}}, nil
}

func TestAnthropicCompleterSplitsSystemPrompt(t *testing.T) {
	fm := &fakeMessager{}
	c := NewAnthropicCompleter(fm, Request{Temperature: 0.2, MaxTokens: 1000})
	reply, err := c.Complete(context.Background(), UserPrompt("be strict", "score these"))
	require.NoError(t, err)

	text, err := reply.Text()
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	require.Len(t, fm.got.System, 1)
	assert.Equal(t, "be strict", fm.got.System[0].Text)
	assert.Len(t, fm.got.Messages, 1)
	assert.Equal(t, int64(1000), fm.got.MaxTokens)
	assert.Equal(t, anthropic.Model(DefaultAnthropicModel), fm.got.Model)
}

type fakeChat struct {
	got openai.ChatCompletionRequest
	err error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "done"}}}}, nil
}

func TestOpenAICompleterMapsRoles(t *testing.T) {
	fc := &fakeChat{}
	c := NewOpenAICompleter(fc, Request{Model: "gpt-test"})
	reply, err := c.Complete(context.Background(), Request{Messages: []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, MaxTokens: 50})
	require.NoError(t, err)

	text, err := reply.Text()
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, "gpt-test", fc.got.Model)
	assert.Equal(t, 50, fc.got.MaxTokens)
	require.Len(t, fc.got.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, fc.got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, fc.got.Messages[2].Role)
}

func TestOpenAICompleterPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewOpenAICompleter(&fakeChat{err: boom}, Request{}).Complete(context.Background(), UserPrompt("", "x"))
	assert.ErrorIs(t, err, boom)
}

func TestWithTimeoutBoundsCalls(t *testing.T) {
	slow := CompleterFunc(func(ctx context.Context, _ Request) (Reply, error) {
		<-ctx.Done()
		return Reply{}, ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithRateLimitHonoursCancellation(t *testing.T) {
	calls := 0
	inner := CompleterFunc(func(context.Context, Request) (Reply, error) {
		calls++
		return TextReply("x"), nil
	})
	c := WithRateLimit(inner, 0.001, 1)
	_, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Complete(ctx, Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewRequiresKeyAndKnownProvider(t *testing.T) {
	_, err := New(Options{Provider: "anthropic"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = New(Options{Provider: "mystery", APIKey: "k"})
	assert.Error(t, err)

	c, err := New(Options{Provider: "openai", APIKey: "k", RPS: 2, Timeout: time.Second})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
