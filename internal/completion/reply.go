package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyReply       = errors.New("completion reply is empty")
	ErrUnsupportedReply = errors.New("completion reply has an unsupported shape")
)

// Reply wraps whatever a backend returned. Text reduces it to the generated
// text; shapes it does not recognise fail closed.
type Reply struct {
	payload any
}

func NewReply(payload any) Reply { return Reply{payload: payload} }

// TextReply is the reply of backends that already produce a plain string.
func TextReply(s string) Reply { return Reply{payload: s} }

func (r Reply) Payload() any { return r.payload }

// Text recognises plain strings, raw JSON bytes, maps carrying a "content" or
// "text" entry, Anthropic messages and OpenAI chat completions.
func (r Reply) Text() (string, error) {
	s, err := textOf(r.payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyReply
	}
	return s, nil
}

func textOf(v any) (string, error) {
	switch p := v.(type) {
	case nil:
		return "", ErrEmptyReply
	case string:
		return p, nil
	case []byte:
		return textOfJSON(p)
	case json.RawMessage:
		return textOfJSON(p)
	case map[string]any:
		return textOfMap(p)
	case *anthropic.Message:
		if p == nil {
			return "", ErrEmptyReply
		}
		return anthropicText(*p), nil
	case anthropic.Message:
		return anthropicText(p), nil
	case openai.ChatCompletionResponse:
		return openaiText(p)
	case *openai.ChatCompletionResponse:
		if p == nil {
			return "", ErrEmptyReply
		}
		return openaiText(*p)
	case []any:
		return textOfBlocks(p)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedReply, v)
	}
}

// textOfJSON treats bytes that decode to a JSON string or envelope as that
// value; anything else is returned verbatim for the caller to parse.
func textOfJSON(b []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(b, &decoded); err == nil {
		switch d := decoded.(type) {
		case string:
			return d, nil
		case map[string]any:
			if _, ok := d["content"]; ok {
				return textOfMap(d)
			}
			if _, ok := d["text"]; ok {
				return textOfMap(d)
			}
		}
	}
	return string(b), nil
}

func textOfMap(m map[string]any) (string, error) {
	for _, key := range []string{"content", "text"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch c := v.(type) {
		case string:
			return c, nil
		case []any:
			return textOfBlocks(c)
		default:
			return "", fmt.Errorf("%w: %q entry of type %T", ErrUnsupportedReply, key, v)
		}
	}
	return "", fmt.Errorf("%w: map without content or text", ErrUnsupportedReply)
}

// textOfBlocks concatenates {"type":"text","text":...} blocks.
func textOfBlocks(blocks []any) (string, error) {
	var sb strings.Builder
	for _, b := range blocks {
		switch blk := b.(type) {
		case string:
			sb.WriteString(blk)
		case map[string]any:
			if t, _ := blk["type"].(string); t != "" && t != "text" {
				continue
			}
			if s, ok := blk["text"].(string); ok {
				sb.WriteString(s)
			}
		default:
			return "", fmt.Errorf("%w: content block of type %T", ErrUnsupportedReply, b)
		}
	}
	return sb.String(), nil
}

func anthropicText(m anthropic.Message) string {
	var sb strings.Builder
	for _, b := range m.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

func openaiText(r openai.ChatCompletionResponse) (string, error) {
	if len(r.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return r.Choices[0].Message.Content, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or without
// a json language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}
