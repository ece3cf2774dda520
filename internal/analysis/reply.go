package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/joelkehle/quote-compare/internal/completion"
)

var assessmentReplySchema = mustSchema(`{
  "type": "object",
  "required": ["quotes"],
  "properties": {
    "quotes": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`)

var synthesisReplySchema = mustSchema(`{
  "type": "object",
  "required": ["ranked_quotes"],
  "properties": {
    "ranked_quotes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["quote_id", "overall_score"],
        "properties": {
          "quote_id": {"type": "string"},
          "overall_score": {"type": "number"},
          "rank": {"type": "integer"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "executive_summary": {"type": "string"},
    "key_decision_factors": {"type": "array", "items": {"type": "string"}},
    "important_notes": {"type": "array", "items": {"type": "string"}}
  }
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile reply schema: %v", err))
	}
	return s
}

// decodeReply reduces a completion reply to text, strips code fences,
// validates the JSON against s and decodes it into out with numbers kept as
// json.Number.
func decodeReply(stage string, reply completion.Reply, s *gojsonschema.Schema, out any) error {
	text, err := reply.Text()
	if err != nil {
		return &ReplyError{Dimension: stage, Reason: "unreadable reply", Err: err}
	}
	clean := completion.StripCodeFences(text)
	res, err := s.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil {
		return &ReplyError{Dimension: stage, Reason: "reply is not valid JSON", Err: err}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return &ReplyError{Dimension: stage, Reason: "unexpected reply shape: " + strings.Join(msgs, "; ")}
	}
	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &ReplyError{Dimension: stage, Reason: "decode reply", Err: err}
	}
	return nil
}

// failureClass buckets err for the completion failure counter.
func failureClass(err error) string {
	var re *ReplyError
	if errors.As(err, &re) {
		if re.Err != nil && (errors.Is(re.Err, completion.ErrEmptyReply) || errors.Is(re.Err, completion.ErrUnsupportedReply)) {
			return string(completion.Classify(re.Err))
		}
		return "parse"
	}
	return string(completion.Classify(err))
}

func firstPresent(m map[string]any, keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringOf(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
