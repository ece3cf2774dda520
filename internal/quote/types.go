package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParsedDocument holds key/value extractions from one uploaded file.
type ParsedDocument struct {
	Name   string         `json:"name,omitempty"`
	Fields map[string]any `json:"fields"`
}

// Quote is one bidder's submission against an RFQ. Quotes are read-only
// inputs; every consumer derives new values from them.
type Quote struct {
	ID              string           `json:"id"`
	InsurerName     string           `json:"insurer_name,omitempty"`
	BidderName      string           `json:"bidder_name,omitempty"`
	Premium         *float64         `json:"premium,omitempty"`
	CoverageAmount  *float64         `json:"coverage_amount,omitempty"`
	Deductible      *float64         `json:"deductible,omitempty"`
	PolicyTerm      string           `json:"policy_term,omitempty"`
	AdditionalTerms string           `json:"additional_terms,omitempty"`
	Attributes      map[string]any   `json:"attributes,omitempty"`
	Documents       []ParsedDocument `json:"documents,omitempty"`
}

const (
	keyID              = "id"
	keyInsurerName     = "insurer_name"
	keyBidderName      = "bidder_name"
	keyPremium         = "premium"
	keyCoverageAmount  = "coverage_amount"
	keyDeductible      = "deductible"
	keyPolicyTerm      = "policy_term"
	keyAdditionalTerms = "additional_terms"
	keyAttributes      = "attributes"
	keyDocuments       = "documents"
)

// Scalars returns the quote's scalar attributes keyed by name. Typed fields
// appear under their canonical keys when set and take precedence over free-form
// attributes with the same key.
func (q Quote) Scalars() map[string]any {
	out := make(map[string]any, len(q.Attributes)+8)
	for k, v := range q.Attributes {
		out[k] = v
	}
	setString(out, keyID, q.ID)
	setString(out, keyInsurerName, q.InsurerName)
	setString(out, keyBidderName, q.BidderName)
	setString(out, keyPolicyTerm, q.PolicyTerm)
	setString(out, keyAdditionalTerms, q.AdditionalTerms)
	setFloat(out, keyPremium, q.Premium)
	setFloat(out, keyCoverageAmount, q.CoverageAmount)
	setFloat(out, keyDeductible, q.Deductible)
	return out
}

// DisplayName is the bidder identity shown in comparison headers.
func (q Quote) DisplayName() string {
	for _, v := range []string{q.InsurerName, q.BidderName, q.ID} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return "Unnamed quote"
}

func setString(m map[string]any, key, v string) {
	if strings.TrimSpace(v) != "" {
		m[key] = v
	}
}

func setFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

// UnmarshalJSON accepts both the canonical shape and flat records where
// arbitrary top-level keys ("Sum Insured", "room_rent", ...) sit beside the
// known ones. Unknown keys land in Attributes. A non-numeric premium,
// coverage_amount or deductible is kept verbatim in Attributes so later
// resolution can still interpret it.
func (q *Quote) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := Quote{Attributes: map[string]any{}}
	for k, v := range raw {
		switch k {
		case keyID:
			out.ID = scalarString(v)
		case keyInsurerName:
			out.InsurerName = scalarString(v)
		case keyBidderName:
			out.BidderName = scalarString(v)
		case keyPolicyTerm:
			out.PolicyTerm = scalarString(v)
		case keyAdditionalTerms:
			out.AdditionalTerms = scalarString(v)
		case keyPremium:
			out.Premium = numberOrAttr(out.Attributes, k, v)
		case keyCoverageAmount:
			out.CoverageAmount = numberOrAttr(out.Attributes, k, v)
		case keyDeductible:
			out.Deductible = numberOrAttr(out.Attributes, k, v)
		case keyAttributes:
			attrs, ok := v.(map[string]any)
			if !ok && v != nil {
				return fmt.Errorf("quote attributes must be an object")
			}
			for ak, av := range attrs {
				if _, exists := out.Attributes[ak]; !exists {
					out.Attributes[ak] = plainValue(av)
				}
			}
		case keyDocuments:
			blob, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(blob, &out.Documents); err != nil {
				return fmt.Errorf("quote documents: %w", err)
			}
		default:
			out.Attributes[k] = plainValue(v)
		}
	}
	if len(out.Attributes) == 0 {
		out.Attributes = nil
	}
	*q = out
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func numberOrAttr(attrs map[string]any, key string, v any) *float64 {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	if v != nil {
		attrs[key] = plainValue(v)
	}
	return nil
}

// plainValue converts decoder json.Number values back to float64 so callers
// only ever see the usual encoding/json value types.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plainValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = plainValue(vv)
		}
		return out
	default:
		return v
	}
}

// RFQContext is the buyer's request shared by every competing quote.
type RFQContext struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title,omitempty"`
	ProductName          string     `json:"product_name,omitempty"`
	CompanyName          string     `json:"company_name,omitempty"`
	Industry             string     `json:"industry,omitempty"`
	EmployeeCount        int        `json:"employee_count,omitempty"`
	CoverageRequirements string     `json:"coverage_requirements,omitempty"`
	Budget               *float64   `json:"budget,omitempty"`
	Deadline             *time.Time `json:"deadline,omitempty"`
	Notes                string     `json:"notes,omitempty"`
}
