package normalize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/joelkehle/quote-compare/internal/quote"
	"github.com/joelkehle/quote-compare/internal/schema"
)

// Source records which resolution strategy produced a value.
type Source string

const (
	SourceExactKey  Source = "exact_key"
	SourceVariant   Source = "name_variant"
	SourceAlias     Source = "alias"
	SourceNarrative Source = "narrative"
	SourceDocument  Source = "document"
	SourceNone      Source = "unresolved"
)

// AliasSource supplies alternate names for a canonical field.
// *schema.Registry satisfies it.
type AliasSource interface {
	Aliases(field string) []string
}

type Resolver struct {
	aliases AliasSource
	text    TextExtractor
}

type ResolverOption func(*Resolver)

// WithTextExtractor swaps the narrative scanning strategy.
func WithTextExtractor(x TextExtractor) ResolverOption {
	return func(r *Resolver) { r.text = x }
}

func NewResolver(aliases AliasSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{aliases: aliases, text: PatternExtractor{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the field's value or nil when no strategy finds one.
func (r *Resolver) Resolve(q quote.Quote, f schema.Field) any {
	v, _ := r.ResolveWithSource(q, f)
	return v
}

// ResolveWithSource runs the cascade in fixed order and stops at the first
// strategy that yields a value: exact key, name variants, aliases, narrative
// scan, parsed documents.
func (r *Resolver) ResolveWithSource(q quote.Quote, f schema.Field) (any, Source) {
	attrs := q.Scalars()
	aliases := r.aliasesFor(f.Name)

	if v, ok := attrs[f.Name]; ok && present(v) {
		return v, SourceExactKey
	}
	for _, key := range nameVariants(f.Name) {
		if v, ok := attrs[key]; ok && present(v) {
			return v, SourceVariant
		}
	}
	for _, alias := range aliases {
		if v, ok := lookupFold(attrs, alias); ok {
			return v, SourceAlias
		}
	}
	if r.text != nil {
		needles := append([]string{f.Label}, aliases...)
		if v, ok := r.text.Extract(q.AdditionalTerms, f, needles); ok && present(v) {
			return v, SourceNarrative
		}
	}
	for _, doc := range q.Documents {
		if v, ok := doc.Fields[f.Name]; ok && present(v) {
			return v, SourceDocument
		}
		for _, alias := range aliases {
			if v, ok := lookupFold(doc.Fields, alias); ok {
				return v, SourceDocument
			}
		}
	}
	return nil, SourceNone
}

func (r *Resolver) aliasesFor(field string) []string {
	if r.aliases == nil {
		return nil
	}
	return r.aliases.Aliases(field)
}

// nameVariants yields the underscore-stripped, space-substituted and
// title-cased spellings of a snake_case field name.
func nameVariants(name string) []string {
	spaced := strings.ReplaceAll(name, "_", " ")
	candidates := []string{
		strings.ReplaceAll(name, "_", ""),
		spaced,
		titleCase(spaced),
	}
	out := make([]string, 0, len(candidates))
	seen := map[string]bool{name: true}
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// lookupFold matches name against map keys ignoring case and treating
// underscores, hyphens and spaces as equivalent.
func lookupFold(m map[string]any, name string) (any, bool) {
	want := foldKey(name)
	if want == "" {
		return nil, false
	}
	var keys []string
	for k, v := range m {
		if foldKey(k) == want && present(v) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, false
	}
	// several spellings of one alias can coexist; pick one deterministically
	sort.Strings(keys)
	return m[keys[0]], true
}

func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
