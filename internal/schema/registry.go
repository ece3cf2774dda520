package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Registry is an immutable set of product schemas plus the shared alias
// table. Lookups hand out copies, so callers cannot mutate registry state.
type Registry struct {
	schemas map[string]Schema
	aliases AliasTable
}

func NewRegistry(schemas []Schema, aliases AliasTable) *Registry {
	r := &Registry{schemas: make(map[string]Schema, len(schemas)), aliases: aliases.clone()}
	for _, s := range schemas {
		r.schemas[s.Product] = s.clone()
	}
	return r
}

var defaultRegistry = NewRegistry(catalog(), defaultAliases())

// Default returns the built-in product catalogue and alias table.
func Default() *Registry { return defaultRegistry }

// Schema looks up a product by exact name. Absence is a normal outcome.
func (r *Registry) Schema(product string) (Schema, bool) {
	s, ok := r.schemas[product]
	if !ok {
		return Schema{}, false
	}
	return s.clone(), true
}

// SchemaOrBasic returns the registered schema or the basic fallback. The
// boolean is false when the fallback was used.
func (r *Registry) SchemaOrBasic(product string) (Schema, bool) {
	if s, ok := r.Schema(product); ok {
		return s, true
	}
	return Basic(), false
}

// Aliases returns the alternate names registered for a canonical field name.
func (r *Registry) Aliases(field string) []string {
	vals := r.aliases[strings.ToLower(field)]
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

func (r *Registry) Products() []string {
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// With returns a new registry with the given schemas and aliases layered over
// r. A schema replaces any existing schema of the same product; alias lists
// for a field are replaced wholesale.
func (r *Registry) With(schemas []Schema, aliases AliasTable) *Registry {
	merged := make([]Schema, 0, len(r.schemas)+len(schemas))
	for _, s := range r.schemas {
		merged = append(merged, s)
	}
	merged = append(merged, schemas...)
	combined := r.aliases.clone()
	for k, v := range aliases {
		combined[strings.ToLower(k)] = v
	}
	return NewRegistry(merged, combined)
}

type overlayFile struct {
	Products map[string][]Field `json:"products"`
	Aliases  AliasTable         `json:"aliases"`
}

// LoadFile reads a JSON overlay of the form
//
//	{"products": {"<name>": [{"name":..,"label":..,"type":..,"critical":..}]}, "aliases": {"<field>": [..]}}
//
// and layers it over base.
func LoadFile(base *Registry, path string) (*Registry, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema overlay: %w", err)
	}
	var ov overlayFile
	if err := json.Unmarshal(blob, &ov); err != nil {
		return nil, fmt.Errorf("decode schema overlay: %w", err)
	}
	schemas := make([]Schema, 0, len(ov.Products))
	for product, fields := range ov.Products {
		if strings.TrimSpace(product) == "" {
			return nil, fmt.Errorf("schema overlay: empty product name")
		}
		seen := map[string]bool{}
		for _, f := range fields {
			if strings.TrimSpace(f.Name) == "" {
				return nil, fmt.Errorf("schema overlay %q: field without name", product)
			}
			if !f.Type.Valid() {
				return nil, fmt.Errorf("schema overlay %q: field %q has unknown type %q", product, f.Name, f.Type)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("schema overlay %q: duplicate field %q", product, f.Name)
			}
			seen[f.Name] = true
		}
		schemas = append(schemas, Schema{Product: product, Fields: fields})
	}
	return base.With(schemas, ov.Aliases), nil
}
