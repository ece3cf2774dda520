package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogueIsWellFormed(t *testing.T) {
	reg := Default()
	products := reg.Products()
	require.NotEmpty(t, products)

	for _, name := range products {
		s, ok := reg.Schema(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Product)

		seen := map[string]bool{}
		for _, f := range s.Fields {
			assert.True(t, f.Type.Valid(), "%s.%s has invalid type %q", name, f.Name, f.Type)
			assert.NotEmpty(t, f.Label, "%s.%s", name, f.Name)
			assert.False(t, seen[f.Name], "%s has duplicate field %s", name, f.Name)
			seen[f.Name] = true
		}
		for _, required := range []string{FieldPremium, FieldCoverageAmount, FieldDeductible} {
			assert.True(t, seen[required], "%s missing %s", name, required)
		}
	}
}

func TestSchemaLookupIsExactAndAbsenceIsNotAnError(t *testing.T) {
	reg := Default()

	_, ok := reg.Schema("Group Health Insurance")
	assert.True(t, ok)

	_, ok = reg.Schema("group health insurance")
	assert.False(t, ok, "lookup must be exact-string keyed")

	s, registered := reg.SchemaOrBasic("Space Tourism Cover")
	assert.False(t, registered)
	assert.Equal(t, []string{FieldPremium, FieldCoverageAmount, FieldDeductible}, s.FieldNames())
}

func TestRegistryHandsOutCopies(t *testing.T) {
	reg := Default()
	s, _ := reg.Schema("Group Health Insurance")
	s.Fields[0].Label = "mutated"

	again, _ := reg.Schema("Group Health Insurance")
	assert.Equal(t, "Annual Premium", again.Fields[0].Label)

	aliases := reg.Aliases(FieldPremium)
	require.NotEmpty(t, aliases)
	aliases[0] = "mutated"
	assert.NotEqual(t, "mutated", reg.Aliases(FieldPremium)[0])
}

func TestAliasesAreCaseInsensitiveOnFieldName(t *testing.T) {
	reg := NewRegistry(nil, AliasTable{"Deductible": {"excess"}})
	assert.Equal(t, []string{"excess"}, reg.Aliases("deductible"))
	assert.Equal(t, []string{"excess"}, reg.Aliases("DEDUCTIBLE"))
	assert.Empty(t, reg.Aliases("premium"))
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.json")
	overlay := `{
	  "products": {
	    "Drone Liability": [
	      {"name":"premium","label":"Premium","type":"currency","critical":true},
	      {"name":"coverage_amount","label":"Limit","type":"currency","critical":true},
	      {"name":"deductible","label":"Deductible","type":"currency"},
	      {"name":"max_payload_kg","label":"Max Payload (kg)","type":"number"}
	    ]
	  },
	  "aliases": {"max_payload_kg": ["payload limit"]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	base := Default()
	reg, err := LoadFile(base, path)
	require.NoError(t, err)

	s, ok := reg.Schema("Drone Liability")
	require.True(t, ok)
	assert.Len(t, s.Fields, 4)
	assert.Equal(t, []string{"payload limit"}, reg.Aliases("max_payload_kg"))

	_, ok = reg.Schema("Group Health Insurance")
	assert.True(t, ok, "defaults survive the overlay")
	_, ok = base.Schema("Drone Liability")
	assert.False(t, ok, "base registry is untouched")
}

func TestLoadFileRejectsUnknownTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":{"X":[{"name":"a","label":"A","type":"money"}]}}`), 0o644))

	_, err := LoadFile(Default(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}
