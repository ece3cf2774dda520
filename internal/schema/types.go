package schema

import "strings"

type FieldType string

const (
	TypeCurrency   FieldType = "currency"
	TypePercentage FieldType = "percentage"
	TypeText       FieldType = "text"
	TypeNumber     FieldType = "number"
	TypeDate       FieldType = "date"
	TypeBoolean    FieldType = "boolean"
	TypeList       FieldType = "list"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeCurrency, TypePercentage, TypeText, TypeNumber, TypeDate, TypeBoolean, TypeList:
		return true
	}
	return false
}

// Field describes one comparable attribute of a product. Critical only affects
// insight generation; it never excludes a field from the comparison.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Critical bool      `json:"critical"`
}

// Schema is the ordered field list for one product.
type Schema struct {
	Product string  `json:"product"`
	Fields  []Field `json:"fields"`
}

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) FieldNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

func (s Schema) clone() Schema {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	return Schema{Product: s.Product, Fields: fields}
}

// AliasTable maps a canonical field name to alternate names and phrases used
// by differently-authored quotes. Matching against quote data is
// case-insensitive.
type AliasTable map[string][]string

func (a AliasTable) clone() AliasTable {
	out := make(AliasTable, len(a))
	for k, v := range a {
		vals := make([]string, len(v))
		copy(vals, v)
		out[strings.ToLower(k)] = vals
	}
	return out
}

const (
	FieldPremium        = "premium"
	FieldCoverageAmount = "coverage_amount"
	FieldDeductible     = "deductible"
	FieldSumInsured     = "sum_insured"
	FieldPolicyTerm     = "policy_term"
)

// BasicProduct names the reduced schema used when a product is not registered.
const BasicProduct = "basic"

// Basic returns the minimal generic schema: premium, coverage amount and
// deductible.
func Basic() Schema {
	return Schema{
		Product: BasicProduct,
		Fields: []Field{
			{Name: FieldPremium, Label: "Premium", Type: TypeCurrency, Critical: true},
			{Name: FieldCoverageAmount, Label: "Coverage Amount", Type: TypeCurrency, Critical: true},
			{Name: FieldDeductible, Label: "Deductible", Type: TypeCurrency},
		},
	}
}
