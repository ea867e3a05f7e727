package domain

import (
	"sort"
	"strconv"
)

const (
	MaxAPIKeyLen = 80
	MaxSymbolLen = 80
	MaxTitleLen  = 80
	MaxNotesLen  = 255
)

const (
	FieldAPIKey     = "apikey"
	FieldSymbol     = "symbol"
	FieldTitle      = "title"
	FieldCurrencyID = "currency_id"
	FieldNotes      = "notes"
)

type Kind string

const (
	KindAPIKey      Kind = "apikey"
	KindTenant      Kind = "tenant"
	KindCurrency    Kind = "currency"
	KindAccount     Kind = "account"
	KindTransaction Kind = "transaction"
)

// FieldSpec declares one field of a resource kind. MaxLen bounds string
// fields; Reference marks fields that name another row by integer id.
type FieldSpec struct {
	Name      string
	MaxLen    int
	Reference bool
	Optional  bool
}

// ResourceSpec is the field contract of a resource kind. Field order is the
// order values are checked in.
type ResourceSpec struct {
	Kind   Kind
	Fields []FieldSpec
}

func (s ResourceSpec) Required() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.Optional {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s ResourceSpec) Allows(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

var (
	// APIKeySpec accepts no fields at all.
	APIKeySpec = ResourceSpec{Kind: KindAPIKey}

	// TenantSpec is the contract of list requests: the apikey and nothing else.
	TenantSpec = ResourceSpec{
		Kind: KindTenant,
		Fields: []FieldSpec{
			{Name: FieldAPIKey, MaxLen: MaxAPIKeyLen},
		},
	}

	CurrencySpec = ResourceSpec{
		Kind: KindCurrency,
		Fields: []FieldSpec{
			{Name: FieldAPIKey, MaxLen: MaxAPIKeyLen},
			{Name: FieldSymbol, MaxLen: MaxSymbolLen},
			{Name: FieldTitle, MaxLen: MaxTitleLen},
		},
	}

	AccountSpec = ResourceSpec{
		Kind: KindAccount,
		Fields: []FieldSpec{
			{Name: FieldAPIKey, MaxLen: MaxAPIKeyLen},
			{Name: FieldCurrencyID, Reference: true},
			{Name: FieldTitle, MaxLen: MaxTitleLen},
		},
	}

	TransactionSpec = ResourceSpec{
		Kind: KindTransaction,
		Fields: []FieldSpec{
			{Name: FieldAPIKey, MaxLen: MaxAPIKeyLen},
			{Name: FieldNotes, MaxLen: MaxNotesLen},
		},
	}
)

// FieldSet is an immutable view of submitted key/value pairs.
type FieldSet struct {
	values map[string][]string
}

// NewFieldSet copies values, so later changes to the source do not leak in.
func NewFieldSet(values map[string][]string) FieldSet {
	copied := make(map[string][]string, len(values))
	for k, v := range values {
		copied[k] = append([]string(nil), v...)
	}
	return FieldSet{values: copied}
}

func (f FieldSet) Len() int {
	return len(f.values)
}

func (f FieldSet) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Value returns the first value submitted for name, or "" if absent.
func (f FieldSet) Value(name string) string {
	v := f.values[name]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Int parses the named field as a base-10 int64.
func (f FieldSet) Int(name string) (int64, error) {
	return strconv.ParseInt(f.Value(name), 10, 64)
}

// Names returns the submitted field names in sorted order.
func (f FieldSet) Names() []string {
	names := make([]string, 0, len(f.values))
	for k := range f.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Repeated returns the names submitted more than once, sorted.
func (f FieldSet) Repeated() []string {
	var names []string
	for k, v := range f.values {
		if len(v) > 1 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
