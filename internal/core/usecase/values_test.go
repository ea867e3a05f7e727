package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

func TestValueValidator(t *testing.T) {
	tests := []struct {
		name   string
		spec   domain.ResourceSpec
		fields domain.FieldSet
		field  string
		kind   domain.ValueErrorKind
	}{
		{
			name:   "title at limit",
			spec:   domain.CurrencySpec,
			fields: form("apikey", "k", "symbol", "XAU", "title", strings.Repeat("t", domain.MaxTitleLen)),
		},
		{
			name:   "title over limit",
			spec:   domain.CurrencySpec,
			fields: form("apikey", "k", "symbol", "XAU", "title", strings.Repeat("t", domain.MaxTitleLen+1)),
			field:  domain.FieldTitle,
			kind:   domain.TooLong,
		},
		{
			name:   "limit counts characters not bytes",
			spec:   domain.CurrencySpec,
			fields: form("apikey", "k", "symbol", strings.Repeat("€", domain.MaxSymbolLen), "title", "Euro"),
		},
		{
			name:   "apikey over limit",
			spec:   domain.TenantSpec,
			fields: form("apikey", strings.Repeat("k", domain.MaxAPIKeyLen+1)),
			field:  domain.FieldAPIKey,
			kind:   domain.TooLong,
		},
		{
			name:   "notes allow more than titles",
			spec:   domain.TransactionSpec,
			fields: form("apikey", "k", "notes", strings.Repeat("n", domain.MaxNotesLen)),
		},
		{
			name:   "notes over limit",
			spec:   domain.TransactionSpec,
			fields: form("apikey", "k", "notes", strings.Repeat("n", domain.MaxNotesLen+1)),
			field:  domain.FieldNotes,
			kind:   domain.TooLong,
		},
		{
			name:   "blank required value",
			spec:   domain.CurrencySpec,
			fields: form("apikey", "k", "symbol", "", "title", "Gold"),
			field:  domain.FieldSymbol,
			kind:   domain.Blank,
		},
		{
			name:   "reference not numeric",
			spec:   domain.AccountSpec,
			fields: form("apikey", "k", "currency_id", "gold", "title", "Cash"),
			field:  domain.FieldCurrencyID,
			kind:   domain.NotNumeric,
		},
		{
			name:   "empty reference",
			spec:   domain.AccountSpec,
			fields: form("apikey", "k", "currency_id", "", "title", "Cash"),
			field:  domain.FieldCurrencyID,
			kind:   domain.NotNumeric,
		},
		{
			name:   "reference overflows int64",
			spec:   domain.AccountSpec,
			fields: form("apikey", "k", "currency_id", "99999999999999999999", "title", "Cash"),
			field:  domain.FieldCurrencyID,
			kind:   domain.NotNumeric,
		},
		{
			name:   "numeric reference",
			spec:   domain.AccountSpec,
			fields: form("apikey", "k", "currency_id", "42", "title", "Cash"),
		},
		{
			name:   "first failing field in declared order wins",
			spec:   domain.AccountSpec,
			fields: form("apikey", "k", "currency_id", "x", "title", strings.Repeat("t", 200)),
			field:  domain.FieldCurrencyID,
			kind:   domain.NotNumeric,
		},
	}

	v := NewValueValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.spec, tt.fields)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *domain.ValueError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.kind, ve.Kind)
		})
	}
}

func TestValueErrorStructural(t *testing.T) {
	assert.True(t, (&domain.ValueError{Kind: domain.NotNumeric}).Structural())
	assert.False(t, (&domain.ValueError{Kind: domain.TooLong}).Structural())
	assert.False(t, (&domain.ValueError{Kind: domain.Blank}).Structural())
}
