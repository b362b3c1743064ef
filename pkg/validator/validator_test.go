package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string              `validate:"trimmed_required"`
	Qty   decimal.Decimal     `validate:"gt=0"`
	Price decimal.NullDecimal `validate:"omitempty,gte=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		wantTag string
	}{
		{"valid", sample{Name: "Nuggets", Qty: decimal.RequireFromString("0.5")}, ""},
		{"valid with price", sample{Name: "Nuggets", Qty: decimal.NewFromInt(1), Price: decimal.NewNullDecimal(decimal.Zero)}, ""},
		{"blank name", sample{Name: "   ", Qty: decimal.NewFromInt(1)}, "trimmed_required"},
		{"zero qty", sample{Name: "Nuggets", Qty: decimal.Zero}, "gt"},
		{"negative price", sample{Name: "Nuggets", Qty: decimal.NewFromInt(1), Price: decimal.NewNullDecimal(decimal.NewFromInt(-1))}, "gte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(&tt.input)
			if tt.wantTag == "" {
				assert.Empty(t, errs)
				return
			}
			if assert.Len(t, errs, 1) {
				assert.Equal(t, tt.wantTag, errs[0].Tag)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	errs := ValidateStruct(&sample{Qty: decimal.NewFromInt(1)})
	assert.Equal(t, "Field 'sample.Name' failed on tag 'trimmed_required'", Describe(errs))
}
