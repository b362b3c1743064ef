package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Decimals are compared as numbers so gt/gte/lte tags apply to them.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d := v.Interface().(decimal.Decimal)
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		nd := v.Interface().(decimal.NullDecimal)
		if !nd.Valid {
			return nil
		}
		f, _ := nd.Decimal.Float64()
		return f
	}, decimal.NullDecimal{})

	validate.RegisterValidation("trimmed_required", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Describe renders the first failure for an error message.
func Describe(errs []*ErrorResponse) string {
	if len(errs) == 0 {
		return ""
	}
	return fmt.Sprintf("Field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
}
