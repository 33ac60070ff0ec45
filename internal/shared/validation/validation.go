package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

type FieldErrors map[string]string

var (
	once sync.Once
	v    *validator.Validate
)

// Validator returns the shared instance. Field names in errors come from
// the json tag, falling back to the form tag.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(tagName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, sellerapi.Amount{})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return sellerapi.ValidCurrency(fl.Field().String())
		})
	})
	return v
}

// Struct validates s and returns nil or a populated FieldErrors.
func Struct(s any) FieldErrors {
	if err := Validator().Struct(s); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError turns a validation error into field -> message.
func FromError(err error) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	out["_"] = "The form data is invalid."
	return out
}

func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		tag := f.Tag.Get(key)
		if i := strings.Index(tag, ","); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return strings.ToLower(f.Name)
}

func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case sellerapi.Amount:
		f, _ := d.Float64()
		return f
	}
	return nil
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + param + " characters."
	case "max":
		return "Must be at most " + param + " characters."
	case "gte":
		return "Must be " + param + " or greater."
	case "eqfield":
		return "Does not match."
	case "currency":
		return "Unsupported currency."
	default:
		return "Invalid value."
	}
}
