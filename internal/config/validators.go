package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// registerExclusive adds a custom validator ensuring two fields are mutually exclusive,
// and reports fields by their flag name.
func registerExclusive(validator *validator.Validator) error {
	if err := validator.RegisterValidationAndTranslation(
		"exclusive",
		validateExclusive,
		"{0} is mutually exclusive with {1}",
	); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	validator.Validator().RegisterTagNameFunc(flagName)

	return nil
}

// flagName names a field after its mapstructure tag, which matches the flag.
func flagName(fld reflect.StructField) string {
	const splitSize = 2

	name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", splitSize)[0]
	if name == "-" || name == "" {
		return fld.Name
	}

	return name
}

// validateExclusive checks if two fields are mutually exclusive.
// Returns false if both fields hold non-zero values.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	otherField := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !otherField.IsValid() || field.Kind() != otherField.Kind() {
		return true
	}

	return field.IsZero() || otherField.IsZero()
}
