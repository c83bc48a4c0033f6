package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/shopspring/decimal"
)

const msgRequired = "This field is required."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the validate tags of in and returns the failures keyed
// by field.
func checkStruct(in interface{}) *types.ValidationError {
	verr := &types.ValidationError{}
	err := validate.Struct(in)
	if err == nil {
		return verr
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		verr.Add(types.NonFieldErrors, err.Error())
		return verr
	}
	for _, fe := range validationErrs {
		verr.Add(fe.Field(), formatFieldError(fe))
	}
	return verr
}

// formatFieldError converts a validator failure into a user-facing message.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	default:
		return fmt.Sprintf("Field validation failed on the '%s' tag.", fe.Tag())
	}
}

// requireField records a required-field failure when absent is true.
func requireField(verr *types.ValidationError, field string, absent bool) {
	if absent {
		verr.Add(field, msgRequired)
	}
}

// checkPrice rejects negative amounts.
func checkPrice(verr *types.ValidationError, field string, price *decimal.Decimal) {
	if price != nil && price.IsNegative() {
		verr.Add(field, "Ensure this value is greater than or equal to 0.")
	}
}

// checkText records a required failure for a missing field on create and a
// blank failure for an empty value.
func checkText(verr *types.ValidationError, field string, value *string, create bool) {
	if value == nil {
		requireField(verr, field, create)
		return
	}
	if strings.TrimSpace(*value) == "" {
		verr.Add(field, "This field may not be blank.")
	}
}
