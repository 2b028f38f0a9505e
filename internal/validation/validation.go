// Package validation turns decoded request payloads into field-level errors.
// It knows nothing about HTTP so request types can be checked directly.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Messages overrides the default message for a "<jsonField>.<rule>" pair.
type Messages map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	v.RegisterTagNameFunc(jsonName)

	// max counts runes; maxbytes bounds the encoded length
	_ = v.RegisterValidation("maxbytes", maxBytes)

	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}

	return len(f.String()) <= limit
}

// Struct validates every field of v and returns all violations in field order.
// A nil result means v is valid.
func Struct(v any, msgs Messages) []FieldError {
	err := validate.Struct(v)

	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return []FieldError{{Rule: "invalid", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		field := fieldError.Field()
		rule := fieldError.Tag()
		param := fieldError.Param()

		msg, ok := msgs[field+"."+rule]

		if !ok {
			msg = Message(rule, param)
		}

		fields = append(fields, FieldError{
			Field:   field,
			Rule:    rule,
			Param:   param,
			Message: msg,
		})
	}

	return fields
}

// Message is the fallback text for a rule.
func Message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}

	return name
}
