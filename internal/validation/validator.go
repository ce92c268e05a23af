// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/vantage/internal/models"
)

var (
	instance     *validator.Validate
	instanceOnce sync.Once
)

// rules are the domain tags on top of the validator built-ins.
var rules = map[string]validator.Func{
	"document_id": func(fl validator.FieldLevel) bool {
		return models.IsValidDocumentID(fl.Field().String())
	},
	"user_id": func(fl validator.FieldLevel) bool {
		return models.UserID(fl.Field().String()).Validate() == nil
	},
	"property_id": func(fl validator.FieldLevel) bool {
		return models.IsValidPropertyID(fl.Field().String())
	},
	"document_tag": func(fl validator.FieldLevel) bool {
		return models.DocumentTag(fl.Field().String()).Validate() == nil
	},
	"unit_interval": func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && f >= 0 && f <= 1
	},
}

func get() *validator.Validate {
	instanceOnce.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(fieldName)
		for tag, fn := range rules {
			// Registration only fails for empty tags or nil functions.
			//nolint:errcheck // static registrations
			instance.RegisterValidation(tag, fn)
		}
	})
	return instance
}

// fieldName reports fields by their config key or JSON name so errors match
// what operators write in config.yaml and event payloads.
func fieldName(sf reflect.StructField) string {
	for _, key := range []string{"koanf", "json"} {
		name, _, _ := strings.Cut(sf.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return sf.Name
}

// FieldError is one failed rule.
type FieldError struct {
	// Field is the config key or JSON name, with an index for slice
	// elements such as tags[1].
	Field string
	// Rule is the failed validate tag, e.g. user_id or gte.
	Rule    string
	Message string
}

// Error lists every failed rule of a struct.
type Error struct {
	Failures []FieldError
}

func (e *Error) Error() string {
	if len(e.Failures) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Failures))
	for i := range e.Failures {
		messages[i] = e.Failures[i].Message
	}
	return strings.Join(messages, "; ")
}

// Fields returns the names of the failed fields in struct order.
func (e *Error) Fields() []string {
	fields := make([]string, len(e.Failures))
	for i := range e.Failures {
		fields[i] = e.Failures[i].Field
	}
	return fields
}

// Validate checks the validate tags of s. It returns nil or an *Error.
//
//	if err := validation.Validate(&event); err != nil {
//	    return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
//	}
func Validate(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// s is not a struct.
		return &Error{Failures: []FieldError{{Field: "", Rule: "struct", Message: err.Error()}}}
	}

	out := &Error{Failures: make([]FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.Failures[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: message(fe)}
	}
	return out
}

var ruleMessages = map[string]string{
	"required":      "%s is required",
	"document_id":   "%s must be a valid document id",
	"user_id":       "%s must be a valid user id",
	"property_id":   "%s must be a valid property id",
	"document_tag":  "%s must be a valid document tag",
	"unit_interval": "%s must be within [0, 1]",
	"uuid":          "%s must be a valid UUID",
}

var ruleMessagesWithParam = map[string]string{
	"oneof":       "%s must be one of: %s",
	"required_if": "%s is required when %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"gt":          "%s must be greater than %s",
	"len":         "%s must have length %s",
}

func message(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := ruleMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := ruleMessagesWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
