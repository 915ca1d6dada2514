// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/threadrec/internal/recommend"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error is returned by ValidateStruct when at least one rule fails.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i := range e.Fields {
		msgs[i] = e.Fields[i].Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator. Field names in errors use the
// json tag so messages match the request body the client sent.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "thread_id", validThreadID)
		mustRegister(v, "algorithm", validAlgorithm)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// validThreadID accepts "<forum>:<id>" with both parts non-empty and no
// whitespace.
func validThreadID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	forum, id, ok := strings.Cut(s, ":")
	if !ok || forum == "" || id == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}

// validAlgorithm accepts the empty string and any name ParseAlgorithm knows.
func validAlgorithm(fl validator.FieldLevel) bool {
	_, err := recommend.ParseAlgorithm(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s and returns *Error on failure.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return out
}

var simpleMessages = map[string]string{
	"required":         "%s is required",
	"required_without": "%s is required",
	"thread_id":        "%s must look like forum:id",
	"algorithm":        "%s must be one of: content, behavior, mixed, popular",
	"url":              "%s must be a valid URL",
	"hostname_port":    "%s must be host:port",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",

	"excluded_with": "%s cannot be combined with %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Namespace(), fe.Tag(), fe.Param()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	if tmpl, ok := simpleMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		if tag == "excluded_with" {
			param = snakeCase(param)
		}
		return fmt.Sprintf(tmpl, field, param)
	}

	isCollection := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice
	switch tag {
	case "min":
		if isCollection {
			return fmt.Sprintf("%s must have at least %s items", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isCollection {
			return fmt.Sprintf("%s must have at most %s items", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// snakeCase turns a Go field name such as ThreadIDs into thread_ids so
// cross-field messages name the json field.
func snakeCase(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		if unicode.IsUpper(r) {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = true
	}
	return b.String()
}
