// Package forms binds typed schemas to editable values: struct-tag
// validation plus cross-field rules, submission gating, and the
// money/list helpers the edit dialogs share.
package forms

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/streamlift/panel_core/internal/apierr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Error keys use the wire names screens know, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Rule is a cross-field constraint that struct tags cannot express, e.g.
// "computed total must be non-negative". It returns field→message for
// every violation.
type Rule[T any] func(values T) map[string]string

// Schema validates one form type: struct tags first, then cross-field
// rules.
type Schema[T any] struct {
	rules      []Rule[T]
	fieldOrder []string
}

// NewSchema builds a schema for T with optional cross-field rules.
func NewSchema[T any](rules ...Rule[T]) *Schema[T] {
	var zero T
	return &Schema[T]{
		rules:      rules,
		fieldOrder: fieldNames(reflect.TypeOf(zero)),
	}
}

// Validate returns every violation as field→message. An empty map means
// the values may be submitted.
func (s *Schema[T]) Validate(values T) map[string]string {
	errs := make(map[string]string)

	if err := validate.Struct(values); err != nil {
		var fieldErrs validator.ValidationErrors
		if !asValidationErrors(err, &fieldErrs) {
			errs["_form"] = "invalid submission"
			return errs
		}
		for _, fe := range fieldErrs {
			field := fieldKey(fe)
			if _, seen := errs[field]; !seen {
				errs[field] = messageFor(fe)
			}
		}
	}

	for _, rule := range s.rules {
		for field, msg := range rule(values) {
			if _, seen := errs[field]; !seen {
				errs[field] = msg
			}
		}
	}
	return errs
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

// fieldKey strips the struct type prefix from the error namespace so
// nested list items come out as e.g. "items[0].quantity".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries or characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries or characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// fieldNames returns the wire names of T's fields in declaration order,
// used to surface the first invalid field deterministically.
func fieldNames(t reflect.Type) []string {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = fld.Name
		}
		names = append(names, name)
	}
	return names
}

// Form is the editable state of one screen or dialog. It is owned by the
// single component that created it and is not safe for concurrent use.
type Form[T any] struct {
	Values  T
	Errors  map[string]string
	Touched map[string]struct{}

	schema     *Schema[T]
	submitting bool
}

// New creates a form with initial values.
func New[T any](initial T, schema *Schema[T]) *Form[T] {
	return &Form[T]{
		Values:  initial,
		Errors:  make(map[string]string),
		Touched: make(map[string]struct{}),
		schema:  schema,
	}
}

// Touch marks a field as visited.
func (f *Form[T]) Touch(field string) {
	f.Touched[field] = struct{}{}
}

// Validate refreshes Errors from the current values and reports whether
// the form may be submitted.
func (f *Form[T]) Validate() bool {
	f.Errors = f.schema.Validate(f.Values)
	return len(f.Errors) == 0
}

// FirstError returns the first invalid field in declaration order, for
// surfacing to the user. Cross-field errors on unknown fields come last.
func (f *Form[T]) FirstError() (field, message string, ok bool) {
	if len(f.Errors) == 0 {
		return "", "", false
	}
	for _, name := range f.schema.fieldOrder {
		if msg, found := f.Errors[name]; found {
			return name, msg, true
		}
		prefix := name + "["
		for key, msg := range f.Errors {
			if strings.HasPrefix(key, prefix) {
				return key, msg, true
			}
		}
	}
	for key, msg := range f.Errors {
		return key, msg, true
	}
	return "", "", false
}

// Submitting reports whether a submit is in flight.
func (f *Form[T]) Submitting() bool {
	return f.submitting
}

// Submit validates and, only when valid, runs the dispatch function.
// Submitting is true exactly between submit-start and settle. An invalid
// form returns a validation error and dispatches nothing.
func (f *Form[T]) Submit(ctx context.Context, dispatch func(ctx context.Context, values T) error) error {
	if f.submitting {
		return fmt.Errorf("submit already in flight")
	}
	if !f.Validate() {
		return apierr.Validation(f.Errors)
	}

	f.submitting = true
	err := dispatch(ctx, f.Values)
	f.submitting = false
	return err
}
