package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("store: record not found")
	ErrDuplicateVersion     = errors.New("store: version already exists")
	ErrDuplicateBatchNumber = errors.New("store: batch number already exists")
	ErrDuplicateName        = errors.New("store: name already exists")
	ErrInUse                = errors.New("store: record is referenced")
	ErrValidation           = errors.New("store: validation failed")
)

// InUseError reports that a delete was refused because Count rows still
// reference the record.
type InUseError struct {
	Entity string
	Name   string
	Count  int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %q is referenced by %d record(s)", e.Entity, e.Name, e.Count)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// ValidationError lists the fields that failed input validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError names one failing field and the rule it broke.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Namespace(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isNotFoundErr(err error) bool {
	return errors.Is(err, ErrNotFound)
}
