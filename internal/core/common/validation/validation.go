package validation

import (
	"fmt"
	"time"
	"unicode/utf8"

	errors "github.com/frahmantamala/meeting-manager/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return fv.fail(message, errors.ErrCodeRequired)
			}
		case int64:
			if v == 0 {
				return fv.fail(message, errors.ErrCodeRequired)
			}
		case *int64:
			if v == nil || *v == 0 {
				return fv.fail(message, errors.ErrCodeRequired)
			}
		case *string:
			if v == nil || *v == "" {
				return fv.fail(message, errors.ErrCodeRequired)
			}
		case time.Time:
			if v.IsZero() {
				return fv.fail(message, errors.ErrCodeRequired)
			}
		case nil:
			return fv.fail(message, errors.ErrCodeRequired)
		}
		return nil
	})
	return fv
}

// MaxLength counts runes, so Vietnamese text with diacritics is measured the
// way users type it.
func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return nil
		}
		if utf8.RuneCountInString(s) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeTooLong)
		}
		return nil
	})
	return fv
}

// NotBefore rejects dates earlier than min.
func (fv *FieldValidator) NotBefore(min time.Time, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(time.Time); ok && !v.IsZero() && v.Before(min) {
			return fv.fail(message, errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

// OneOf rejects values outside allowed. Empty strings are left to Required.
func (fv *FieldValidator) OneOf(allowed []string, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fv.fail(message, code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and reports the first failure of each field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var collected errors.ValidationErrors

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if fe := err.FieldErrors(); len(fe) > 0 {
					collected.Errors = append(collected.Errors, fe...)
				} else {
					collected.Add(field.FieldName, err.Message, err.Code)
				}
				break
			}
		}
	}

	return collected.Err()
}
