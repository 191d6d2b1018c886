package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	errors "github.com/frahmantamala/meeting-manager/internal"
	"github.com/go-playground/validator/v10"
)

var (
	structValidator *validator.Validate
	structOnce      sync.Once
)

func engine() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return "-"
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// Struct checks `validate` tags on a request DTO and converts failures into
// field errors keyed by json name.
func Struct(dto interface{}) *errors.AppError {
	err := engine().Struct(dto)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	var collected errors.ValidationErrors
	for _, fe := range verrs {
		field := fieldPath(fe)
		switch fe.Tag() {
		case "required":
			collected.Add(field, fmt.Sprintf("%s is required", field), errors.ErrCodeRequired)
		case "max":
			collected.Add(field, fmt.Sprintf("%s must not exceed %s characters", field, fe.Param()), errors.ErrCodeTooLong)
		case "min":
			collected.Add(field, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()), errors.ErrCodeValidationFailed)
		case "email":
			collected.Add(field, fmt.Sprintf("%s must be a valid email", field), errors.ErrCodeValidationFailed)
		case "oneof":
			collected.Add(field, fmt.Sprintf("%s must be one of: %s", field, fe.Param()), errors.ErrCodeValidationFailed)
		default:
			collected.Add(field, fmt.Sprintf("%s failed %s validation", field, fe.Tag()), errors.ErrCodeValidationFailed)
		}
	}
	return collected.Err()
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
