package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var validate = newValidate()

var selectorRe = regexp.MustCompile(`^[^\x00-\x1f]{1,128}$`)

func newValidate() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report JSON names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl playground.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("selector", func(fl playground.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || selectorRe.MatchString(s)
	})

	return v
}

// ValidateStruct runs the `validate` struct tags of v.
// It returns ValidationErrors on rule failures and nil on success.
// Tags in use besides the go-playground built-ins:
//
//	notblank  string is not empty after trimming spaces
//	selector  optional device selector: up to 128 printable characters
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var pe playground.ValidationErrors
	if !errors.As(err, &pe) {
		// InvalidValidationError: v is not a struct.
		return err
	}

	out := make(ValidationErrors, 0, len(pe))
	for _, fe := range pe {
		out = append(out, toValidationError(fe))
	}
	return out
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var pe playground.ValidationErrors
	if !errors.As(err, &pe) {
		return err
	}
	out := make(ValidationErrors, 0, len(pe))
	for _, fe := range pe {
		ve := toValidationError(fe)
		ve.Field = field
		ve.Message = field + strings.TrimPrefix(ve.Message, fe.Field())
		ve.TranslationValues["field"] = field
		out = append(out, ve)
	}
	return out
}

func toValidationError(fe playground.FieldError) ValidationError {
	field := fieldPath(fe)
	tag := fe.Tag()
	param := fe.Param()
	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map || fe.Kind() == reflect.Array

	ve := ValidationError{
		Field:             field,
		TranslationKey:    "validation." + tag,
		TranslationValues: map[string]any{"field": field},
	}

	switch tag {
	case "required", "required_if", "required_without":
		ve.TranslationKey = "validation.required"
		ve.Message = fmt.Sprintf("%s is required", field)
	case "notblank":
		ve.TranslationKey = "validation.required"
		ve.Message = fmt.Sprintf("%s must not be blank", field)
	case "min", "gte":
		ve.TranslationValues["min"] = param
		switch {
		case isString:
			ve.TranslationKey = "validation.min_length"
			ve.Message = fmt.Sprintf("%s must be at least %s characters long", field, param)
		case isList:
			ve.TranslationKey = "validation.min_items"
			ve.Message = fmt.Sprintf("%s must contain at least %s items", field, param)
		default:
			ve.TranslationKey = "validation.min"
			ve.Message = fmt.Sprintf("%s must be at least %s", field, param)
		}
	case "max", "lte":
		ve.TranslationValues["max"] = param
		switch {
		case isString:
			ve.TranslationKey = "validation.max_length"
			ve.Message = fmt.Sprintf("%s must be at most %s characters long", field, param)
		case isList:
			ve.TranslationKey = "validation.max_items"
			ve.Message = fmt.Sprintf("%s must not contain more than %s items", field, param)
		default:
			ve.TranslationKey = "validation.max"
			ve.Message = fmt.Sprintf("%s must be at most %s", field, param)
		}
	case "gt":
		ve.TranslationValues["min"] = param
		ve.Message = fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		ve.TranslationValues["max"] = param
		ve.Message = fmt.Sprintf("%s must be less than %s", field, param)
	case "len":
		ve.TranslationValues["length"] = param
		ve.Message = fmt.Sprintf("%s must be exactly %s characters long", field, param)
	case "oneof":
		ve.TranslationValues["values"] = param
		ve.Message = fmt.Sprintf("%s must be one of [%s]", field, param)
	case "url", "http_url":
		ve.TranslationKey = "validation.url"
		ve.Message = fmt.Sprintf("%s must be a valid URL", field)
	case "numeric":
		ve.Message = fmt.Sprintf("%s must be a valid number", field)
	case "selector":
		ve.Message = fmt.Sprintf("%s must be a device alias, name or id", field)
	default:
		ve.Message = fmt.Sprintf("%s failed validation for '%s'", field, tag)
	}
	return ve
}

// fieldPath strips the root struct name from the namespace:
// "loginRequest.user.name" becomes "user.name".
func fieldPath(fe playground.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}
