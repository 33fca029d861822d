package validator

import (
	"errors"
	"strings"
)

// ErrValidation matches any ValidationErrors value with errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	// Field is the JSON name of the field (dotted for nested structs).
	Field string `json:"field"`
	// Message is a ready-to-display English message.
	Message string `json:"message"`
	// TranslationKey identifies the rule, e.g. "validation.required".
	TranslationKey string `json:"-"`
	// TranslationValues holds the placeholders for TranslationKey.
	TranslationValues map[string]any `json:"-"`
}

// ValidationErrors is the list of field failures returned by ValidateStruct.
type ValidationErrors []ValidationError

// Error joins all messages.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationErrors.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field failed at least one rule.
func (e ValidationErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Translate rewrites every message that carries a TranslationKey using fn.
// A nil fn leaves the messages untouched.
func (e ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		e[i].Message = fn(e[i].TranslationKey, e[i].TranslationValues)
	}
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors inside err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
