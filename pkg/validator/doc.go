// Package validator validates request and response DTOs with
// github.com/go-playground/validator/v10 and reports failures as
// [ValidationErrors], a flat list of field/message pairs keyed by JSON name.
//
//	type volumeRequest struct {
//	    DeviceSelector string `json:"device_selector" validate:"selector"`
//	    Volume         *int   `json:"volume" validate:"required,min=0,max=100"`
//	}
//
//	if err := validator.ValidateStruct(req); err != nil {
//	    if ve := validator.ExtractValidationErrors(err); ve != nil {
//	        // 422 with ve
//	    }
//	}
//
// Every ValidationErrors value matches [ErrValidation] with errors.Is. Each
// entry carries a TranslationKey ("validation.required",
// "validation.min_length", ...) and its placeholder values so messages can be
// localized with [ValidationErrors.Translate].
package validator
