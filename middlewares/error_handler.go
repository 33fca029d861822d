package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/speakerhub/internal"
	"github.com/dmitrymomot/speakerhub/pkg/validator"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Detail    string                      `json:"detail"`
	Code      string                      `json:"code,omitempty"`
	RequestID string                      `json:"request_id,omitempty"`
	Errors    []validator.ValidationError `json:"errors,omitempty"`
}

// ErrorHandler returns the gateway error handler. It renders
// {"detail", "code"} with the status carried by the error:
//
//   - *internal.HTTPError: its status, message and code
//   - validator.ValidationErrors: 422 with the field errors
//   - *PanicError: 500
//   - *TimeoutError: 504
//   - anything else: 500 with a generic message
//
// 5xx responses are logged at error level with the underlying cause.
func ErrorHandler(log *slog.Logger) internal.ErrorHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c internal.Context, err error) error {
		status, resp := classify(err)
		resp.RequestID = GetRequestID(c)

		if status >= http.StatusInternalServerError {
			log.ErrorContext(c.Context(), "request failed",
				slog.Int("status", status),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", err),
			)
		}

		return c.JSON(status, resp)
	}
}

func classify(err error) (int, ErrorResponse) {
	if _, ok := AsPanicError(err); ok {
		return http.StatusInternalServerError, ErrorResponse{
			Detail: http.StatusText(http.StatusInternalServerError),
			Code:   "internal_error",
		}
	}
	if _, ok := AsTimeoutError(err); ok {
		return http.StatusGatewayTimeout, ErrorResponse{
			Detail: "request timed out",
			Code:   "timeout",
		}
	}
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return httpErr.Code, ErrorResponse{Detail: httpErr.Message, Code: httpErr.ErrorCode}
	}
	if validator.IsValidationError(err) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Detail: "validation failed",
			Code:   "validation_failed",
			Errors: validator.ExtractValidationErrors(err),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Detail: http.StatusText(http.StatusInternalServerError),
		Code:   "internal_error",
	}
}
