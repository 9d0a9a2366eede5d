package errors

import stderrors "errors"

// ErrorResponse is the failure envelope sent to API clients.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    ErrorCode      `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse renders e as its failure envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message, Code: e.Code, Details: e.Details}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
