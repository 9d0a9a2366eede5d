// Package errors provides AppError, the failure type of the mock API.
//
// Each ErrorCode has a fixed HTTP status and a default message, so handlers
// pick a code and optionally a message:
//
//	return errors.NotFound("book", id)
//	return errors.New(errors.ErrCodeConflict, "Order is already cancelled.")
//
// ToResponse renders the failure envelope {success:false, message, code}.
package errors
