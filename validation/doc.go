// Package validation checks request payloads before they leave the client
// and before the mock API acts on them. Failures are *errors.AppError values
// with code INVALID_INPUT and a per-field list in Details["fields"].
//
//	type LoginRequest struct {
//	    Username string `json:"username" validate:"required"`
//	    Password string `json:"password" validate:"required,min=6"`
//	}
//	err := validation.Validate(req)
//
// Programmatic checks collect errors the same way:
//
//	err := validation.New().Required("id", id).OneOf("order", order, []string{"asc", "desc"}).Err()
package validation
