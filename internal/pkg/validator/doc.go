// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Callers depend on the Validator interface; V10Validator backs it with
// go-playground/validator v10 and registers the project-specific rules
// (otp_digit, otp_code).
package validator

// Validator validates a struct, returning a field-keyed error on failure.
type Validator interface {
	Validate(data any) error
}
