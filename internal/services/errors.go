// internal/services/errors.go
package services

import "errors"

// Domain errors. Handlers translate these at the boundary; raw store or
// gateway errors are logged and surfaced as internal errors instead.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrMissingEmail      = errors.New("payer email missing")
	ErrCredentialInvalid = errors.New("download credential invalid")
	ErrCredentialExpired = errors.New("download credential expired")
	ErrProductOrdered    = errors.New("product has existing orders")
	ErrPaymentGateway    = errors.New("payment gateway error")
)
