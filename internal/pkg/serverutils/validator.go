// FILE: internal/pkg/serverutils/validator.go
package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct validate tags. Returned errors surface
// through ErrorHandlerMiddleware as a 400.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
