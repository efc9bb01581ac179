package apitypes

import "github.com/go-playground/validator/v10"

var requestValidator = validator.New()

// ValidateGenerateRequest enforces GenerateRequest's struct tags. It returns
// the validator's error unchanged (validator.ValidationErrors, one entry per
// failing field), or nil when the request is valid.
func ValidateGenerateRequest(req GenerateRequest) error {
	return requestValidator.Struct(req)
}
