package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

var validate = validator.New()

// Validate checks struct tags and converts failures into the shared
// validation error shape.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	details := map[string]any{}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("invalid payload", details)
}
