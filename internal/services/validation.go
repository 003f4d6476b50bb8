package services

import (
	"errors"
	"fmt"
	"strings"

	tutor_errors "tutor-central/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the struct tags and reports the first failing field as
// ErrInvalidInput.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fmt.Sprintf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
		if fe.Param() != "" {
			reason = fmt.Sprintf("%s is invalid (%s=%s)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return tutor_errors.Invalid(reason)
	}
	return tutor_errors.Invalid(err.Error())
}
