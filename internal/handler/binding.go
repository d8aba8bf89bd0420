package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
)

// bindingError converts gin binding failures into the common error shape,
// naming the offending fields when the validator provides them.
func bindingError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
		}
		return appErrors.Clone(appErrors.ErrValidation, "invalid request: "+strings.Join(fields, ", "))
	}
	return appErrors.Clone(appErrors.ErrValidation, "invalid request payload")
}
