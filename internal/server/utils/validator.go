package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vzahanych/weatherpulse/internal/weather"
)

func registerValidations(v *validator.Validate) {
	_ = v.RegisterValidation("location", validateLocation)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// RegisterGinValidations installs the custom tags on gin's binding engine so
// ShouldBind* enforce them.
func RegisterGinValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidations(v)
	}
}

func validateLocation(fl validator.FieldLevel) bool {
	return weather.ValidLocationName(fl.Field().String())
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validatorErrs, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Value:   err.Value(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

// DescribeValidationErrors joins the messages of a binding error into one
// line, falling back to err.Error() for non-validation failures such as
// malformed JSON.
func DescribeValidationErrors(err error) string {
	formatted := FormatValidationErrors(err)
	if len(formatted) == 0 {
		return err.Error()
	}

	msgs := make([]string, 0, len(formatted))
	for _, f := range formatted {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "location":
		return fmt.Sprintf("%s may only contain letters, spaces, hyphens, apostrophes and dots", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
