package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrOutOfRange is returned when a setting falls outside its declared bounds.
var ErrOutOfRange = errors.New("setting out of range")

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator with the settings rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use JSON names in error messages so they match the settings keys.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("interval", func(fl validator.FieldLevel) bool {
			return validInterval(int(fl.Field().Int()))
		})
	})
	return validate
}

// Validate checks every field against its bounds.
func (s Settings) Validate() error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, translate(fe))
	}
	return fmt.Errorf("%w: %s", ErrOutOfRange, strings.Join(messages, "; "))
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got %v)", field, fe.Param(), fe.Value())
	case "interval":
		return fmt.Sprintf("%s must be 1-168 hours or a multiple of 24 up to %d (got %v)", field, MaxInterval, fe.Value())
	case "iscolor":
		return fmt.Sprintf("%s must be a hex, rgb(a) or hsl(a) colour (got %q)", field, fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
