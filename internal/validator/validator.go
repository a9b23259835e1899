package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	ErrRequired       = "is required"
	ErrMinItems       = "must contain at least %s items"
	ErrMaxItems       = "must contain at most %s items"
	ErrUnique         = "must not contain duplicates"
	ErrSeatIDFormat   = "must be a seat ID like A12"
	ErrDefaultInvalid = "is invalid"

	seatIDRgx = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,3}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_id", validateSeatID)

	return validator
}

func validateSeatID(fl validator.FieldLevel) bool {
	return seatIDRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		return fmt.Sprintf(ErrMinItems, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxItems, err.Param())
	case "unique":
		return ErrUnique
	case "seat_id":
		return ErrSeatIDFormat
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return ErrDefaultInvalid
	}
}
