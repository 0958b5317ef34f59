package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxIDLength bounds bus, element and switch identifiers
	MaxIDLength = 128
)

func init() {
	validate = validator.New()
}

// ErrInvalidRequest is wrapped by every error returned from this package's
// request validators.
var ErrInvalidRequest = errors.New("invalid request")

// FieldError describes the first struct tag that failed.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s: field is required", e.Field)
	case "max":
		return fmt.Sprintf("%s: must not exceed %s", e.Field, e.Param)
	case "min":
		return fmt.Sprintf("%s: must be at least %s", e.Field, e.Param)
	case "nefield":
		return fmt.Sprintf("%s: must differ from %s", e.Field, e.Param)
	case "dive":
		return fmt.Sprintf("%s: invalid element in array", e.Field)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", e.Field, e.Tag)
	}
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRequest
}

// SwitchRequest is the shape of a switch insert.
type SwitchRequest struct {
	Name     string  `validate:"required,max=128"`
	Bus0     string  `validate:"required,max=128"`
	Bus1     string  `validate:"required,max=128,nefield=Bus0"`
	Capacity float64 `validate:"-"`
}

// BusRequest is the shape of a bus insert.
type BusRequest struct {
	ID string `validate:"required,max=128"`
}

// ElementRequest is the shape of an element insert.
type ElementRequest struct {
	Component string   `validate:"required"`
	ID        string   `validate:"required,max=128"`
	Buses     []string `validate:"required,min=1,dive,required,max=128"`
}

// ValidateSwitchRequest validates a switch insert. Capacity may be NaN
// (no rating) but never negative or infinite.
func ValidateSwitchRequest(req *SwitchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: switch request cannot be nil", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if !math.IsNaN(req.Capacity) && (req.Capacity < 0 || math.IsInf(req.Capacity, 0)) {
		return &FieldError{Field: "Capacity", Tag: "gte", Param: "0"}
	}
	return nil
}

// ValidateBusRequest validates a bus insert
func ValidateBusRequest(req *BusRequest) error {
	if req == nil {
		return fmt.Errorf("%w: bus request cannot be nil", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateElementRequest validates an element insert. The number of
// terminals per component kind is checked by the element table itself.
func ValidateElementRequest(req *ElementRequest) error {
	if req == nil {
		return fmt.Errorf("%w: element request cannot be nil", ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a FieldError for the
// first failing field.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	e := validationErrs[0]
	return &FieldError{Field: e.Field(), Tag: e.Tag(), Param: e.Param()}
}
