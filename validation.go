package posts

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

const locationBody = "body"

// orderedFieldErrors flattens ozzo errors into FieldErrors following order,
// which lists the json names of the payload fields.
func orderedFieldErrors(err error, order ...string) ([]FieldError, error) {
	if err == nil {
		return nil, nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		// internal ozzo errors (bad rule setup) are not field violations
		return nil, err
	}

	fields := make([]FieldError, 0, len(errs))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
		if fieldErr, ok := errs[name]; ok && fieldErr != nil {
			fields = append(fields, FieldError{
				Msg:      fieldErr.Error(),
				Param:    name,
				Location: locationBody,
			})
		}
	}

	for name, fieldErr := range errs {
		if seen[name] || fieldErr == nil {
			continue
		}
		fields = append(fields, FieldError{Msg: fieldErr.Error(), Param: name, Location: locationBody})
	}

	return fields, nil
}

// validatePayload runs ozzo validation and converts the result into a rich
// validation error using code as the HTTP status.
func validatePayload(code int, err error, order ...string) error {
	fields, internal := orderedFieldErrors(err, order...)
	if internal != nil {
		return internal
	}
	if len(fields) == 0 {
		return nil
	}
	return NewValidationError(code, fields)
}
