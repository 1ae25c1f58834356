package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the validator tags on a request struct
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FirstError returns the field name and failed tag of the first validation
// error, so handlers can map it to a message-catalog key.
func FirstError(err error) (field, tag string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Tag()
	}
	return "", ""
}

// MessageKey resolves the first validation error against a Field.tag -> key
// table, falling back to the given default key.
func MessageKey(err error, keys map[string]string, fallback string) string {
	field, tag := FirstError(err)
	if key, ok := keys[field+"."+tag]; ok {
		return key
	}
	return fallback
}
