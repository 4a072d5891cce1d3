package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError describes one failed validation rule on a struct field.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

var validate = validator.New()

func init() {
	// The nil UUID is a valid 16-byte value, so the builtin `required`
	// rule never fires on uuid.UUID fields. uuid_required treats the
	// nil UUID as missing.
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
}

// ValidateStruct runs the struct's validate tags and returns one entry
// per failed field. An empty result means the struct is valid.
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var errs []FieldError
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, FieldError{
			Field: fe.StructNamespace(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return errs
}
