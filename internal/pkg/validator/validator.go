package validator

import (
	"github.com/go-playground/validator/v10"

	"spacebook/internal/pkg/interval"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := interval.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := interval.ParseDate(fl.Field().String())
		return err == nil
	})
}

// Engine exposes the shared instance so gin binding can reuse the custom tags.
func Engine() *validator.Validate {
	return validate
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
