package common

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		jsonName := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			return ""
		}
		return jsonName
	})
	return v
}

// Validate runs `validate` struct tags and wraps failures in ErrValidation.
func Validate(i interface{}) error {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Field()+" failed on '"+fe.Tag()+"'")
		}
		return Errorf("%s: %w", strings.Join(msgs, "; "), ErrValidation)
	}
	return Errorf("%v: %w", err, ErrValidation)
}
