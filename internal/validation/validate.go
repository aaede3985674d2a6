package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/templui/sneakerbase/internal/model"
)

var validate = newValidator()

// newValidator registers the rating bounds from the model as the "score"
// and "sizing" tags.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("score", intRange(model.MinScore, model.MaxScore))
	_ = v.RegisterValidation("sizing", intRange(model.MinSizing, model.MaxSizing))
	return v
}

func intRange(lo, hi int64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= lo && n <= hi
	}
}

// Error is a user-facing validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Struct validates s by its `validate` tags and returns the first failure as *Error.
// Fields may override the generated message with a `msg` tag.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}

	first := fieldErrors[0]
	return &Error{
		Field:   first.Field(),
		Message: fieldMessage(s, first),
	}
}

func fieldMessage(s any, e validator.FieldError) string {
	if msg := messageTag(s, e.StructField()); msg != "" {
		return msg
	}

	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func messageTag(s any, structField string) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return ""
	}
	return f.Tag.Get("msg")
}
