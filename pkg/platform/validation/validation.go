// Package validation runs struct-tag validation and the length and paging
// limits shared by request types.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "bloodbank/pkg/domain-errors"
)

// tagMessages renders the first failing rule from the json field name and
// the rule parameter.
var tagMessages = map[string]func(field, param string) string{
	"required": isRequired,
	"notblank": isRequired,
	"email":    func(string, string) string { return "invalid email format" },
	"min":      func(f, p string) string { return fmt.Sprintf("%s must be at least %s", f, p) },
	"max":      func(f, p string) string { return fmt.Sprintf("%s must be at most %s", f, p) },
	"oneof":    func(f, p string) string { return fmt.Sprintf("%s must be one of [%s]", f, p) },
}

func isRequired(field, _ string) string { return field + " is required" }

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks the validate tags on req. The first failure becomes a
// CodeValidation error named after the json field.
func Validate(req any) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, message(err))
}

// IsEmail reports whether s has the shape of an email address.
func IsEmail(s string) bool {
	return instance().Var(s, "required,email") == nil
}

func message(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	field := fe.Field()
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}
	if render, ok := tagMessages[fe.ActualTag()]; ok {
		return render(field, fe.Param())
	}
	return field + " is invalid"
}
