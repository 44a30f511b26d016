package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"meowscale/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and reports the first failing
// field as a *domain.ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fe := vErrs[0]
		if fe.Param() != "" {
			return domain.Invalid(fe.Field(), fmt.Sprintf("failed rule %s=%s", fe.Tag(), fe.Param()))
		}
		return domain.Invalid(fe.Field(), fmt.Sprintf("failed rule %s", fe.Tag()))
	}
	return err
}
