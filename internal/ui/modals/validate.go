package modals

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhubert/messly/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginForm is the login submission.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterForm is the registration submission.
type RegisterForm struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=6"`
}

// UserEditForm is the admin user edit submission.
type UserEditForm struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Role     string `validate:"oneof=user admin"`
}

// validateForm runs the struct tags on form and reports the first failure as
// a validation error naming the field.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.ValidationFailed("form", err.Error())
	}
	fe := fieldErrs[0]
	return errors.ValidationFailed(strings.ToLower(fe.Field()), reason(fe))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
