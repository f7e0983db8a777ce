package response

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func TestValidationErrorReturnsAllViolations(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(registerForm{})
	require.Error(t, err)

	list := ValidationError(err.(validator.ValidationErrors))

	require.Len(t, list.Errors, 3)
	require.Equal(t, "Name is required.", list.Errors[0].Msg)
	require.Equal(t, "Email is required.", list.Errors[1].Msg)
	require.Equal(t, "Password is required.", list.Errors[2].Msg)
}

func TestValidationErrorMessages(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(registerForm{Name: "A", Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	list := ValidationError(err.(validator.ValidationErrors))

	require.Len(t, list.Errors, 2)
	require.Equal(t, "Please include a valid email.", list.Errors[0].Msg)
	require.Equal(t, "Please enter a password with 6 or more characters.", list.Errors[1].Msg)
}

func TestError(t *testing.T) {
	list := Error("User already exists.")

	require.Len(t, list.Errors, 1)
	require.Equal(t, "User already exists.", list.Errors[0].Msg)
}
