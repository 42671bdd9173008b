package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

type signupRequest struct {
	Handle   string `json:"handle" validate:"required,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type commentRequest struct {
	Body   string `json:"body" validate:"notblank"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

func TestValidate_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(&signupRequest{
		Handle:   "ada",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(&signupRequest{
		Handle:   "Not A Handle!",
		Email:    "nope",
		Password: "short",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "handle")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
}

func TestValidate_NotBlankRejectsWhitespace(t *testing.T) {
	v := validation.New()

	err := v.Validate(&commentRequest{Body: "   \t ", Rating: 3})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Contains(t, domainErr.Details, "body")
}

func TestValidate_RatingBounds(t *testing.T) {
	v := validation.New()

	for _, rating := range []int{1, 5} {
		assert.NoError(t, v.Validate(&commentRequest{Body: "fine", Rating: rating}))
	}
	for _, rating := range []int{0, 6, -1} {
		err := v.Validate(&commentRequest{Body: "fine", Rating: rating})
		assert.Error(t, err, "rating %d must be rejected", rating)
	}
}
