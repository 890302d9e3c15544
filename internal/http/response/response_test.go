package response_test

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cinestream/internal/http/response"
)

func TestValidationError(t *testing.T) {
	type request struct {
		Email  string `validate:"required,email"`
		Age    int    `validate:"min=13"`
		Rating string `validate:"oneof=all 18+"`
	}

	err := validator.New().Struct(request{Email: "nope", Age: 5, Rating: "x"})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t,
		"field Email must be a valid email, field Age must be at least 13, field Rating must be one of [all 18+]",
		resp.Error)
}

func TestOKWithData(t *testing.T) {
	resp := response.OKWithData(map[string]int{"n": 1})
	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, response.Response{Status: "Error", Error: "boom"}, response.Error("boom"))
}
