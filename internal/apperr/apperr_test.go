package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("missing"), http.StatusBadRequest},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Internal("Server error", errors.New("socket closed")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestMessageHidesCause(t *testing.T) {
	cause := errors.New("connection refused to 10.0.0.3")
	err := Internal("Server error", cause)

	assert.Equal(t, "Server error", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server error", Message(errors.New("raw driver text")))
}
