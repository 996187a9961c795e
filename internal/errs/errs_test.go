package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("missing")))
	assert.Equal(t, CodeConflict, CodeOf(fmt.Errorf("outer: %w", Conflict("duplicate"))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestMessage_HidesUnclassified(t *testing.T) {
	assert.Equal(t, "event not found", Message(NotFound("event not found")))
	assert.Equal(t, "internal server error", Message(errors.New("pq: relation users does not exist")))
}

func TestMessage_KeepsWrappedClassified(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("only event members can add pictures"))
	assert.Equal(t, "only event members can add pictures", Message(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{InvalidArgument("bad"), http.StatusBadRequest},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unavailable("down"), http.StatusServiceUnavailable},
		{Upstream("provider failed", nil), http.StatusInternalServerError},
		{Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "for %v", tc.err)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(CodeUnavailable, "database is not available", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "UNAVAILABLE")
	assert.Contains(t, err.Error(), "socket closed")
}
