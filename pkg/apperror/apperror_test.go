package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"usermgmt/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, apperror.NotFound("user %d not found", 1).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, apperror.BadRequest("bad").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, apperror.Unauthorized("nope").HTTPStatus())
	assert.Equal(t, http.StatusConflict, apperror.Conflict("taken").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, apperror.Internal(errors.New("db down")).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, apperror.New("SOMETHING_ELSE", "x", nil).HTTPStatus())
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.Internal(cause)

	assert.Equal(t, apperror.GenericMessage, err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", apperror.NotFound("user %d not found", 7))

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(wrapped))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("plain")))
	assert.Equal(t, apperror.KindNotFound, apperror.From(wrapped).Kind)
	assert.Equal(t, apperror.KindInternal, apperror.From(errors.New("plain")).Kind)
}
