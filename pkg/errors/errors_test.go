package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := NewExpiredError("Заявка истекла")
	wrapped := fmt.Errorf("approve: %w", base)

	assert.Equal(t, KindExpired, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindExpired))
	assert.False(t, IsKind(wrapped, KindAlreadyProcessed))
}

func TestIsMatchesByKind(t *testing.T) {
	err := NewNotFoundError("Сервис %d не найден", 7)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "Сервис 7 не найден", err.Error())
}

func TestPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindOf(errors.New("boom"))))
}

func TestHTTPStatusTable(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:         http.StatusNotFound,
		KindAlreadyExists:    http.StatusConflict,
		KindAlreadyProcessed: http.StatusConflict,
		KindExpired:          http.StatusConflict,
		KindForbidden:        http.StatusForbidden,
		KindInvalidInput:     http.StatusBadRequest,
		KindUnauthorized:     http.StatusUnauthorized,
	}
	for kind, code := range cases {
		assert.Equal(t, code, HTTPStatus(kind), string(kind))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInvalidInput, cause, "неверный JSON")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Nil(t, Wrap(KindInvalidInput, nil, "x"))
}
