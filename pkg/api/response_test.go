package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pedant-server/pkg/errors"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, Response[any]) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, ErrorResponse(c, err))

	var body Response[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorResponse_DomainKinds(t *testing.T) {
	rec, body := render(t, fmt.Errorf("hiring: %w", apperrors.NewAlreadyProcessedError("Заявка уже обработана")))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, body.Status)
	assert.Equal(t, "Заявка уже обработана", body.Message)
	assert.Equal(t, "ALREADY_PROCESSED", body.Code)
}

func TestErrorResponse_InternalHidesDetails(t *testing.T) {
	rec, body := render(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Внутренняя ошибка сервера", body.Message)
}

func TestErrorResponse_HttpError(t *testing.T) {
	rec, body := render(t, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", errors.New("strconv"), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Неверный ID", body.Message)
	assert.Empty(t, body.Code)
}

func TestSuccessList_EmptyIsArray(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SuccessList[int](c, "ok", nil))
	assert.JSONEq(t, `{"status":true,"message":"ok","body":{"list":[],"total":0}}`, rec.Body.String())
}
