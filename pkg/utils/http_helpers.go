package utils

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/pkg/api"
	apperrors "pedant-server/pkg/errors"
)

func SuccessResponse(c echo.Context, body interface{}, message string, code int) error {
	return api.SuccessOne(c, code, message, body)
}

// ErrorResponse пишет ошибку клиенту. Внутренние ошибки и HttpError с причиной логируются.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	code, _, kind := api.StatusAndMessage(err)

	if httpErr, ok := err.(*apperrors.HttpError); ok && httpErr.Err != nil {
		logger.Warn("HTTP Error",
			zap.Int("code", httpErr.Code),
			zap.String("message", httpErr.Message),
			zap.Error(httpErr.Err),
			zap.Any("context", httpErr.Context),
		)
	} else if code >= http.StatusInternalServerError {
		logger.Error("Unexpected Error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	} else {
		logger.Debug("Ошибка запроса", zap.String("kind", string(kind)), zap.Error(err))
	}

	return api.ErrorResponse(c, err)
}

// ParseIDParam читает числовой параметр пути.
func ParseIDParam(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный ID",
			apperrors.Wrap(apperrors.KindInvalidInput, err, "неверный ID"),
			map[string]interface{}{"param": name, "value": raw},
		)
	}
	return id, nil
}

// ParseOptionalUint64 разбирает необязательное значение из query/form.
func ParseOptionalUint64(raw string) (*uint64, error) {
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Некорректное число: %s", raw)
	}
	return &v, nil
}

// BindAndValidate - Bind + Validate с переводом ошибок в INVALID_INPUT.
func BindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	if err := c.Validate(dst); err != nil {
		return err
	}
	return nil
}
