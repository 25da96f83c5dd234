package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "pedant-server/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}

// SuccessOne - ответ с одним объектом
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T) error {
	if list == nil {
		list = make([]T, 0)
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    ListBody[T]{List: list, Total: len(list)},
	})
}

// StatusAndMessage переводит ошибку в HTTP-код, сообщение для клиента и тег вида.
func StatusAndMessage(err error) (int, string, apperrors.Kind) {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		kind := apperrors.KindOf(httpErr.Err)
		if kind == apperrors.KindInternal {
			kind = ""
		}
		return httpErr.Code, httpErr.Message, kind
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return echoErr.Code, msg, ""
		}
		return echoErr.Code, http.StatusText(echoErr.Code), ""
	}

	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		return http.StatusInternalServerError, "Внутренняя ошибка сервера", kind
	}
	return apperrors.HTTPStatus(kind), err.Error(), kind
}

func ErrorResponse(c echo.Context, err error) error {
	code, msg, kind := StatusAndMessage(err)

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
		Code:    string(kind),
	})
}
