package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - стабильный тег ошибки, по нему транспорт выбирает HTTP-статус.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
	KindAlreadyProcessed Kind = "ALREADY_PROCESSED"
	KindExpired          Kind = "EXPIRED"
	KindForbidden        Kind = "FORBIDDEN"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindInternal         Kind = "INTERNAL"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = NewUnauthorizedError("неверный метод подписи токена")
	ErrInvalidToken         = NewUnauthorizedError("недопустимый токен")
	ErrTokenExpired         = NewUnauthorizedError("срок действия токена истёк")
	ErrTokenIsNotRefresh    = NewUnauthorizedError("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = NewUnauthorizedError("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = NewUnauthorizedError("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = NewUnauthorizedError("неверный формат заголовка авторизации")
	ErrInvalidInitData   = NewUnauthorizedError("подпись данных Telegram недействительна")
	ErrUnauthorized      = NewUnauthorizedError("Требуется аутентификация")
	ErrAdminRequired     = NewForbiddenError("Требуется роль администратора")
	ErrNotServiceOwner   = NewForbiddenError("Нет прав на управление этим сервисом")
	ErrUserBlocked       = NewForbiddenError("Пользователь заблокирован")
	ErrForbidden         = NewForbiddenError("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = NewUnauthorizedError("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound   = NewNotFoundError("запись не найдена")
	ErrBadRequest = NewInvalidInputError("неверный запрос")
)

// AppError - доменная ошибка с видом (Kind). Обёртки через %w сохраняют вид.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is сравнивает только вид ошибки, чтобы errors.Is(err, ErrNotFound)
// срабатывал для любой ошибки NOT_FOUND.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newKind(kind Kind, format string, args ...interface{}) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Kind: kind, Message: msg}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return newKind(KindNotFound, format, args...)
}

func NewAlreadyExistsError(format string, args ...interface{}) error {
	return newKind(KindAlreadyExists, format, args...)
}

func NewAlreadyProcessedError(format string, args ...interface{}) error {
	return newKind(KindAlreadyProcessed, format, args...)
}

func NewExpiredError(format string, args ...interface{}) error {
	return newKind(KindExpired, format, args...)
}

func NewForbiddenError(format string, args ...interface{}) error {
	return newKind(KindForbidden, format, args...)
}

func NewInvalidInputError(format string, args ...interface{}) error {
	return newKind(KindInvalidInput, format, args...)
}

func NewUnauthorizedError(format string, args ...interface{}) error {
	return newKind(KindUnauthorized, format, args...)
}

// Wrap оборачивает техническую ошибку в доменную с заданным видом.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf возвращает вид ошибки или KindInternal для всего, что не AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus - таблица соответствия вида ошибки и HTTP-кода.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists, KindAlreadyProcessed, KindExpired:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HttpError - ошибка транспортного уровня: код, сообщение для пользователя
// и внутренняя причина для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }
