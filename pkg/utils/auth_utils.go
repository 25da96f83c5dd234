package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	apperrors "pedant-server/pkg/errors"
)

func HashPincode(pincode string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pincode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("не удалось хешировать пин-код: %w", err)
	}
	return string(bytes), nil
}

func ComparePincode(hashedPincode string, plainPincode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPincode), []byte(plainPincode))
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator(v *validator.Validate) *CustomValidator {
	return &CustomValidator{validator: v}
}

// Validate возвращает INVALID_INPUT с перечнем полей, не прошедших проверку.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return ValidationError(err)
	}
	return nil
}

func ValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(apperrors.KindInvalidInput, err, "Ошибка валидации")
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
	}
	return apperrors.Wrap(apperrors.KindInvalidInput, err, "Ошибка валидации: "+strings.Join(msgs, "; "))
}
