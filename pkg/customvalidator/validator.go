// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"pedant-server/internal/authz"
)

var (
	serviceNumberRe = regexp.MustCompile(`^\d{1,10}$`)
	orderNumberRe   = regexp.MustCompile(`^[0-9A-Za-z]{1,10}-\d{1,12}$`)
	pincodeRe       = regexp.MustCompile(`^\d{4,8}$`)
)

// RegisterCustomValidations регистрирует доменные правила в валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("service_number", isServiceNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("order_number", isOrderNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("permission", isKnownPermission); err != nil {
		return err
	}
	if err := v.RegisterValidation("pincode", isPincode); err != nil {
		return err
	}
	return nil
}

// New - валидатор с уже зарегистрированными правилами.
func New() *validator.Validate {
	v := validator.New()
	registerNullTypes(v)
	if err := RegisterCustomValidations(v); err != nil {
		panic(err)
	}
	return v
}

func isServiceNumber(fl validator.FieldLevel) bool {
	return serviceNumberRe.MatchString(fl.Field().String())
}

func isOrderNumber(fl validator.FieldLevel) bool {
	return orderNumberRe.MatchString(fl.Field().String())
}

func isKnownPermission(fl validator.FieldLevel) bool {
	return authz.IsKnownPermission(fl.Field().String())
}

func isPincode(fl validator.FieldLevel) bool {
	return pincodeRe.MatchString(fl.Field().String())
}
