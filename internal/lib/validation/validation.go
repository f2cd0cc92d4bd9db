// Package validation создаёт валидатор входных данных портала.
package validation

import (
	"time"

	"github.com/go-playground/validator"
)

// New возвращает валидатор с зарегистрированным тегом datetime=<layout>.
// Пустая строка считается ошибкой, для необязательных полей нужен omitempty.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("datetime", isDateTime); err != nil {
		panic("validation: " + err.Error())
	}
	return v
}

func isDateTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(fl.Param(), fl.Field().String())
	return err == nil
}
