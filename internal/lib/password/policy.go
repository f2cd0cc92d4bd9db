// Package password проверяет пароль на соответствие политике портала.
// Хранение и хеширование паролей остаются за сервисом идентификации платформы.
package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MinLength минимальная длина пароля.
const MinLength = 8

// ErrWeak пароль не проходит политику.
var ErrWeak = errors.New("password does not meet the policy")

// Validate проверяет длину и наличие заглавной буквы, цифры и спецсимвола.
func Validate(pw string) error {
	var missing []string
	if len([]rune(pw)) < MinLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", MinLength))
	}
	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", ErrWeak, strings.Join(missing, ", "))
	}
	return nil
}
