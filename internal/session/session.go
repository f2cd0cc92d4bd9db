// Package session описывает аутентифицированного пользователя портала.
//
// Сессия создаётся JWT middleware из access-токена платформы и явно
// передаётся в сервисы; сервисы не читают пользователя из глобального состояния.
package session

import (
	"context"
	"errors"
)

// RoleAdmin роль администратора панели управления автопарком.
const RoleAdmin = "admin"

// ErrNotAuthenticated возвращается, если операция вызвана без сессии.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session текущий пользователь и его токен доступа к платформе.
type Session struct {
	UserID      string
	Email       string
	Role        string
	AccessToken string
}

// Require проверяет, что сессия есть и в ней указан пользователь.
func Require(s *Session) error {
	if s == nil || s.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// IsAdmin сообщает, является ли пользователь администратором.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

type ctxKey struct{}

// WithSession кладёт сессию в контекст запроса.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext достаёт сессию из контекста запроса.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
