package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAuthenticated роль, которую платформа ставит любому вошедшему пользователю.
const RoleAuthenticated = "authenticated"

// AppMetadata данные, которые может менять только сервер платформы.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// CustomClaims описывает claims access-токена платформы.
// Идентификатор пользователя лежит в стандартном поле sub.
type CustomClaims struct {
	Email                string      `json:"email"`
	Role                 string      `json:"role"`
	AppMetadata          AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims             // Subject, ExpiresAt, IssuedAt и пр.
}

// UserID возвращает идентификатор пользователя из sub.
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// EffectiveRole возвращает роль из app_metadata, если она задана, иначе role токена.
func (c *CustomClaims) EffectiveRole() string {
	if c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	return c.Role
}

// GenerateToken создает токен в формате платформы. Роль "admin" кладётся в
// app_metadata, верхнеуровневая роль всегда authenticated.
func (j *MakerImpl) GenerateToken(userID, email, role string) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims := CustomClaims{
		Email: email,
		Role:  RoleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	if role != "" && role != RoleAuthenticated {
		claims.AppMetadata.Role = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет подпись HS256 и срок действия.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: token has no subject", op)
	}
	return claims, nil
}
