// Package jwt разбирает и выпускает access-токены хостинговой платформы.
//
// Платформа подписывает токены HS256 общим секретом проекта; сервис
// проверяет их локально, без сетевого запроса к провайдеру идентификации.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с указанной ролью.
	GenerateToken(userID, email, role string) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на общем секрете и времени жизни токена.
type MakerImpl struct {
	secretKey string        // Секрет проекта платформы.
	tokenTTL  time.Duration // Время жизни выпускаемых токенов.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
