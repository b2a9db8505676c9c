// Package jwt реализует генерацию и парсинг JWT токенов для админского API.
//
// Maker определяет интерфейс для создания и проверки токенов,
// MakerImpl — реализация с секретным ключом и сроком жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт токен для администратора с указанным логином.
	GenerateToken(login string) (string, error)
	// ParseToken разбирает токен и возвращает claims, если он валиден.
	ParseToken(tokenStr string) (*AdminClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
