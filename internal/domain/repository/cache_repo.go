package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем определений тестов.
// Кеш - явная, внедряемая зависимость с TTL-политикой, а не скрытое
// состояние на уровне модуля; инвалидация - по ключу конкретного теста.
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
}
