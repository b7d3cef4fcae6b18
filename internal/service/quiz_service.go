package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	"github.com/yourusername/qa-session-api/internal/domain/repository"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// QuizService - загрузчик банка вопросов: контент-бэкенд за явным кешем.
// Повторные обращения к одному тесту в пределах TTL не ходят по сети, а
// одновременные промахи по одному ключу схлопываются в один запрос (singleflight).
type QuizService struct {
	source   repository.QuizSource
	cache    repository.CacheRepository
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewQuizService создает сервис загрузки тестов
func NewQuizService(source repository.QuizSource, cache repository.CacheRepository, cacheTTL time.Duration) *QuizService {
	return &QuizService{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetQuiz возвращает определение теста по ID. Гарантирует questions >= 1:
// пустой или отсутствующий тест - ErrNotFound.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*entity.QuizDefinition, error) {
	if quizID == "" {
		return nil, fmt.Errorf("empty quiz id: %w", apperrors.ErrValidation)
	}

	key := quizCacheKey(quizID)

	var cached entity.QuizDefinition
	if err := s.cache.GetJSON(key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		// Сбой кеша не фатален - идём мимо него к бэкенду
		log.Printf("[QuizService] Предупреждение: ошибка чтения кеша для %s: %v", key, err)
	}

	result, err, shared := s.group.Do(quizID, func() (interface{}, error) {
		// Перепроверяем кеш: другой вызов мог уже заполнить его
		var again entity.QuizDefinition
		if err := s.cache.GetJSON(key, &again); err == nil {
			return &again, nil
		}

		def, err := s.source.FetchQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetJSON(key, def, s.cacheTTL); err != nil {
			log.Printf("[QuizService] Предупреждение: не удалось закешировать тест %s: %v", quizID, err)
		}
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[QuizService] Запрос теста %s схлопнут с параллельным", quizID)
	}
	return result.(*entity.QuizDefinition), nil
}

// GetQuizzesByArticle возвращает тесты, привязанные к статье.
// Списки не кешируются: представления запрашивают их однократно при выборе теста.
func (s *QuizService) GetQuizzesByArticle(ctx context.Context, articleID string) ([]*entity.QuizDefinition, error) {
	if articleID == "" {
		return nil, fmt.Errorf("empty article id: %w", apperrors.ErrValidation)
	}
	return s.source.FetchQuizzesByArticle(ctx, articleID)
}

// Invalidate сбрасывает закешированное определение теста.
// Вызывается при сигнале об изменении теста тем же ID (авторский контур внешний).
func (s *QuizService) Invalidate(quizID string) error {
	return s.cache.Delete(quizCacheKey(quizID))
}

func quizCacheKey(quizID string) string {
	return "qa:quiz:" + quizID
}
