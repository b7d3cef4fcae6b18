package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	"github.com/yourusername/qa-session-api/internal/domain/repository"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// HistorySummary - сводка по прошлым попыткам пары (пользователь, тест)
// для панели истории: лучший результат, средний, количество попыток.
type HistorySummary struct {
	Attempts     int     `json:"attempts"`
	BestScore    float64 `json:"best_score"`
	AverageScore float64 `json:"average_score"`
}

// ResultService отвечает за отправку попыток на оценку и чтение истории.
// Сам подсчёт очков - непрозрачный удалённый вызов бэкенда результатов.
type ResultService struct {
	gateway repository.AttemptGateway
}

// NewResultService создает сервис результатов
func NewResultService(gateway repository.AttemptGateway) *ResultService {
	return &ResultService{gateway: gateway}
}

// SubmitAttempt отправляет ответы на оценку и возвращает разобранную попытку.
// Частичная карта ответов допустима: неотвеченные вопросы бэкенд считает неверными.
func (s *ResultService) SubmitAttempt(
	ctx context.Context,
	quizID, learnerID string,
	answers map[string]entity.OptionKey,
	timeTakenSeconds int,
) (*entity.GradedAttempt, error) {
	if quizID == "" || learnerID == "" {
		return nil, fmt.Errorf("quiz id and learner id are required: %w", apperrors.ErrValidation)
	}

	attempt, err := s.gateway.SubmitAttempt(ctx, quizID, learnerID, answers, timeTakenSeconds)
	if err != nil {
		return nil, err
	}

	log.Printf("[ResultService] Попытка по тесту %s пользователя %s оценена: %.1f%% (%d/%d)",
		quizID, learnerID, attempt.Score, attempt.CorrectCount, attempt.TotalQuestions)
	return attempt, nil
}

// GetHistory возвращает историю попыток, новые сверху. Сбой чтения истории
// не фатален и никогда не блокирует сессию: деградируем до пустого списка
// с предупреждением в логе.
func (s *ResultService) GetHistory(ctx context.Context, learnerID, quizID string) []entity.AttemptHistoryEntry {
	entries, err := s.gateway.FetchHistory(ctx, learnerID, quizID)
	if err != nil {
		log.Printf("[ResultService] Предупреждение: история для пользователя %s по тесту %s недоступна: %v",
			learnerID, quizID, err)
		return []entity.AttemptHistoryEntry{}
	}
	return entries
}

// Summarize считает сводку по списку попыток
func Summarize(entries []entity.AttemptHistoryEntry) HistorySummary {
	summary := HistorySummary{Attempts: len(entries)}
	if len(entries) == 0 {
		return summary
	}

	var total float64
	for i := range entries {
		score := entries[i].Score
		total += score
		if score > summary.BestScore {
			summary.BestScore = score
		}
	}
	summary.AverageScore = total / float64(len(entries))
	return summary
}
