package repository

import (
	"context"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
)

// QuizSource определяет доступ к банку вопросов контент-бэкенда.
// Реализация - REST-клиент; сетевые сбои приходят как apperrors.ErrUnavailable,
// отсутствующий тест - как apperrors.ErrNotFound.
type QuizSource interface {
	FetchQuiz(ctx context.Context, quizID string) (*entity.QuizDefinition, error)
	FetchQuizzesByArticle(ctx context.Context, articleID string) ([]*entity.QuizDefinition, error)
}

// AttemptGateway определяет доступ к бэкенду результатов: отправка попытки на
// оценку и чтение истории. Перевод словаря A|B|C|D в проводной формат - забота
// реализации, сессионный слой проводного словаря не знает.
type AttemptGateway interface {
	SubmitAttempt(ctx context.Context, quizID, learnerID string, answers map[string]entity.OptionKey, timeTakenSeconds int) (*entity.GradedAttempt, error)
	FetchHistory(ctx context.Context, learnerID, quizID string) ([]entity.AttemptHistoryEntry, error)
}
