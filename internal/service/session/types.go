package session

import (
	"context"
	"time"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
)

// Constants for default values
const (
	// DefaultSecondsPerQuestion - 5 минут на вопрос; общий запас сессии
	// равен количеству вопросов, умноженному на эту величину.
	DefaultSecondsPerQuestion = 300
)

// Типы событий сессии, транслируемых представлениям
const (
	EventStarted      = "session:started"
	EventTick         = "session:tick"
	EventAutoSubmit   = "session:auto_submit"
	EventSubmitFailed = "session:submit_failed"
	EventCompleted    = "session:completed"
	EventAbandoned    = "session:abandoned"
)

// Config содержит настройки контроллера сессий
type Config struct {
	// Секунд на один вопрос при расчёте общего запаса времени
	SecondsPerQuestion int

	// Интервал тика часов сессии (в бою - секунда)
	TickInterval time.Duration

	// Таймаут сетевого вызова отправки попытки
	SubmitTimeout time.Duration

	// Сколько завершённая (completed/abandoned) сессия остаётся в реестре
	// после терминального перехода; окно для чтения результата представлением
	ResultRetention time.Duration

	// Сколько созданная, но не запущенная сессия ждёт старта, прежде чем
	// будет выметена уборкой
	IdleTimeout time.Duration

	// Период уборки реестра; при нуле уборка отключена
	SweepInterval time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		SecondsPerQuestion: DefaultSecondsPerQuestion,
		TickInterval:       time.Second,
		SubmitTimeout:      30 * time.Second,
		ResultRetention:    10 * time.Minute,
		IdleTimeout:        30 * time.Minute,
		SweepInterval:      time.Minute,
	}
}

// QuizProvider определяет интерфейс загрузчика определений тестов,
// необходимый контроллеру сессий.
type QuizProvider interface {
	GetQuiz(ctx context.Context, quizID string) (*entity.QuizDefinition, error)
}

// AttemptSubmitter определяет интерфейс отправки попытки на оценку
type AttemptSubmitter interface {
	SubmitAttempt(ctx context.Context, quizID, learnerID string, answers map[string]entity.OptionKey, timeTakenSeconds int) (*entity.GradedAttempt, error)
}

// EventPublisher определяет интерфейс публикации событий сессии
// (тики часов, авто-отправка, завершение) подписанным представлениям.
type EventPublisher interface {
	Publish(sessionID string, eventType string, data interface{})
}

// Dependencies содержит зависимости контроллера сессий
type Dependencies struct {
	Quizzes QuizProvider
	Results AttemptSubmitter
	Events  EventPublisher
}
