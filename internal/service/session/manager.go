package session

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// Направления навигации по вопросам
const (
	NavigateNext     = "next"
	NavigatePrevious = "previous"
)

// Manager владеет жизненным циклом сессий прохождения тестов: реестром живых
// сессий, часами каждой сессии и единственным путём отправки попытки.
// Сессия принадлежит одному представлению; после completed/abandoned она
// удаляется из реестра и не переиспользуется.
type Manager struct {
	// Настройки
	config *Config

	// Зависимости
	deps *Dependencies

	// Внутреннее состояние
	mu       sync.RWMutex
	sessions map[string]*entity.QuizSession

	// Функции отмены часов по ID сессии
	clockCancels sync.Map // map[string]context.CancelFunc

	// Отмена горутины уборки реестра
	janitorCancel context.CancelFunc
}

// NewManager создает новый контроллер сессий и поднимает горутину уборки
// реестра (если SweepInterval положителен).
func NewManager(config *Config, deps *Dependencies) *Manager {
	m := &Manager{
		config:   config,
		deps:     deps,
		sessions: make(map[string]*entity.QuizSession),
	}
	if config.SweepInterval > 0 {
		janitorCtx, cancel := context.WithCancel(context.Background())
		m.janitorCancel = cancel
		go m.runJanitor(janitorCtx)
	}
	return m
}

// CreateSession создает новую сессию для пары (тест, пользователь).
// Сессия не стартует, пока представление явно не вызовет Start: загрузка
// определения - единственное, что блокирует старт.
func (m *Manager) CreateSession(ctx context.Context, quizID, learnerID string) (entity.SessionSnapshot, error) {
	if learnerID == "" {
		return entity.SessionSnapshot{}, fmt.Errorf("learner id is required: %w", apperrors.ErrValidation)
	}

	def, err := m.deps.Quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	sess := entity.NewQuizSession(uuid.NewString(), def, learnerID, rnd)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.Printf("[SessionManager] Сессия %s создана: тест %s, пользователь %s, вопросов %d",
		sess.ID, quizID, learnerID, def.QuestionCount())
	return sess.Snapshot(), nil
}

// Start запускает сессию: тасует вопросы, заводит часы и поднимает
// горутину тикера, привязанную к отменяемому контексту. Часы живут дольше
// HTTP-запроса, поэтому контекст тикера не наследуется от запроса.
func (m *Manager) Start(sessionID, learnerID string) (entity.SessionSnapshot, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	if err := sess.Start(m.config.SecondsPerQuestion); err != nil {
		return entity.SessionSnapshot{}, err
	}

	clockCtx, cancel := context.WithCancel(context.Background())
	m.clockCancels.Store(sess.ID, cancel)
	go m.runClock(clockCtx, sess)

	snapshot := sess.Snapshot()
	m.publish(sess.ID, EventStarted, map[string]interface{}{
		"session_id":        sess.ID,
		"remaining_seconds": snapshot.RemainingSeconds,
		"question_count":    len(snapshot.Questions),
	})
	log.Printf("[SessionManager] Сессия %s запущена: %d вопросов, %d секунд",
		sess.ID, len(snapshot.Questions), snapshot.RemainingSeconds)
	return snapshot, nil
}

// SelectAnswer записывает выбранный вариант для вопроса сессии
func (m *Manager) SelectAnswer(sessionID, learnerID, questionID string, option entity.OptionKey) (entity.SessionSnapshot, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}
	if err := sess.SelectAnswer(questionID, option); err != nil {
		return entity.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Navigate перемещает указатель текущего вопроса; выход за границы - no-op
func (m *Manager) Navigate(sessionID, learnerID, direction string) (entity.SessionSnapshot, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	switch direction {
	case NavigateNext:
		sess.Next()
	case NavigatePrevious:
		sess.Previous()
	default:
		return entity.SessionSnapshot{}, fmt.Errorf("unknown navigation direction %q: %w", direction, apperrors.ErrValidation)
	}
	return sess.Snapshot(), nil
}

// Get возвращает снапшот сессии
func (m *Manager) Get(sessionID, learnerID string) (entity.SessionSnapshot, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Submit выполняет ручную отправку попытки
func (m *Manager) Submit(ctx context.Context, sessionID, learnerID string) (*entity.GradedAttempt, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	return m.submit(ctx, sess, "manual")
}

// Result возвращает оценённую попытку завершённой сессии
func (m *Manager) Result(sessionID, learnerID string) (*entity.GradedAttempt, error) {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return nil, err
	}
	attempt := sess.Attempt()
	if attempt == nil {
		return nil, fmt.Errorf("session %s has no graded attempt yet: %w", sessionID, apperrors.ErrInvalidState)
	}
	return attempt, nil
}

// Abandon помечает сессию брошенной, останавливает часы и удаляет её из реестра
func (m *Manager) Abandon(sessionID, learnerID string) error {
	sess, err := m.lookup(sessionID, learnerID)
	if err != nil {
		return err
	}

	sess.Abandon()
	m.stopClock(sessionID)
	m.remove(sessionID)
	m.publish(sessionID, EventAbandoned, map[string]interface{}{"session_id": sessionID})
	log.Printf("[SessionManager] Сессия %s брошена пользователем %s", sessionID, learnerID)
	return nil
}

// submit - единственный путь отправки, общий для ручного вызова и авто-отправки
// по истечении времени. Одновременная вторая отправка отсекается защёлкой
// статуса в BeginSubmit (single-flight per session).
func (m *Manager) submit(ctx context.Context, sess *entity.QuizSession, trigger string) (*entity.GradedAttempt, error) {
	answers, timeTaken, err := sess.BeginSubmit()
	if err != nil {
		return nil, err
	}

	log.Printf("[SessionManager] Отправка попытки по сессии %s (%s): отвечено %d, затрачено %d c",
		sess.ID, trigger, len(answers), timeTaken)

	submitCtx, cancel := context.WithTimeout(ctx, m.config.SubmitTimeout)
	defer cancel()

	attempt, err := m.deps.Results.SubmitAttempt(submitCtx, sess.QuizID, sess.LearnerID, answers, timeTaken)
	if err != nil {
		// Откат: ответы и остаток времени сохранены, пользователь может повторить
		sess.FailSubmit()
		m.publish(sess.ID, EventSubmitFailed, map[string]interface{}{
			"session_id": sess.ID,
			"trigger":    trigger,
		})
		log.Printf("[SessionManager] Отправка по сессии %s не удалась (%s): %v", sess.ID, trigger, err)
		return nil, err
	}

	sess.CompleteSubmit(attempt)
	m.stopClock(sess.ID)
	m.publish(sess.ID, EventCompleted, map[string]interface{}{
		"session_id":      sess.ID,
		"score":           attempt.Score,
		"correct_count":   attempt.CorrectCount,
		"total_questions": attempt.TotalQuestions,
	})
	log.Printf("[SessionManager] Сессия %s завершена: %.1f%%", sess.ID, attempt.Score)
	return attempt, nil
}

// runClock - горутина часов одной сессии: один тик в TickInterval,
// пока контекст не отменён. Отмена происходит на каждом терминальном переходе.
func (m *Manager) runClock(ctx context.Context, sess *entity.QuizSession) {
	ticker := time.NewTicker(m.config.TickInterval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = m.advanceClock(ctx, sess, last)
		}
	}
}

// advanceClock выполняет один тик часов и, если именно этот тик исчерпал
// время, запускает авто-отправку. Вынесен из runClock, чтобы тесты могли
// промотать часы без реального ожидания.
func (m *Manager) advanceClock(ctx context.Context, sess *entity.QuizSession, lastRemaining int) int {
	remaining, expired := sess.Tick()

	if remaining != lastRemaining {
		m.publish(sess.ID, EventTick, map[string]interface{}{
			"session_id":        sess.ID,
			"remaining_seconds": remaining,
		})
	}

	if expired {
		log.Printf("[SessionManager] Время сессии %s истекло, авто-отправка", sess.ID)
		m.publish(sess.ID, EventAutoSubmit, map[string]interface{}{"session_id": sess.ID})
		if _, err := m.submit(ctx, sess, "auto"); err != nil {
			// Сессия осталась in_progress с нулём на часах; пользователь
			// может отправить вручную, когда бэкенд оживёт
			log.Printf("[SessionManager] Авто-отправка по сессии %s не удалась: %v", sess.ID, err)
		}
	}
	return remaining
}

func (m *Manager) lookup(sessionID, learnerID string) (*entity.QuizSession, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, apperrors.ErrNotFound)
	}
	if sess.LearnerID != learnerID {
		// Чужая сессия неотличима от несуществующей
		return nil, fmt.Errorf("session %q: %w", sessionID, apperrors.ErrNotFound)
	}
	return sess, nil
}

// runJanitor - горутина уборки реестра: терминальные сессии выметаются после
// ResultRetention, так и не запущенные - после IdleTimeout. Без уборки реестр
// долгоживущего процесса рос бы на каждую завершённую попытку.
func (m *Manager) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

// sweep выполняет один проход уборки. Вынесен из runJanitor, чтобы тесты
// могли вызвать уборку с произвольным «сейчас» без реального ожидания.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.Evictable(now, m.config.ResultRetention, m.config.IdleTimeout) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SessionManager] Уборка реестра: удалено %d сессий, осталось %d", removed, len(m.sessions))
	}
	return removed
}

func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

func (m *Manager) stopClock(sessionID string) {
	cancel, ok := m.clockCancels.Load(sessionID)
	if !ok {
		return
	}
	cancel.(context.CancelFunc)()
	m.clockCancels.Delete(sessionID)
}

// Shutdown останавливает уборку реестра и часы всех активных сессий.
// Вызывается при завершении работы сервера.
func (m *Manager) Shutdown() {
	if m.janitorCancel != nil {
		m.janitorCancel()
	}
	m.clockCancels.Range(func(key, value interface{}) bool {
		value.(context.CancelFunc)()
		m.clockCancels.Delete(key)
		return true
	})
}

func (m *Manager) publish(sessionID, eventType string, data interface{}) {
	if m.deps.Events == nil {
		return
	}
	m.deps.Events.Publish(sessionID, eventType, data)
}
