package entity

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// Статусы сессии прохождения теста
const (
	SessionStatusNotStarted = "not_started"
	SessionStatusInProgress = "in_progress"
	SessionStatusSubmitting = "submitting"
	SessionStatusCompleted  = "completed"
	SessionStatusAbandoned  = "abandoned"
)

// QuizSession представляет одну попытку прохождения теста одним пользователем.
// Сессия принадлежит создавшему её представлению и после завершения не переиспользуется:
// повторное прохождение - это новая сессия, а не «воскрешение» старой.
// Все переходы защищены внутренним мьютексом; снаружи состояние доступно
// только через методы и снапшоты.
type QuizSession struct {
	ID        string
	QuizID    string
	LearnerID string

	mu sync.Mutex

	// Перемутация вопросов, фиксируется на время сессии при Start()
	questions []Question
	// Исходный порядок из определения теста; Start() тасует заново каждый раз
	source []Question

	currentIndex     int
	answers          map[string]OptionKey
	remainingSeconds int
	allottedSeconds  int
	status           string
	createdAt        time.Time
	startedAt        time.Time
	// Момент перехода в completed/abandoned; точка отсчёта удержания в реестре
	terminalAt time.Time

	// Результат, полученный от бэкенда после успешной отправки
	attempt *GradedAttempt

	rnd *rand.Rand
}

// SessionSnapshot - неизменяемый срез состояния сессии для DTO и событий
type SessionSnapshot struct {
	ID               string
	QuizID           string
	LearnerID        string
	Status           string
	CurrentIndex     int
	RemainingSeconds int
	AllottedSeconds  int
	AnsweredCount    int
	Questions        []Question
	Answers          map[string]OptionKey
}

// NewQuizSession создает новую сессию в статусе not_started.
// rnd передаётся явно, чтобы тесты могли зафиксировать источник случайности.
func NewQuizSession(id string, def *QuizDefinition, learnerID string, rnd *rand.Rand) *QuizSession {
	source := make([]Question, len(def.Questions))
	copy(source, def.Questions)
	return &QuizSession{
		ID:        id,
		QuizID:    def.ID,
		LearnerID: learnerID,
		source:    source,
		questions: source,
		answers:   make(map[string]OptionKey),
		status:    SessionStatusNotStarted,
		createdAt: time.Now(),
		rnd:       rnd,
	}
}

// Start переводит сессию в in_progress: заново тасует вопросы (Фишер-Йетс),
// сбрасывает указатель и ответы, заводит часы из расчёта secondsPerQuestion на вопрос.
// Повторный Start() на живой сессии не разрешён - повторное прохождение
// оформляется новой сессией.
func (s *QuizSession) Start(secondsPerQuestion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SessionStatusNotStarted {
		return fmt.Errorf("session %s already started: %w", s.ID, apperrors.ErrConflict)
	}

	shuffled := make([]Question, len(s.source))
	copy(shuffled, s.source)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	s.questions = shuffled
	s.currentIndex = 0
	s.answers = make(map[string]OptionKey)
	s.allottedSeconds = len(shuffled) * secondsPerQuestion
	s.remainingSeconds = s.allottedSeconds
	s.status = SessionStatusInProgress
	s.startedAt = time.Now()
	return nil
}

// SelectAnswer записывает выбранный вариант для вопроса. Идемпотентно:
// повторный выбор перезаписывает предыдущий. Вопрос вне сессии - внутренний
// дефект вызывающего кода, а не пользовательская ситуация.
func (s *QuizSession) SelectAnswer(questionID string, option OptionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SessionStatusInProgress {
		return fmt.Errorf("select answer in status %q: %w", s.status, apperrors.ErrInvalidState)
	}
	if !option.IsValid() {
		return fmt.Errorf("unknown option %q: %w", option, apperrors.ErrValidation)
	}
	if !s.hasQuestion(questionID) {
		return fmt.Errorf("question %q does not belong to session %s: %w", questionID, s.ID, apperrors.ErrValidation)
	}

	s.answers[questionID] = option
	return nil
}

// Next переводит указатель на следующий вопрос. У правой границы - no-op.
func (s *QuizSession) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionStatusInProgress {
		return
	}
	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
	}
}

// Previous переводит указатель на предыдущий вопрос. У левой границы - no-op.
func (s *QuizSession) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionStatusInProgress {
		return
	}
	if s.currentIndex > 0 {
		s.currentIndex--
	}
}

// Tick уменьшает счётчик на одну секунду. Возвращает остаток и признак того,
// что ИМЕННО этот тик исчерпал время (переход 1 -> 0) - авто-отправка должна
// сработать ровно один раз. Вне in_progress часы заморожены: это в том числе
// фиксирует политику «во время неудачной отправки счётчик не идёт».
func (s *QuizSession) Tick() (remaining int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SessionStatusInProgress || s.remainingSeconds <= 0 {
		return s.remainingSeconds, false
	}
	s.remainingSeconds--
	return s.remainingSeconds, s.remainingSeconds == 0
}

// BeginSubmit захватывает одноразовую «защёлку» отправки: переводит сессию в
// submitting и возвращает снапшот ответов и затраченного времени. Повторный
// вызов, пока отправка в полёте, отклоняется с ErrInvalidState - быстрый
// двойной клик и гонка авто-отправки с ручной безопасны по построению.
func (s *QuizSession) BeginSubmit() (answers map[string]OptionKey, timeTakenSeconds int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case SessionStatusInProgress:
		// Единственный разрешённый вход
	case SessionStatusSubmitting:
		return nil, 0, fmt.Errorf("submit already in flight for session %s: %w", s.ID, apperrors.ErrInvalidState)
	default:
		return nil, 0, fmt.Errorf("submit in status %q: %w", s.status, apperrors.ErrInvalidState)
	}

	s.status = SessionStatusSubmitting

	snapshot := make(map[string]OptionKey, len(s.answers))
	for id, opt := range s.answers {
		snapshot[id] = opt
	}
	return snapshot, s.allottedSeconds - s.remainingSeconds, nil
}

// CompleteSubmit фиксирует успешную отправку: сессия переходит в терминальный
// completed, результат сохраняется для последующего чтения представлением.
func (s *QuizSession) CompleteSubmit(attempt *GradedAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionStatusSubmitting {
		return
	}
	s.attempt = attempt
	s.status = SessionStatusCompleted
	s.terminalAt = time.Now()
}

// FailSubmit откатывает неудачную отправку: статус возвращается в in_progress,
// ответы и остаток времени сохранены ровно такими, какими были до попытки.
func (s *QuizSession) FailSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionStatusSubmitting {
		return
	}
	s.status = SessionStatusInProgress
}

// Abandon переводит сессию в терминальный abandoned (пользователь ушёл со страницы).
// Для завершённой сессии - no-op.
func (s *QuizSession) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case SessionStatusCompleted, SessionStatusAbandoned:
		return
	}
	s.status = SessionStatusAbandoned
	s.terminalAt = time.Now()
}

// Evictable сообщает, можно ли убрать сессию из реестра: терминальная сессия
// держится ещё retention после перехода (чтобы представление успело прочитать
// результат), созданная, но так и не запущенная - idle после создания.
// Живая сессия (in_progress/submitting) не выметается никогда.
func (s *QuizSession) Evictable(now time.Time, retention, idle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case SessionStatusCompleted, SessionStatusAbandoned:
		return now.Sub(s.terminalAt) >= retention
	case SessionStatusNotStarted:
		return now.Sub(s.createdAt) >= idle
	}
	return false
}

// Status возвращает текущий статус сессии
func (s *QuizSession) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Attempt возвращает результат попытки после завершения сессии (nil до того)
func (s *QuizSession) Attempt() *GradedAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Snapshot возвращает срез состояния для DTO и событий WebSocket
func (s *QuizSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]Question, len(s.questions))
	copy(questions, s.questions)
	answers := make(map[string]OptionKey, len(s.answers))
	for id, opt := range s.answers {
		answers[id] = opt
	}

	return SessionSnapshot{
		ID:               s.ID,
		QuizID:           s.QuizID,
		LearnerID:        s.LearnerID,
		Status:           s.status,
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: s.remainingSeconds,
		AllottedSeconds:  s.allottedSeconds,
		AnsweredCount:    len(answers),
		Questions:        questions,
		Answers:          answers,
	}
}

func (s *QuizSession) hasQuestion(questionID string) bool {
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			return true
		}
	}
	return false
}
