package entity

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// ============================================================================
// Хелперы
// ============================================================================

func makeTestDefinition(questionCount int) *QuizDefinition {
	questions := make([]Question, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		questions = append(questions, Question{
			ID:   fmt.Sprintf("q-%d", i+1),
			Text: fmt.Sprintf("Вопрос %d", i+1),
			Options: map[OptionKey]string{
				OptionA: "Вариант A",
				OptionB: "Вариант B",
				OptionC: "Вариант C",
				OptionD: "Вариант D",
			},
		})
	}
	return &QuizDefinition{ID: "quiz-1", ArticleID: "article-1", Questions: questions}
}

func makeStartedSession(t *testing.T, questionCount int) *QuizSession {
	t.Helper()
	session := NewQuizSession("sess-1", makeTestDefinition(questionCount), "learner-1", rand.New(rand.NewSource(42)))
	require.NoError(t, session.Start(300))
	return session
}

// ============================================================================
// Start
// ============================================================================

func TestQuizSession_Start_Success(t *testing.T) {
	// Arrange
	session := NewQuizSession("sess-1", makeTestDefinition(3), "learner-1", rand.New(rand.NewSource(1)))

	// Act
	err := session.Start(300)

	// Assert
	require.NoError(t, err)
	snapshot := session.Snapshot()
	assert.Equal(t, SessionStatusInProgress, snapshot.Status)
	assert.Equal(t, 0, snapshot.CurrentIndex, "Сессия должна начинаться с первого вопроса")
	assert.Equal(t, 900, snapshot.AllottedSeconds, "Запас времени = 3 вопроса * 300 секунд")
	assert.Equal(t, 900, snapshot.RemainingSeconds)
	assert.Equal(t, 0, snapshot.AnsweredCount)
}

func TestQuizSession_Start_AlreadyStarted(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act
	err := session.Start(300)

	// Assert
	require.Error(t, err, "Повторный Start на живой сессии не разрешён")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestQuizSession_Start_ShufflePreservesQuestionSet(t *testing.T) {
	// Arrange
	def := makeTestDefinition(10)
	session := NewQuizSession("sess-1", def, "learner-1", rand.New(rand.NewSource(7)))

	// Act
	require.NoError(t, session.Start(300))

	// Assert: перестановка содержит ровно те же вопросы, без потерь и дублей
	snapshot := session.Snapshot()
	require.Len(t, snapshot.Questions, 10)
	seen := make(map[string]bool, 10)
	for _, q := range snapshot.Questions {
		assert.True(t, def.HasQuestion(q.ID), "Вопрос %s должен принадлежать определению", q.ID)
		assert.False(t, seen[q.ID], "Вопрос %s не должен дублироваться", q.ID)
		seen[q.ID] = true
	}
}

// ============================================================================
// SelectAnswer
// ============================================================================

func TestQuizSession_SelectAnswer_Success(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act
	err := session.SelectAnswer("q-1", OptionB)

	// Assert
	require.NoError(t, err)
	snapshot := session.Snapshot()
	assert.Equal(t, OptionB, snapshot.Answers["q-1"])
	assert.Equal(t, 1, snapshot.AnsweredCount)
}

func TestQuizSession_SelectAnswer_OverwriteIsIdempotent(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)
	require.NoError(t, session.SelectAnswer("q-1", OptionA))

	// Act: пользователь передумал
	err := session.SelectAnswer("q-1", OptionD)

	// Assert: перезапись не увеличивает счётчик отвеченных
	require.NoError(t, err)
	snapshot := session.Snapshot()
	assert.Equal(t, OptionD, snapshot.Answers["q-1"], "Должен остаться последний выбор")
	assert.Equal(t, 1, snapshot.AnsweredCount, "Счётчик отвеченных считает вопросы, а не клики")
}

func TestQuizSession_SelectAnswer_AnsweredCountGrowsPerQuestion(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act
	require.NoError(t, session.SelectAnswer("q-1", OptionA))
	require.NoError(t, session.SelectAnswer("q-1", OptionB)) // переответ
	require.NoError(t, session.SelectAnswer("q-2", OptionC))

	// Assert
	assert.Equal(t, 2, session.Snapshot().AnsweredCount)
}

func TestQuizSession_SelectAnswer_InvalidOption(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act
	err := session.SelectAnswer("q-1", OptionKey("E"))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizSession_SelectAnswer_UnknownQuestion(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act
	err := session.SelectAnswer("q-999", OptionA)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, session.Snapshot().AnsweredCount)
}

func TestQuizSession_SelectAnswer_NotInProgress(t *testing.T) {
	// Arrange: сессия создана, но не запущена
	session := NewQuizSession("sess-1", makeTestDefinition(3), "learner-1", rand.New(rand.NewSource(1)))

	// Act
	err := session.SelectAnswer("q-1", OptionA)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

// ============================================================================
// Навигация
// ============================================================================

func TestQuizSession_Navigation_ClampedAtBounds(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 3)

	// Act & Assert: у левой границы Previous - no-op
	session.Previous()
	assert.Equal(t, 0, session.Snapshot().CurrentIndex)

	// Идём вправо до упора и дальше
	session.Next()
	session.Next()
	assert.Equal(t, 2, session.Snapshot().CurrentIndex)
	session.Next()
	assert.Equal(t, 2, session.Snapshot().CurrentIndex, "У правой границы Next - no-op")

	// И обратно
	session.Previous()
	assert.Equal(t, 1, session.Snapshot().CurrentIndex)
}

// ============================================================================
// Tick
// ============================================================================

func TestQuizSession_Tick_CountsDown(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 1) // 300 секунд

	// Act
	remaining, expired := session.Tick()

	// Assert
	assert.Equal(t, 299, remaining)
	assert.False(t, expired)
}

func TestQuizSession_Tick_ExpiresExactlyOnce(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 1)

	// Act: докручиваем до нуля
	var expiredCount int
	for i := 0; i < 300; i++ {
		if _, expired := session.Tick(); expired {
			expiredCount++
		}
	}

	// Assert: признак исчерпания выдан ровно на переходе 1 -> 0
	assert.Equal(t, 1, expiredCount)

	// Дальнейшие тики заморожены на нуле и не «исчерпывают» повторно
	remaining, expired := session.Tick()
	assert.Equal(t, 0, remaining)
	assert.False(t, expired)
}

func TestQuizSession_Tick_FrozenWhileSubmitting(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 1)
	_, _, err := session.BeginSubmit()
	require.NoError(t, err)

	// Act
	remaining, expired := session.Tick()

	// Assert: во время отправки часы не идут
	assert.Equal(t, 300, remaining)
	assert.False(t, expired)
}

// ============================================================================
// Отправка: защёлка, успех, откат
// ============================================================================

func TestQuizSession_BeginSubmit_ReturnsAnswersSnapshot(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 2)
	require.NoError(t, session.SelectAnswer("q-1", OptionC))
	session.Tick()
	session.Tick()

	// Act
	answers, timeTaken, err := session.BeginSubmit()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]OptionKey{"q-1": OptionC}, answers)
	assert.Equal(t, 2, timeTaken, "Затрачено = выдано - осталось")
	assert.Equal(t, SessionStatusSubmitting, session.Status())
}

func TestQuizSession_BeginSubmit_SecondCallRejected(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 2)
	_, _, err := session.BeginSubmit()
	require.NoError(t, err)

	// Act: двойной клик по кнопке отправки
	_, _, err = session.BeginSubmit()

	// Assert
	require.Error(t, err, "Пока отправка в полёте, вторая не допускается")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestQuizSession_CompleteSubmit_TerminalState(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 2)
	_, _, err := session.BeginSubmit()
	require.NoError(t, err)
	attempt := &GradedAttempt{QuizID: "quiz-1", Score: 50, CorrectCount: 1, TotalQuestions: 2}

	// Act
	session.CompleteSubmit(attempt)

	// Assert
	assert.Equal(t, SessionStatusCompleted, session.Status())
	require.NotNil(t, session.Attempt())
	assert.Equal(t, 1, session.Attempt().CorrectCount)

	// Терминальность: повторная отправка невозможна
	_, _, err = session.BeginSubmit()
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestQuizSession_FailSubmit_PreservesState(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 2)
	require.NoError(t, session.SelectAnswer("q-1", OptionA))
	require.NoError(t, session.SelectAnswer("q-2", OptionB))
	session.Tick()
	before := session.Snapshot()

	_, _, err := session.BeginSubmit()
	require.NoError(t, err)

	// Act: бэкенд недоступен, отправка провалилась
	session.FailSubmit()

	// Assert: ответы и остаток времени ровно те же, можно отправлять снова
	after := session.Snapshot()
	assert.Equal(t, SessionStatusInProgress, after.Status)
	assert.Equal(t, before.Answers, after.Answers)
	assert.Equal(t, before.RemainingSeconds, after.RemainingSeconds)

	_, _, err = session.BeginSubmit()
	assert.NoError(t, err, "После отката ручная повторная отправка разрешена")
}

// ============================================================================
// Abandon
// ============================================================================

func TestQuizSession_Abandon(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 2)

	// Act
	session.Abandon()

	// Assert
	assert.Equal(t, SessionStatusAbandoned, session.Status())
	assert.Error(t, session.SelectAnswer("q-1", OptionA))

	_, expired := session.Tick()
	assert.False(t, expired, "Часы брошенной сессии заморожены")
}

func TestQuizSession_Abandon_CompletedIsNoop(t *testing.T) {
	// Arrange
	session := makeStartedSession(t, 1)
	_, _, err := session.BeginSubmit()
	require.NoError(t, err)
	session.CompleteSubmit(&GradedAttempt{QuizID: "quiz-1"})

	// Act
	session.Abandon()

	// Assert
	assert.Equal(t, SessionStatusCompleted, session.Status(), "Завершённую сессию нельзя «бросить»")
}

// ============================================================================
// Evictable: сроки удержания в реестре
// ============================================================================

func TestQuizSession_Evictable(t *testing.T) {
	retention := 10 * time.Minute
	idle := 30 * time.Minute

	// Живая сессия не выметается ни при каком «сейчас»
	live := makeStartedSession(t, 1)
	assert.False(t, live.Evictable(time.Now().Add(24*time.Hour), retention, idle))

	// Отправка в полёте тоже защищает от уборки
	_, _, err := live.BeginSubmit()
	require.NoError(t, err)
	assert.False(t, live.Evictable(time.Now().Add(24*time.Hour), retention, idle))

	// Завершённая сессия: внутри окна удержания остаётся, после - выметается
	live.CompleteSubmit(&GradedAttempt{QuizID: "quiz-1"})
	assert.False(t, live.Evictable(time.Now(), retention, idle), "Окно чтения результата ещё открыто")
	assert.True(t, live.Evictable(time.Now().Add(retention), retention, idle))

	// Не запущенная сессия: выметается после idle-таймаута
	fresh := NewQuizSession("sess-idle", makeTestDefinition(1), "learner-1", rand.New(rand.NewSource(7)))
	assert.False(t, fresh.Evictable(time.Now(), retention, idle))
	assert.True(t, fresh.Evictable(time.Now().Add(idle), retention, idle))
}
