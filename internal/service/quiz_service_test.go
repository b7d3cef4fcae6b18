package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
	redisRepo "github.com/yourusername/qa-session-api/internal/repository/redis"
)

// ============================================================================
// Моки для QuizService
// ============================================================================

// MockQuizSource реализует repository.QuizSource
type MockQuizSource struct {
	mock.Mock
}

func (m *MockQuizSource) FetchQuiz(ctx context.Context, quizID string) (*entity.QuizDefinition, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizDefinition), args.Error(1)
}

func (m *MockQuizSource) FetchQuizzesByArticle(ctx context.Context, articleID string) ([]*entity.QuizDefinition, error) {
	args := m.Called(ctx, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.QuizDefinition), args.Error(1)
}

// createTestQuizService поднимает сервис поверх miniredis
func createTestQuizService(t *testing.T, source *MockQuizSource) *QuizService {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mini.Addr()}})
	t.Cleanup(func() { client.Close() })

	cache, err := redisRepo.NewCacheRepo(client)
	require.NoError(t, err)
	return NewQuizService(source, cache, 10*time.Minute)
}

func sampleDefinition() *entity.QuizDefinition {
	return &entity.QuizDefinition{
		ID:        "quiz-1",
		ArticleID: "article-1",
		Questions: []entity.Question{
			{
				ID:   "q-1",
				Text: "Вопрос",
				Options: map[entity.OptionKey]string{
					entity.OptionA: "a", entity.OptionB: "b", entity.OptionC: "c", entity.OptionD: "d",
				},
			},
		},
	}
}

// ============================================================================
// Тесты для QuizService
// ============================================================================

func TestQuizService_GetQuiz_CacheMissThenHit(t *testing.T) {
	// Arrange
	mockSource := new(MockQuizSource)
	mockSource.On("FetchQuiz", mock.Anything, "quiz-1").Return(sampleDefinition(), nil)
	quizService := createTestQuizService(t, mockSource)

	// Act: первый вызов идёт к бэкенду, второй - из кеша
	first, err := quizService.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	second, err := quizService.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Questions[0].Options, second.Questions[0].Options)
	mockSource.AssertNumberOfCalls(t, "FetchQuiz", 1)
}

func TestQuizService_GetQuiz_NotFoundIsNotCached(t *testing.T) {
	// Arrange
	mockSource := new(MockQuizSource)
	mockSource.On("FetchQuiz", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)
	quizService := createTestQuizService(t, mockSource)

	// Act
	_, err1 := quizService.GetQuiz(context.Background(), "missing")
	_, err2 := quizService.GetQuiz(context.Background(), "missing")

	// Assert: оба вызова дошли до бэкенда - отрицательный результат не кешируется
	assert.ErrorIs(t, err1, apperrors.ErrNotFound)
	assert.ErrorIs(t, err2, apperrors.ErrNotFound)
	mockSource.AssertNumberOfCalls(t, "FetchQuiz", 2)
}

func TestQuizService_GetQuiz_EmptyID(t *testing.T) {
	// Arrange
	quizService := createTestQuizService(t, new(MockQuizSource))

	// Act
	_, err := quizService.GetQuiz(context.Background(), "")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_Invalidate_ForcesRefetch(t *testing.T) {
	// Arrange
	mockSource := new(MockQuizSource)
	mockSource.On("FetchQuiz", mock.Anything, "quiz-1").Return(sampleDefinition(), nil)
	quizService := createTestQuizService(t, mockSource)

	_, err := quizService.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)

	// Act
	require.NoError(t, quizService.Invalidate("quiz-1"))
	_, err = quizService.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)

	// Assert: после инвалидации пришлось сходить к бэкенду ещё раз
	mockSource.AssertNumberOfCalls(t, "FetchQuiz", 2)
}

func TestQuizService_GetQuizzesByArticle_Passthrough(t *testing.T) {
	// Arrange
	mockSource := new(MockQuizSource)
	mockSource.On("FetchQuizzesByArticle", mock.Anything, "article-1").
		Return([]*entity.QuizDefinition{sampleDefinition()}, nil)
	quizService := createTestQuizService(t, mockSource)

	// Act
	defs, err := quizService.GetQuizzesByArticle(context.Background(), "article-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "quiz-1", defs[0].ID)
}
