package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/qa-session-api/internal/handler/dto"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
	"github.com/yourusername/qa-session-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с тестами вне сессии:
// выбор теста для статьи и история прошлых попыток.
type QuizHandler struct {
	quizService   *service.QuizService
	resultService *service.ResultService
}

// NewQuizHandler создает новый обработчик тестов
func NewQuizHandler(quizService *service.QuizService, resultService *service.ResultService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		resultService: resultService,
	}
}

// GetQuizzesByArticle возвращает тесты статьи: GET /api/articles/:id/quizzes.
// Список отдаётся без вопросов - вопросы клиент получает уже внутри сессии.
func (h *QuizHandler) GetQuizzesByArticle(c *gin.Context) {
	articleID := c.GetString("articleID")

	defs, err := h.quizService.GetQuizzesByArticle(c.Request.Context(), articleID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": dto.NewQuizSummaries(defs)})
}

// GetHistory возвращает историю попыток пользователя по тесту:
// GET /api/quizzes/:id/history. Недоступность истории деградирует до пустого
// списка внутри сервиса - этот маршрут не отдаёт 5xx из-за бэкенда результатов.
func (h *QuizHandler) GetHistory(c *gin.Context) {
	quizID := c.GetString("quizID")

	entries := h.resultService.GetHistory(c.Request.Context(), c.GetString("learner_id"), quizID)

	c.JSON(http.StatusOK, gin.H{
		"history": dto.NewHistoryEntries(entries),
		"summary": service.Summarize(entries),
	})
}

// handleQuizError отображает ошибки доменного слоя на HTTP-статусы
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Test unavailable"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend temporarily unavailable, please retry"})
	default:
		log.Printf("[QuizHandler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
