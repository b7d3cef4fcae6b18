package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/qa-session-api/internal/domain/entity"
	"github.com/yourusername/qa-session-api/internal/handler/dto"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
	"github.com/yourusername/qa-session-api/internal/service/session"
)

// SessionHandler обрабатывает запросы жизненного цикла сессии прохождения теста.
// Это единственная реализация контроллера сессий; компонент, модальное окно и
// страница истории - тонкие представления поверх одного и того же API.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// CreateSessionRequest представляет запрос на создание сессии
type CreateSessionRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

// SelectAnswerRequest представляет запрос на выбор варианта ответа
type SelectAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Option     string `json:"option" binding:"required,oneof=A B C D"`
}

// NavigateRequest представляет запрос на перемещение по вопросам
type NavigateRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next previous"`
}

// CreateSession создает сессию для теста: POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.manager.CreateSession(c.Request.Context(), req.QuizID, learnerID(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(snapshot, true))
}

// StartSession запускает сессию: POST /api/sessions/:id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	snapshot, err := h.manager.Start(sessionID(c), learnerID(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(snapshot, true))
}

// GetSession возвращает состояние сессии: GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	snapshot, err := h.manager.Get(sessionID(c), learnerID(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(snapshot, true))
}

// SelectAnswer записывает выбор варианта: PUT /api/sessions/:id/answer
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.manager.SelectAnswer(sessionID(c), learnerID(c), req.QuestionID, entity.OptionKey(req.Option))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(snapshot, false))
}

// Navigate перемещает указатель текущего вопроса: PUT /api/sessions/:id/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.manager.Navigate(sessionID(c), learnerID(c), req.Direction)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(snapshot, false))
}

// SubmitSession отправляет попытку на оценку: POST /api/sessions/:id/submit.
// Повторный вызов, пока отправка в полёте, возвращает 409 и ничего не дублирует.
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	attempt, err := h.manager.Submit(c.Request.Context(), sessionID(c), learnerID(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// GetResult возвращает разбор завершённой сессии: GET /api/sessions/:id/result
func (h *SessionHandler) GetResult(c *gin.Context) {
	attempt, err := h.manager.Result(sessionID(c), learnerID(c))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// AbandonSession бросает сессию: DELETE /api/sessions/:id
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	if err := h.manager.Abandon(sessionID(c), learnerID(c)); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// handleSessionError отображает ошибки доменного слоя на HTTP-статусы
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Test unavailable"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnavailable):
		// Состояние сессии сохранено, клиент может повторить отправку
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend temporarily unavailable, please retry"})
	default:
		log.Printf("[SessionHandler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// learnerID извлекает ID пользователя, установленный auth middleware
func learnerID(c *gin.Context) string {
	return c.GetString("learner_id")
}

// sessionID извлекает ID сессии, установленный param middleware
func sessionID(c *gin.Context) string {
	return c.GetString("sessionID")
}
