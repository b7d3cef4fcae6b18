package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/qa-session-api/internal/service/session"
	"github.com/yourusername/qa-session-api/internal/websocket"
)

// WSHandler транслирует события сессии (тики часов, авто-отправку, завершение)
// в WebSocket-соединение представления, чтобы клиент не опрашивал состояние.
type WSHandler struct {
	broker  *websocket.Broker
	manager *session.Manager

	allowedOrigins []string
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(broker *websocket.Broker, manager *session.Manager, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		broker:         broker,
		manager:        manager,
		allowedOrigins: allowedOrigins,
	}
}

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

func (h *WSHandler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Пустой Origin - не браузерный клиент, пропускаем
			if origin == "" {
				return true
			}

			// Список разрешенных origin синхронизирован с CORS в main.go
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}

			log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
			return false
		},
	}
}

// StreamSession обрабатывает GET /ws/sessions/:id: подписывает соединение на
// события сессии и пишет их клиенту до завершения сессии или обрыва связи.
func (h *WSHandler) StreamSession(c *gin.Context) {
	id := c.GetString("sessionID")

	// Владение сессией проверяем до апгрейда соединения
	if _, err := h.manager.Get(id, c.GetString("learner_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket: upgrade failed for session %s: %v", id, err)
		return
	}
	defer conn.Close()

	events, cancel := h.broker.Subscribe(id)
	defer cancel()

	// Читатель нужен только чтобы заметить закрытие соединения клиентом
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("WebSocket: write failed for session %s: %v", id, err)
				return
			}
			// После терминального события поток закрывается сервером
			if event.Type == session.EventCompleted || event.Type == session.EventAbandoned {
				conn.WriteMessage(gorillaws.CloseMessage,
					gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, event.Type))
				return
			}
		}
	}
}
