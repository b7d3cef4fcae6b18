package websocket

import (
	"sync"
)

// Event - событие сессии, доставляемое подписанным представлениям
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broker раздаёт события сессий подписчикам. Один подписчик - одно
// WebSocket-соединение представления; подписки ключуются ID сессии.
// Реализует session.EventPublisher.
type Broker struct {
	mu         sync.RWMutex
	subs       map[string]map[chan Event]struct{}
	bufferSize int
}

// NewBroker создает новый брокер событий сессий
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Broker{
		subs:       make(map[string]map[chan Event]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe подписывает на события сессии. Возвращённая функция отменяет
// подписку и закрывает канал; вызывать её обязан подписчик (defer в обработчике).
func (b *Broker) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, b.bufferSize)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[sessionID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish доставляет событие всем подписчикам сессии. Медленный подписчик
// с переполненным буфером событие теряет - тики идут каждую секунду, и
// следующее состояние перекроет пропущенное.
func (b *Broker) Publish(sessionID string, eventType string, data interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[sessionID] {
		select {
		case ch <- Event{Type: eventType, Data: data}:
		default:
		}
	}
}
