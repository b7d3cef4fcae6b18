package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesSubscriber(t *testing.T) {
	// Arrange
	broker := NewBroker(4)
	ch, cancel := broker.Subscribe("sess-1")
	defer cancel()

	// Act
	broker.Publish("sess-1", "session:tick", map[string]interface{}{"remaining_seconds": 42})

	// Assert
	event := <-ch
	assert.Equal(t, "session:tick", event.Type)
}

func TestBroker_SubscribersAreIsolatedBySession(t *testing.T) {
	// Arrange
	broker := NewBroker(4)
	ch1, cancel1 := broker.Subscribe("sess-1")
	defer cancel1()
	ch2, cancel2 := broker.Subscribe("sess-2")
	defer cancel2()

	// Act: событие только для первой сессии
	broker.Publish("sess-1", "session:started", nil)

	// Assert
	event := <-ch1
	assert.Equal(t, "session:started", event.Type)
	assert.Empty(t, ch2, "Подписчик чужой сессии ничего не получает")
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	// Arrange
	broker := NewBroker(4)
	ch, cancel := broker.Subscribe("sess-1")

	// Act
	cancel()
	cancel() // повторная отмена безопасна

	// Assert: канал закрыт, публикация после отмены не паникует
	_, open := <-ch
	assert.False(t, open)
	broker.Publish("sess-1", "session:tick", nil)
}

func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	// Arrange: буфер на два события, подписчик не читает
	broker := NewBroker(2)
	ch, cancel := broker.Subscribe("sess-1")
	defer cancel()

	// Act: публикуем больше, чем влезает
	for i := 0; i < 10; i++ {
		broker.Publish("sess-1", "session:tick", i)
	}

	// Assert: Publish не заблокировался, в буфере первые два события
	require.Len(t, ch, 2)
	first := <-ch
	assert.Equal(t, 0, first.Data)
}
