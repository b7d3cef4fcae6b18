package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionKey_IsValid(t *testing.T) {
	// Act & Assert: валидные ключи
	assert.True(t, OptionA.IsValid())
	assert.True(t, OptionB.IsValid())
	assert.True(t, OptionC.IsValid())
	assert.True(t, OptionD.IsValid())

	// Assert: невалидные ключи
	assert.False(t, OptionKey("").IsValid())
	assert.False(t, OptionKey("E").IsValid())
	assert.False(t, OptionKey("a").IsValid(), "Ключи регистрозависимы")
	assert.False(t, OptionKey("answer_a").IsValid(), "Проводные ключи во внутренний словарь не входят")
}

func TestQuizDefinition_HasQuestion(t *testing.T) {
	// Arrange
	def := &QuizDefinition{
		ID: "quiz-1",
		Questions: []Question{
			{ID: "q-1", Text: "Первый"},
			{ID: "q-2", Text: "Второй"},
		},
	}

	// Act & Assert
	assert.True(t, def.HasQuestion("q-1"))
	assert.True(t, def.HasQuestion("q-2"))
	assert.False(t, def.HasQuestion("q-3"))
	assert.Equal(t, 2, def.QuestionCount())
}
