package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
)

func sampleResult(correct, selected entity.OptionKey, isCorrect bool) *entity.QuestionResult {
	return &entity.QuestionResult{
		QuestionID: "q-1",
		Text:       "Вопрос",
		Options: map[entity.OptionKey]string{
			entity.OptionA: "<i>Первый</i>",
			entity.OptionB: "Второй",
			entity.OptionC: "Третий",
			entity.OptionD: "Четвёртый",
		},
		CorrectOption:  correct,
		SelectedOption: selected,
		IsCorrect:      isCorrect,
	}
}

func viewByKey(t *testing.T, views []OptionView, key entity.OptionKey) OptionView {
	t.Helper()
	for _, v := range views {
		if v.Key == key {
			return v
		}
	}
	t.Fatalf("вариант %s не найден", key)
	return OptionView{}
}

func TestBuildOptionViews_WrongAnswer(t *testing.T) {
	// Arrange: правильный B, выбран C
	result := sampleResult(entity.OptionB, entity.OptionC, false)

	// Act
	views := BuildOptionViews(result)

	// Assert: порядок фиксированный A..D
	require.Len(t, views, 4)
	assert.Equal(t, entity.OptionA, views[0].Key)
	assert.Equal(t, entity.OptionD, views[3].Key)

	// Три признака независимы: правильный вариант подсвечен, выбранный помечен,
	// «выбран и правилен» не истинен ни для одного
	b := viewByKey(t, views, entity.OptionB)
	assert.True(t, b.IsCorrectOption)
	assert.False(t, b.IsSelectedOption)
	assert.False(t, b.IsSelectedCorrect)

	c := viewByKey(t, views, entity.OptionC)
	assert.False(t, c.IsCorrectOption)
	assert.True(t, c.IsSelectedOption)
	assert.False(t, c.IsSelectedCorrect)

	a := viewByKey(t, views, entity.OptionA)
	assert.False(t, a.IsCorrectOption)
	assert.False(t, a.IsSelectedOption)
}

func TestBuildOptionViews_CorrectAnswer(t *testing.T) {
	// Arrange: правильный и выбранный совпадают
	result := sampleResult(entity.OptionB, entity.OptionB, true)

	// Act
	views := BuildOptionViews(result)

	// Assert
	b := viewByKey(t, views, entity.OptionB)
	assert.True(t, b.IsCorrectOption)
	assert.True(t, b.IsSelectedOption)
	assert.True(t, b.IsSelectedCorrect)
}

func TestBuildOptionViews_SkippedQuestion(t *testing.T) {
	// Arrange: вопрос пропущен - selected пуст
	result := sampleResult(entity.OptionA, "", false)

	// Act
	views := BuildOptionViews(result)

	// Assert: правильный подсвечен, выбранного нет вообще
	a := viewByKey(t, views, entity.OptionA)
	assert.True(t, a.IsCorrectOption)
	for _, v := range views {
		assert.False(t, v.IsSelectedOption, "У пропущенного вопроса нет выбранного варианта")
		assert.False(t, v.IsSelectedCorrect)
	}
}

func TestBuildOptionViews_TextIsOpaque(t *testing.T) {
	// Arrange: HTML в тексте не влияет на признаки - сравниваются ключи
	result := sampleResult(entity.OptionA, entity.OptionA, true)

	// Act
	views := BuildOptionViews(result)

	// Assert
	a := viewByKey(t, views, entity.OptionA)
	assert.Equal(t, "<i>Первый</i>", a.Text)
	assert.True(t, a.IsSelectedCorrect)
}

func TestBuildSessionOptionViews_NoCorrectnessBeforeGrading(t *testing.T) {
	// Arrange
	question := &entity.Question{
		ID: "q-1",
		Options: map[entity.OptionKey]string{
			entity.OptionA: "a", entity.OptionB: "b", entity.OptionC: "c", entity.OptionD: "d",
		},
	}

	// Act
	views := BuildSessionOptionViews(question, entity.OptionC)

	// Assert: до оценки существует только признак выбранности
	require.Len(t, views, 4)
	for _, v := range views {
		assert.False(t, v.IsCorrectOption)
		assert.False(t, v.IsSelectedCorrect)
		assert.Equal(t, v.Key == entity.OptionC, v.IsSelectedOption)
	}
}
