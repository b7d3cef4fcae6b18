package helper

import (
	"github.com/yourusername/qa-session-api/internal/domain/entity"
)

// OptionView представляет вариант ответа в разборе оценённой попытки.
// Три независимых признака подсветки вычисляются из ключей вариантов,
// а не из сравнения текстов - текст может содержать произвольный HTML.
type OptionView struct {
	Key               entity.OptionKey `json:"key"`
	Text              string           `json:"text"`
	IsCorrectOption   bool             `json:"is_correct_option"`
	IsSelectedOption  bool             `json:"is_selected_option"`
	IsSelectedCorrect bool             `json:"is_selected_correct"`
}

// BuildOptionViews раскладывает варианты вопроса в фиксированном порядке A..D
// с признаками подсветки для результата
func BuildOptionViews(result *entity.QuestionResult) []OptionView {
	views := make([]OptionView, 0, len(entity.OptionKeys))
	for _, key := range entity.OptionKeys {
		isCorrect := key == result.CorrectOption
		isSelected := result.Answered() && key == result.SelectedOption
		views = append(views, OptionView{
			Key:               key,
			Text:              result.Options[key],
			IsCorrectOption:   isCorrect,
			IsSelectedOption:  isSelected,
			IsSelectedCorrect: isCorrect && isSelected,
		})
	}
	return views
}

// BuildSessionOptionViews раскладывает варианты вопроса идущей сессии:
// до оценки никаких признаков правильности не существует, только выбранность
func BuildSessionOptionViews(q *entity.Question, selected entity.OptionKey) []OptionView {
	views := make([]OptionView, 0, len(entity.OptionKeys))
	for _, key := range entity.OptionKeys {
		views = append(views, OptionView{
			Key:              key,
			Text:             q.Options[key],
			IsSelectedOption: selected != "" && key == selected,
		})
	}
	return views
}
