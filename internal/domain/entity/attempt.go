package entity

import (
	"time"
)

// QuestionResult представляет разбор одного вопроса в оценённой попытке.
// Приходит от бэкенда результатов уже с ключом правильного ответа и пояснением.
type QuestionResult struct {
	QuestionID     string               `json:"question_id"`
	Text           string               `json:"text"`
	Options        map[OptionKey]string `json:"options"`
	CorrectOption  OptionKey            `json:"correct_option"`
	SelectedOption OptionKey            `json:"selected_option,omitempty"` // пусто, если вопрос пропущен
	IsCorrect      bool                 `json:"is_correct"`
	Explanation    string               `json:"explanation,omitempty"`
}

// Answered сообщает, отвечал ли пользователь на вопрос вообще.
// Отсутствие ответа и «ответ пустой строкой» - разные вещи; пустых строк
// в карте ответов не бывает по построению.
func (r *QuestionResult) Answered() bool {
	return r.SelectedOption != ""
}

// GradedAttempt представляет итог одной оценённой попытки. Неизменяем после получения.
type GradedAttempt struct {
	QuizID           string           `json:"quiz_id"`
	LearnerID        string           `json:"learner_id"`
	Score            float64          `json:"score"`
	CorrectCount     int              `json:"correct_count"`
	TotalQuestions   int              `json:"total_questions"`
	PerQuestion      []QuestionResult `json:"per_question"`
	CompletedAt      time.Time        `json:"completed_at"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
}

// AttemptHistoryEntry - сохранённая сводка одной прошлой попытки для пары
// (пользователь, тест). Используется только для отображения, read-only.
type AttemptHistoryEntry struct {
	ID               string    `json:"id"`
	Score            float64   `json:"score"`
	CorrectCount     int       `json:"correct_count"`
	TotalQuestions   int       `json:"total_questions"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}
