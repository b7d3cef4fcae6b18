package dto

import (
	"time"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	"github.com/yourusername/qa-session-api/internal/handler/helper"
)

// QuestionResponse представляет вопрос идущей сессии в формате для клиента.
// Ключей правильных ответов здесь нет и быть не может: до отправки клиент
// получает только тексты вариантов и собственный выбор.
type QuestionResponse struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Options  []helper.OptionView `json:"options"`
	Answered bool                `json:"answered"`
}

// SessionResponse представляет состояние сессии в формате для клиента
type SessionResponse struct {
	ID               string             `json:"id"`
	QuizID           string             `json:"quiz_id"`
	Status           string             `json:"status"`
	CurrentIndex     int                `json:"current_index"`
	RemainingSeconds int                `json:"remaining_seconds"`
	AllottedSeconds  int                `json:"allotted_seconds"`
	AnsweredCount    int                `json:"answered_count"`
	QuestionCount    int                `json:"question_count"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
}

// NewSessionResponse создает DTO состояния сессии.
// includeQuestions=false используется для лёгких ответов (навигация, ответ),
// когда клиент уже держит список вопросов.
func NewSessionResponse(s entity.SessionSnapshot, includeQuestions bool) *SessionResponse {
	resp := &SessionResponse{
		ID:               s.ID,
		QuizID:           s.QuizID,
		Status:           s.Status,
		CurrentIndex:     s.CurrentIndex,
		RemainingSeconds: s.RemainingSeconds,
		AllottedSeconds:  s.AllottedSeconds,
		AnsweredCount:    s.AnsweredCount,
		QuestionCount:    len(s.Questions),
	}

	if includeQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(s.Questions))
		for i := range s.Questions {
			q := &s.Questions[i]
			selected := s.Answers[q.ID]
			resp.Questions = append(resp.Questions, QuestionResponse{
				ID:       q.ID,
				Text:     q.Text,
				Options:  helper.BuildSessionOptionViews(q, selected),
				Answered: selected != "",
			})
		}
	}
	return resp
}

// QuestionResultResponse представляет разбор одного вопроса оценённой попытки
type QuestionResultResponse struct {
	QuestionID  string              `json:"question_id"`
	Text        string              `json:"text"`
	Options     []helper.OptionView `json:"options"`
	IsCorrect   bool                `json:"is_correct"`
	Answered    bool                `json:"answered"`
	Explanation string              `json:"explanation,omitempty"`
}

// AttemptResponse представляет оценённую попытку в формате для клиента
type AttemptResponse struct {
	QuizID           string                   `json:"quiz_id"`
	Score            float64                  `json:"score"`
	CorrectCount     int                      `json:"correct_count"`
	TotalQuestions   int                      `json:"total_questions"`
	CompletedAt      time.Time                `json:"completed_at"`
	TimeTakenSeconds int                      `json:"time_taken_seconds"`
	Questions        []QuestionResultResponse `json:"questions"`
}

// NewAttemptResponse создает DTO оценённой попытки
func NewAttemptResponse(a *entity.GradedAttempt) *AttemptResponse {
	questions := make([]QuestionResultResponse, 0, len(a.PerQuestion))
	for i := range a.PerQuestion {
		r := &a.PerQuestion[i]
		questions = append(questions, QuestionResultResponse{
			QuestionID:  r.QuestionID,
			Text:        r.Text,
			Options:     helper.BuildOptionViews(r),
			IsCorrect:   r.IsCorrect,
			Answered:    r.Answered(),
			Explanation: r.Explanation,
		})
	}
	return &AttemptResponse{
		QuizID:           a.QuizID,
		Score:            a.Score,
		CorrectCount:     a.CorrectCount,
		TotalQuestions:   a.TotalQuestions,
		CompletedAt:      a.CompletedAt,
		TimeTakenSeconds: a.TimeTakenSeconds,
		Questions:        questions,
	}
}

// HistoryEntryResponse представляет одну прошлую попытку в списке истории
type HistoryEntryResponse struct {
	ID               string    `json:"id"`
	Score            float64   `json:"score"`
	CorrectCount     int       `json:"correct_count"`
	TotalQuestions   int       `json:"total_questions"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

// NewHistoryEntries создает список DTO истории попыток
func NewHistoryEntries(entries []entity.AttemptHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, HistoryEntryResponse{
			ID:               e.ID,
			Score:            e.Score,
			CorrectCount:     e.CorrectCount,
			TotalQuestions:   e.TotalQuestions,
			CompletedAt:      e.CompletedAt,
			TimeTakenSeconds: e.TimeTakenSeconds,
		})
	}
	return out
}

// QuizSummaryResponse представляет тест в списке выбора (без вопросов)
type QuizSummaryResponse struct {
	ID            string `json:"id"`
	ArticleID     string `json:"article_id,omitempty"`
	QuestionCount int    `json:"question_count"`
}

// NewQuizSummaries создает список DTO тестов статьи
func NewQuizSummaries(defs []*entity.QuizDefinition) []QuizSummaryResponse {
	out := make([]QuizSummaryResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, QuizSummaryResponse{
			ID:            def.ID,
			ArticleID:     def.ArticleID,
			QuestionCount: def.QuestionCount(),
		})
	}
	return out
}
