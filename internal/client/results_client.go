package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// ResultsClient - REST-клиент бэкенда результатов: отправка попытки на оценку
// и чтение истории попыток. Реализует repository.AttemptGateway.
type ResultsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewResultsClient создает клиент бэкенда результатов
func NewResultsClient(baseURL string, timeout time.Duration) *ResultsClient {
	return &ResultsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// submitRequest повторяет проводной формат отправки попытки:
// ответы - карта question_id -> answer_a..answer_d
type submitRequest struct {
	QaID             string            `json:"qa_id"`
	UserID           string            `json:"user_id"`
	Qa               map[string]string `json:"qa"`
	TimeTakenSeconds int               `json:"time_taken,omitempty"`
}

// wireQuestionResult повторяет проводной формат разбора одного вопроса
type wireQuestionResult struct {
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	AnswerA        string `json:"answer_a"`
	AnswerB        string `json:"answer_b"`
	AnswerC        string `json:"answer_c"`
	AnswerD        string `json:"answer_d"`
	CorrectAnswer  string `json:"correct_answer"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation"`
}

type wireGradedAttempt struct {
	Questions []wireQuestionResult `json:"questions"`
	Score     float64              `json:"score"`
	CreatedAt string               `json:"created_at"`
}

type submitEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    wireGradedAttempt `json:"data"`
}

type wireHistoryEntry struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	CompletedAt    string  `json:"completed_at"`
	TimeTaken      int     `json:"time_taken"`
}

type historyEnvelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    []wireHistoryEntry `json:"data"`
}

// SubmitAttempt отправляет попытку на оценку: POST {base}/api/qas-results/.
// Перевод словаря выполняется здесь и только здесь; частичная отправка
// допустима - неотвеченные вопросы просто отсутствуют в карте.
func (c *ResultsClient) SubmitAttempt(
	ctx context.Context,
	quizID, learnerID string,
	answers map[string]entity.OptionKey,
	timeTakenSeconds int,
) (*entity.GradedAttempt, error) {
	wireAnswers := make(map[string]string, len(answers))
	for questionID, option := range answers {
		token, err := OptionToWire(option)
		if err != nil {
			return nil, err
		}
		wireAnswers[questionID] = token
	}

	body, err := json.Marshal(submitRequest{
		QaID:             quizID,
		UserID:           learnerID,
		Qa:               wireAnswers,
		TimeTakenSeconds: timeTakenSeconds,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/qas-results/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("results backend request failed: %v: %w", err, apperrors.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results backend returned status %d: %w", resp.StatusCode, apperrors.ErrUnavailable)
	}

	var envelope submitEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("results backend returned malformed payload: %v: %w", err, apperrors.ErrUnavailable)
	}
	if !envelope.Success {
		// success=false с кодом 200 бэкенд отдаёт и для неизвестного теста
		return nil, fmt.Errorf("results backend rejected attempt: %s: %w", envelope.Message, apperrors.ErrNotFound)
	}

	return toGradedAttempt(&envelope.Data, quizID, learnerID, timeTakenSeconds)
}

// FetchHistory читает историю попыток, новые сверху:
// GET {base}/api/qas-results/user/{user_id}/qa/{qa_id}
func (c *ResultsClient) FetchHistory(ctx context.Context, learnerID, quizID string) ([]entity.AttemptHistoryEntry, error) {
	url := fmt.Sprintf("%s/api/qas-results/user/%s/qa/%s", c.baseURL, learnerID, quizID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("results backend request failed: %v: %w", err, apperrors.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results backend returned status %d: %w", resp.StatusCode, apperrors.ErrUnavailable)
	}

	var envelope historyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("results backend returned malformed payload: %v: %w", err, apperrors.ErrUnavailable)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("results backend rejected history lookup: %s: %w", envelope.Message, apperrors.ErrUnavailable)
	}

	entries := make([]entity.AttemptHistoryEntry, 0, len(envelope.Data))
	for i := range envelope.Data {
		w := &envelope.Data[i]
		entries = append(entries, entity.AttemptHistoryEntry{
			ID:               w.ID,
			Score:            w.Score,
			CorrectCount:     w.CorrectAnswers,
			TotalQuestions:   w.TotalQuestions,
			CompletedAt:      parseBackendTime(w.CompletedAt),
			TimeTakenSeconds: w.TimeTaken,
		})
	}
	return entries, nil
}

// toGradedAttempt нормализует оценённую попытку из проводного формата
func toGradedAttempt(w *wireGradedAttempt, quizID, learnerID string, timeTakenSeconds int) (*entity.GradedAttempt, error) {
	perQuestion := make([]entity.QuestionResult, 0, len(w.Questions))
	correctCount := 0
	for i := range w.Questions {
		wq := &w.Questions[i]

		correct, err := OptionFromWire(wq.CorrectAnswer)
		if err != nil {
			return nil, err
		}
		selected, err := OptionFromWire(wq.SelectedAnswer)
		if err != nil {
			return nil, err
		}
		if wq.IsCorrect {
			correctCount++
		}

		perQuestion = append(perQuestion, entity.QuestionResult{
			QuestionID:     wq.QuestionID,
			Text:           wq.Question,
			Options: map[entity.OptionKey]string{
				entity.OptionA: wq.AnswerA,
				entity.OptionB: wq.AnswerB,
				entity.OptionC: wq.AnswerC,
				entity.OptionD: wq.AnswerD,
			},
			CorrectOption:  correct,
			SelectedOption: selected,
			IsCorrect:      wq.IsCorrect,
			Explanation:    wq.Explanation,
		})
	}

	return &entity.GradedAttempt{
		QuizID:           quizID,
		LearnerID:        learnerID,
		Score:            w.Score,
		CorrectCount:     correctCount,
		TotalQuestions:   len(perQuestion),
		PerQuestion:      perQuestion,
		CompletedAt:      parseBackendTime(w.CreatedAt),
		TimeTakenSeconds: timeTakenSeconds,
	}, nil
}

// parseBackendTime разбирает метки времени бэкенда. Бэкенд отдаёт ISO-8601,
// иногда без зоны; неразборчивое значение деградирует в текущее время,
// история - сугубо отображаемые данные.
func parseBackendTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
