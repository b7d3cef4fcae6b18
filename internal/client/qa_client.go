package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// QAClient - REST-клиент контент-бэкенда (банк вопросов).
// Все вызовы идут с явным таймаутом: зависший бэкенд превращается в
// ErrUnavailable, а не в бесконечное ожидание.
type QAClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewQAClient создает клиент контент-бэкенда
func NewQAClient(baseURL string, timeout time.Duration) *QAClient {
	return &QAClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wireQuestion повторяет проводной формат вопроса контент-бэкенда
type wireQuestion struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	AnswerA    string `json:"answer_a"`
	AnswerB    string `json:"answer_b"`
	AnswerC    string `json:"answer_c"`
	AnswerD    string `json:"answer_d"`
	// correct_answer и explanation бэкенд может прислать вместе с банком вопросов,
	// но в сервис сессий они сознательно не пропускаются (см. toEntity)
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// wireQuiz повторяет проводной формат теста контент-бэкенда
type wireQuiz struct {
	ID        string         `json:"id"`
	ArticleID string         `json:"article_id"`
	Questions []wireQuestion `json:"questions"`
}

type quizEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    wireQuiz `json:"data"`
}

type quizListEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    []wireQuiz `json:"data"`
}

// FetchQuiz загружает определение теста: GET {base}/api/qas/{qa_id}.
// Тест без единого вопроса приравнивается к отсутствующему - пустой тест
// запустить нельзя.
func (c *QAClient) FetchQuiz(ctx context.Context, quizID string) (*entity.QuizDefinition, error) {
	var envelope quizEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/qas/%s", c.baseURL, quizID), &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Data.ID == "" {
		return nil, fmt.Errorf("quiz %q: %w", quizID, apperrors.ErrNotFound)
	}

	def := toEntity(&envelope.Data)
	if len(def.Questions) == 0 {
		return nil, fmt.Errorf("quiz %q has no questions: %w", quizID, apperrors.ErrNotFound)
	}
	return def, nil
}

// FetchQuizzesByArticle загружает тесты, привязанные к статье:
// GET {base}/api/qas/article/{article_id}. Пустой список - не ошибка.
func (c *QAClient) FetchQuizzesByArticle(ctx context.Context, articleID string) ([]*entity.QuizDefinition, error) {
	var envelope quizListEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/qas/article/%s", c.baseURL, articleID), &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("content backend rejected article lookup: %w", apperrors.ErrUnavailable)
	}

	defs := make([]*entity.QuizDefinition, 0, len(envelope.Data))
	for i := range envelope.Data {
		defs = append(defs, toEntity(&envelope.Data[i]))
	}
	return defs, nil
}

func (c *QAClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content backend request failed: %v: %w", err, apperrors.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("content backend returned status %d: %w", resp.StatusCode, apperrors.ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("content backend returned malformed payload: %v: %w", err, apperrors.ErrUnavailable)
	}
	return nil
}

// toEntity нормализует проводной формат во внутреннюю модель:
//   - варианты answer_a..answer_d раскладываются по ключам A|B|C|D;
//   - вопросам без question_id синтезируются UUID - стабильные на время жизни
//     закешированного определения, этого достаточно для трекинга ответов в сессии;
//   - ключи правильных ответов и пояснения обрезаются на границе: до отправки
//     клиент сессии их видеть не должен, разбор приходит уже от бэкенда результатов.
func toEntity(w *wireQuiz) *entity.QuizDefinition {
	questions := make([]entity.Question, 0, len(w.Questions))
	for i := range w.Questions {
		wq := &w.Questions[i]
		id := wq.QuestionID
		if id == "" {
			id = uuid.NewString()
			log.Printf("[QAClient] Вопросу без question_id в тесте %q синтезирован ID %s", w.ID, id)
		}
		questions = append(questions, entity.Question{
			ID:   id,
			Text: wq.Question,
			Options: map[entity.OptionKey]string{
				entity.OptionA: wq.AnswerA,
				entity.OptionB: wq.AnswerB,
				entity.OptionC: wq.AnswerC,
				entity.OptionD: wq.AnswerD,
			},
		})
	}
	return &entity.QuizDefinition{
		ID:        w.ID,
		ArticleID: w.ArticleID,
		Questions: questions,
	}
}
