package entity

// OptionKey - ключ варианта ответа во внутреннем словаре сессии (A|B|C|D).
// Проводной словарь бэкенда (answer_a..answer_d) сюда никогда не попадает:
// перевод выполняется один раз на границе в пакете client.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// OptionKeys - фиксированный порядок вариантов для отображения.
var OptionKeys = []OptionKey{OptionA, OptionB, OptionC, OptionD}

// IsValid проверяет, что ключ входит в словарь A|B|C|D
func (k OptionKey) IsValid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question представляет вопрос теста.
// Текст вопроса и вариантов может содержать HTML - для логики сессии он непрозрачен.
// Ключи правильных ответов в сервис сессий НЕ загружаются: проверка выполняется
// бэкендом результатов, а клиент получает разбор только после отправки.
type Question struct {
	ID      string               `json:"id"`
	Text    string               `json:"text"`
	Options map[OptionKey]string `json:"options"`
}

// QuizDefinition представляет определение теста, полученное от контент-бэкенда
type QuizDefinition struct {
	ID        string     `json:"id"`
	ArticleID string     `json:"article_id,omitempty"`
	Questions []Question `json:"questions"`
}

// QuestionCount возвращает количество вопросов в тесте
func (q *QuizDefinition) QuestionCount() int {
	return len(q.Questions)
}

// HasQuestion проверяет, что вопрос с данным ID принадлежит тесту
func (q *QuizDefinition) HasQuestion(questionID string) bool {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return true
		}
	}
	return false
}
