package client

import (
	"fmt"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

// Проводной словарь бэкенда: варианты ответов кодируются как answer_a..answer_d.
// Перевод во внутренний словарь A|B|C|D выполняется только здесь - единая
// двунаправленная таблица вместо размазанных по компонентам ad-hoc сравнений.
const (
	wireAnswerA = "answer_a"
	wireAnswerB = "answer_b"
	wireAnswerC = "answer_c"
	wireAnswerD = "answer_d"
)

var optionToWire = map[entity.OptionKey]string{
	entity.OptionA: wireAnswerA,
	entity.OptionB: wireAnswerB,
	entity.OptionC: wireAnswerC,
	entity.OptionD: wireAnswerD,
}

var wireToOption = map[string]entity.OptionKey{
	wireAnswerA: entity.OptionA,
	wireAnswerB: entity.OptionB,
	wireAnswerC: entity.OptionC,
	wireAnswerD: entity.OptionD,
}

// OptionToWire переводит внутренний ключ варианта в проводной формат
func OptionToWire(key entity.OptionKey) (string, error) {
	wire, ok := optionToWire[key]
	if !ok {
		return "", fmt.Errorf("option key %q has no wire form: %w", key, apperrors.ErrValidation)
	}
	return wire, nil
}

// OptionFromWire переводит проводной токен во внутренний ключ варианта.
// Пустая строка означает «вопрос пропущен» и отображается в пустой ключ.
func OptionFromWire(wire string) (entity.OptionKey, error) {
	if wire == "" {
		return "", nil
	}
	key, ok := wireToOption[wire]
	if !ok {
		return "", fmt.Errorf("unknown wire answer token %q: %w", wire, apperrors.ErrValidation)
	}
	return key, nil
}
