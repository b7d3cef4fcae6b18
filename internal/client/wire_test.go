package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/qa-session-api/internal/domain/entity"
	apperrors "github.com/yourusername/qa-session-api/internal/pkg/errors"
)

func TestOptionToWire_AllKeys(t *testing.T) {
	// Act & Assert: полное соответствие внутреннего словаря проводному
	cases := map[entity.OptionKey]string{
		entity.OptionA: "answer_a",
		entity.OptionB: "answer_b",
		entity.OptionC: "answer_c",
		entity.OptionD: "answer_d",
	}
	for key, expected := range cases {
		wire, err := OptionToWire(key)
		require.NoError(t, err)
		assert.Equal(t, expected, wire)
	}
}

func TestOptionToWire_UnknownKey(t *testing.T) {
	// Act
	_, err := OptionToWire(entity.OptionKey("E"))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOptionFromWire_RoundTrip(t *testing.T) {
	// Act & Assert: перевод туда-обратно возвращает исходный ключ
	for _, key := range entity.OptionKeys {
		wire, err := OptionToWire(key)
		require.NoError(t, err)

		back, err := OptionFromWire(wire)
		require.NoError(t, err)
		assert.Equal(t, key, back, "Перевод %s -> %s -> %s должен быть тождественным", key, wire, back)
	}
}

func TestOptionFromWire_EmptyMeansSkipped(t *testing.T) {
	// Act: пустая строка - вопрос пропущен
	key, err := OptionFromWire("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.OptionKey(""), key)
}

func TestOptionFromWire_UnknownToken(t *testing.T) {
	// Act
	_, err := OptionFromWire("answer_e")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Внутренние ключи не являются валидными проводными токенами
	_, err = OptionFromWire("A")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
