package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда тест не найден или не содержит ни одного вопроса.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных.
	// На уровне сессии это внутренний дефект (например, ответ на неизвестный вопрос).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState используется, когда операция недопустима в текущем статусе сессии
	// (например, submit во время уже идущей отправки). Обработчики трактуют её как no-op.
	ErrInvalidState = errors.New("operation not allowed in current session state")

	// ErrConflict используется для конфликтов состояния (например, повторный старт завершённой сессии).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется при сетевых/транспортных сбоях удалённых бэкендов
	// (контент-сервис, сервис результатов), включая таймауты.
	ErrUnavailable = errors.New("remote backend unavailable")
)
