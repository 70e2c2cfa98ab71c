package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable — хранилище записей недоступно или отклонило
	// сервисную учётную запись. Повтор только по действию оператора.
	ErrBackendUnavailable = errors.New("record store unavailable")

	ErrOrderNotFound   = errors.New("order not found")
	ErrCourierNotFound = errors.New("courier not found")

	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict — заказ был изменён после его последнего чтения.
	ErrConflict = errors.New("order modified concurrently")

	// ErrSubmitInFlight — предыдущая отправка формы ещё не завершена.
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// ValidationError описывает нарушение предусловий входных данных,
// с сообщением на каждое невалидное поле.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
