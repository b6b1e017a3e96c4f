package domain

import "fmt"

// FieldError сообщение об ошибке валидации конкретного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError накапливает ошибки валидации по полям запроса
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Add добавляет ошибку поля и возвращает e для цепочки вызовов
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors сообщает, накоплена ли хотя бы одна ошибка
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// ItemUnavailableError заказ ссылается на отсутствующую или недоступную позицию меню
type ItemUnavailableError struct {
	ItemID string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item with ID %s is not available", e.ItemID)
}
