package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem представляет позицию меню ресторана
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ValidStatus проверяет, что значение входит в перечисление статусов
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem позиция в заказе с зафиксированной на момент создания ценой
type OrderItem struct {
	ItemID         string          `json:"item_id"`
	Quantity       int64           `json:"quantity"`
	Customizations string          `json:"customizations,omitempty"`
	UnitPrice      decimal.Decimal `json:"price"`
	LineTotal      decimal.Decimal `json:"item_total"`
}

// Order сущность заказа
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"name"`
	CustomerEmail string          `json:"email,omitempty"`
	Items         []OrderItem     `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus bool            `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AdminUser учётная запись администратора. Пароль хранится только как bcrypt-хэш.
type AdminUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
