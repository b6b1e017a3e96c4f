package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"trattoria/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// OrderFilter параметры выборки заказов для админского списка
type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}

// OrderPage страница заказов с метаданными пагинации
type OrderPage struct {
	Orders      []domain.Order `json:"orders"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int            `json:"totalOrders"`
}

// MenuRepository интерфейс хранилища позиций меню
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.MenuItem, error)
}

// OrderRepository интерфейс хранилища заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) (*OrderPage, error)
	Count(ctx context.Context) (int, error)
}

// AdminRepository интерфейс хранилища администраторов
type AdminRepository interface {
	Create(ctx context.Context, u *domain.AdminUser) error
	GetByEmailAndRole(ctx context.Context, email, role string) (*domain.AdminUser, error)
}

// NewID генерирует 24-символьный hex-идентификатор
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ValidID проверяет формат идентификатора (24 hex-символа)
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func clampPaging(f *OrderFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
}
