package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"trattoria/internal/domain"
	"trattoria/internal/repository"
)

// maxCustomerNameLen ограничение длины имени клиента
const maxCustomerNameLen = 100

// OrderService реализует оформление заказов и управление их статусом
type OrderService struct {
	menu   repository.MenuRepository
	orders repository.OrderRepository
}

func NewOrderService(menu repository.MenuRepository, orders repository.OrderRepository) *OrderService {
	return &OrderService{menu: menu, orders: orders}
}

// OrderItemRequest запрошенная позиция заказа до сверки с меню
type OrderItemRequest struct {
	ItemID         string
	Quantity       int64
	Customizations string
}

func validateOrderShape(name string, items []OrderItemRequest) *domain.ValidationError {
	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "Name is required")
	} else if len(name) > maxCustomerNameLen {
		verr.Add("name", "Name must be between 1 and 100 characters")
	}
	if len(items) == 0 {
		verr.Add("items", "Order must contain at least one item")
	}
	for i, it := range items {
		if !repository.ValidID(it.ItemID) {
			verr.Add(fmt.Sprintf("items[%d].item_id", i), "Invalid item ID format")
		}
		if it.Quantity < 1 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "Quantity must be at least 1")
		}
	}
	return verr
}

// PlaceOrder сверяет позиции с меню, фиксирует цены и создаёт заказ.
// Всё или ничего: любая недоступная позиция отклоняет весь запрос до записи.
func (s *OrderService) PlaceOrder(ctx context.Context, name, email string, items []OrderItemRequest) (*domain.Order, error) {
	if verr := validateOrderShape(name, items); verr.HasErrors() {
		return nil, verr
	}

	total := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		menuItem, err := s.menu.GetByID(ctx, it.ItemID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.ItemUnavailableError{ItemID: it.ItemID}
		}
		if err != nil {
			return nil, err
		}
		if !menuItem.Available {
			return nil, &domain.ItemUnavailableError{ItemID: it.ItemID}
		}

		lineTotal := menuItem.Price.Mul(decimal.NewFromInt(it.Quantity))
		total = total.Add(lineTotal)
		orderItems = append(orderItems, domain.OrderItem{
			ItemID:         menuItem.ID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
			UnitPrice:      menuItem.Price,
			LineTotal:      lineTotal,
		})
	}

	o := domain.Order{
		CustomerName:  name,
		CustomerEmail: email,
		Items:         orderItems,
		TotalPrice:    total,
		Status:        domain.OrderStatusPending,
		PaymentStatus: false,
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetStatus перезаписывает статус заказа. Переходы намеренно не ограничены:
// любой из трёх статусов может смениться на любой другой.
func (s *OrderService) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		verr := &domain.ValidationError{}
		verr.Add("status", "Status must be either Pending, Completed, or Cancelled")
		return nil, verr
	}
	if !repository.ValidID(id) {
		return nil, ErrInvalidInput
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = status
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List отдаёт страницу заказов для админского списка
func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) (*repository.OrderPage, error) {
	return s.orders.List(ctx, f)
}
