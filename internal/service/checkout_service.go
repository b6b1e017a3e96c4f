package service

import (
	"context"
	"errors"
	"net/mail"
	"strconv"

	"github.com/shopspring/decimal"

	"trattoria/internal/domain"
	"trattoria/internal/payment"
	"trattoria/internal/repository"
)

// CheckoutService строит платёжную ссылку у внешнего провайдера и создаёт заказ
type CheckoutService struct {
	menu        repository.MenuRepository
	orders      repository.OrderRepository
	provider    payment.CheckoutLinkCreator
	locationID  string
	redirectURL string
	currency    string
}

func NewCheckoutService(menu repository.MenuRepository, orders repository.OrderRepository, provider payment.CheckoutLinkCreator, locationID, redirectURL, currency string) *CheckoutService {
	return &CheckoutService{
		menu:        menu,
		orders:      orders,
		provider:    provider,
		locationID:  locationID,
		redirectURL: redirectURL,
		currency:    currency,
	}
}

// CheckoutResult ссылка на оплату и итоговая цена заказа
type CheckoutResult struct {
	CheckoutURL string          `json:"checkoutUrl"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CreateCheckoutLink валидирует заказ, запрашивает ссылку у провайдера и
// сохраняет Pending-заказ. Провайдерская ошибка не ретраится, заказ при ней
// не создаётся. Повторный вызов создаёт новую ссылку и новый заказ.
func (s *CheckoutService) CreateCheckoutLink(ctx context.Context, name, email string, items []OrderItemRequest) (*CheckoutResult, error) {
	verr := validateOrderShape(name, items)
	if email == "" {
		verr.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "Email must be a valid email address")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// amounts go to the provider in minor units (price * 100, rounded)
	var totalMinor int64
	lineItems := make([]payment.LineItem, 0, len(items))
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

		unitMinor := menuItem.Price.Shift(2).Round(0).IntPart()
		totalMinor += unitMinor * it.Quantity
		lineItems = append(lineItems, payment.LineItem{
			Name:     menuItem.Name,
			Quantity: strconv.FormatInt(it.Quantity, 10),
			Amount:   unitMinor,
			Currency: s.currency,
		})
		orderItems = append(orderItems, domain.OrderItem{
			ItemID:         menuItem.ID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
			UnitPrice:      decimal.New(unitMinor, -2),
			LineTotal:      decimal.New(unitMinor*it.Quantity, -2),
		})
	}

	url, err := s.provider.CreateCheckoutLink(ctx, lineItems, s.locationID, s.redirectURL)
	if err != nil {
		var pe *payment.ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &payment.ProviderError{Err: err}
	}

	total := decimal.New(totalMinor, -2)
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
	return &CheckoutResult{CheckoutURL: url, TotalPrice: total}, nil
}
