package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"trattoria/internal/domain"
	"trattoria/internal/repository"
)

// MenuService инкапсулирует бизнес-логику каталога меню
type MenuService struct {
	repo repository.MenuRepository
}

func NewMenuService(repo repository.MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

var ErrInvalidInput = errors.New("invalid input")

// CreateMenuItemParams входные данные создания позиции меню
type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Available   *bool
}

// UpdateMenuItemParams частичное обновление: nil-поля не трогаются
type UpdateMenuItemParams struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Available   *bool
}

func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.List(ctx)
}

func (s *MenuService) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	if !repository.ValidID(id) {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Create валидирует и сохраняет новую позицию; available по умолчанию true
func (s *MenuService) Create(ctx context.Context, p CreateMenuItemParams) (*domain.MenuItem, error) {
	verr := &domain.ValidationError{}
	if p.Name == "" {
		verr.Add("name", "Name is required")
	}
	if p.Category == "" {
		verr.Add("category", "Category is required")
	}
	if !p.Price.IsPositive() {
		verr.Add("price", "Price must be a positive number")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	item := domain.MenuItem{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Available:   true,
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update применяет только присланные поля; остальные остаются как были
func (s *MenuService) Update(ctx context.Context, id string, p UpdateMenuItemParams) (*domain.MenuItem, error) {
	if !repository.ValidID(id) {
		return nil, ErrInvalidInput
	}

	verr := &domain.ValidationError{}
	if p.Name != nil && *p.Name == "" {
		verr.Add("name", "Name must not be empty")
	}
	if p.Category != nil && *p.Category == "" {
		verr.Add("category", "Category must not be empty")
	}
	if p.Price != nil && !p.Price.IsPositive() {
		verr.Add("price", "Price must be a positive number")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	if !repository.ValidID(id) {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
