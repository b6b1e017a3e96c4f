package repository

import (
	"context"
	"sync"
	"time"

	"trattoria/internal/domain"
)

// MemoryStore объединённое in-memory хранилище: меню, заказы, администраторы.
// Используется в тестах и при запуске без DATABASE_URL.
type MemoryStore struct {
	mu         sync.RWMutex
	itemsByID  map[string]domain.MenuItem
	itemOrder  []string
	ordersByID map[string]domain.Order
	orderSeq   []string
	adminsByID map[string]domain.AdminUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		itemsByID:  make(map[string]domain.MenuItem),
		ordersByID: make(map[string]domain.Order),
		adminsByID: make(map[string]domain.AdminUser),
	}
}

// Ensure interfaces
var _ MenuRepository = (*MemoryStore)(nil)

// MenuRepository implementation
func (m *MemoryStore) Create(ctx context.Context, item *domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = NewID()
	item.CreatedAt = time.Now().UTC()
	m.itemsByID[item.ID] = *item
	m.itemOrder = append(m.itemOrder, item.ID)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.itemsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := it
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, item *domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.itemsByID[item.ID]; !ok {
		return ErrNotFound
	}
	m.itemsByID[item.ID] = *item
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.itemsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.itemsByID, id)
	for i, other := range m.itemOrder {
		if other == id {
			m.itemOrder = append(m.itemOrder[:i], m.itemOrder[i+1:]...)
			break
		}
	}
	return nil
}

// List возвращает позиции в порядке создания
func (m *MemoryStore) List(ctx context.Context) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.MenuItem, 0, len(m.itemOrder))
	for _, id := range m.itemOrder {
		out = append(out, m.itemsByID[id])
	}
	return out, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	o.ID = NewID()
	o.CreatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = *o
	mo.store.orderSeq = append(mo.store.orderSeq, o.ID)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

// List отдаёт страницу заказов в порядке создания, с опциональным фильтром по статусу
func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	clampPaging(&f)
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()

	matched := make([]domain.Order, 0)
	for _, id := range mo.store.orderSeq {
		o := mo.store.ordersByID[id]
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		matched = append(matched, o)
	}

	total := len(matched)
	totalPages := (total + f.Limit - 1) / f.Limit
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return &OrderPage{
		Orders:      matched[start:end],
		CurrentPage: f.Page,
		TotalPages:  totalPages,
		TotalOrders: total,
	}, nil
}

func (mo *MemoryOrders) Count(ctx context.Context) (int, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	return len(mo.store.ordersByID), nil
}

// AdminRepository implementation on wrapper type
type MemoryAdmins struct{ store *MemoryStore }

func NewMemoryAdmins(store *MemoryStore) *MemoryAdmins { return &MemoryAdmins{store: store} }

var _ AdminRepository = (*MemoryAdmins)(nil)

func (ma *MemoryAdmins) Create(ctx context.Context, u *domain.AdminUser) error {
	ma.store.mu.Lock()
	defer ma.store.mu.Unlock()
	if u.ID == "" {
		u.ID = NewID()
	}
	ma.store.adminsByID[u.ID] = *u
	return nil
}

func (ma *MemoryAdmins) GetByEmailAndRole(ctx context.Context, email, role string) (*domain.AdminUser, error) {
	ma.store.mu.RLock()
	defer ma.store.mu.RUnlock()
	for _, u := range ma.store.adminsByID {
		if u.Email == email && u.Role == role {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
