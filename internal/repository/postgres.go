package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"trattoria/internal/domain"
)

// PostgresStore держит пул соединений и раздаёт его репозиториям
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{Pool: pool}, nil
}

func (s *PostgresStore) Close() { s.Pool.Close() }

// Bootstrap создаёт схему, если её ещё нет
func (s *PostgresStore) Bootstrap(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL,
			category TEXT NOT NULL,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL DEFAULT '',
			items JSONB NOT NULL,
			total_price NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			payment_status BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin'
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// PostgresMenu репозиторий меню поверх PostgreSQL
type PostgresMenu struct{ store *PostgresStore }

func NewPostgresMenu(store *PostgresStore) *PostgresMenu { return &PostgresMenu{store: store} }

var _ MenuRepository = (*PostgresMenu)(nil)

func (pm *PostgresMenu) Create(ctx context.Context, item *domain.MenuItem) error {
	item.ID = NewID()
	item.CreatedAt = time.Now().UTC()
	_, err := pm.store.Pool.Exec(ctx,
		`INSERT INTO menu_items (id, name, description, price, category, available, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Name, item.Description, item.Price.String(), item.Category, item.Available, item.CreatedAt)
	return err
}

func (pm *PostgresMenu) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	row := pm.store.Pool.QueryRow(ctx,
		`SELECT id, name, description, price::text, category, available, created_at
		 FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

func (pm *PostgresMenu) Update(ctx context.Context, item *domain.MenuItem) error {
	tag, err := pm.store.Pool.Exec(ctx,
		`UPDATE menu_items SET name = $2, description = $3, price = $4, category = $5, available = $6
		 WHERE id = $1`,
		item.ID, item.Name, item.Description, item.Price.String(), item.Category, item.Available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (pm *PostgresMenu) Delete(ctx context.Context, id string) error {
	tag, err := pm.store.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (pm *PostgresMenu) List(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := pm.store.Pool.Query(ctx,
		`SELECT id, name, description, price::text, category, available, created_at
		 FROM menu_items ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var (
		item     domain.MenuItem
		priceStr string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &priceStr, &item.Category, &item.Available, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &item, nil
}

// PostgresOrders репозиторий заказов поверх PostgreSQL.
// Позиции заказа лежат в JSONB: заказ пишется и читается как один документ.
type PostgresOrders struct{ store *PostgresStore }

func NewPostgresOrders(store *PostgresStore) *PostgresOrders { return &PostgresOrders{store: store} }

var _ OrderRepository = (*PostgresOrders)(nil)

func (po *PostgresOrders) Create(ctx context.Context, o *domain.Order) error {
	o.ID = NewID()
	o.CreatedAt = time.Now().UTC()
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = po.store.Pool.Exec(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, items, total_price, status, payment_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.CustomerName, o.CustomerEmail, items, o.TotalPrice.String(), string(o.Status), o.PaymentStatus, o.CreatedAt)
	return err
}

func (po *PostgresOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := po.store.Pool.QueryRow(ctx,
		`SELECT id, customer_name, customer_email, items, total_price::text, status, payment_status, created_at
		 FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (po *PostgresOrders) Update(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	tag, err := po.store.Pool.Exec(ctx,
		`UPDATE orders SET customer_name = $2, customer_email = $3, items = $4, total_price = $5, status = $6, payment_status = $7
		 WHERE id = $1`,
		o.ID, o.CustomerName, o.CustomerEmail, items, o.TotalPrice.String(), string(o.Status), o.PaymentStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (po *PostgresOrders) List(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	clampPaging(&f)

	var total int
	if f.Status != "" {
		if err := po.store.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, f.Status).Scan(&total); err != nil {
			return nil, err
		}
	} else {
		if err := po.store.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
			return nil, err
		}
	}

	var (
		rows pgx.Rows
		err  error
	)
	offset := (f.Page - 1) * f.Limit
	if f.Status != "" {
		rows, err = po.store.Pool.Query(ctx,
			`SELECT id, customer_name, customer_email, items, total_price::text, status, payment_status, created_at
			 FROM orders WHERE status = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
			f.Status, f.Limit, offset)
	} else {
		rows, err = po.store.Pool.Query(ctx,
			`SELECT id, customer_name, customer_email, items, total_price::text, status, payment_status, created_at
			 FROM orders ORDER BY created_at, id LIMIT $1 OFFSET $2`,
			f.Limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, f.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &OrderPage{
		Orders:      orders,
		CurrentPage: f.Page,
		TotalPages:  (total + f.Limit - 1) / f.Limit,
		TotalOrders: total,
	}, nil
}

func (po *PostgresOrders) Count(ctx context.Context) (int, error) {
	var n int
	err := po.store.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		items    []byte
		totalStr string
		status   string
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &items, &totalStr, &status, &o.PaymentStatus, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	o.TotalPrice, err = decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("parse total price: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// PostgresAdmins репозиторий администраторов поверх PostgreSQL
type PostgresAdmins struct{ store *PostgresStore }

func NewPostgresAdmins(store *PostgresStore) *PostgresAdmins { return &PostgresAdmins{store: store} }

var _ AdminRepository = (*PostgresAdmins)(nil)

func (pa *PostgresAdmins) Create(ctx context.Context, u *domain.AdminUser) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	_, err := pa.store.Pool.Exec(ctx,
		`INSERT INTO admins (id, name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash, role = EXCLUDED.role`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	return err
}

func (pa *PostgresAdmins) GetByEmailAndRole(ctx context.Context, email, role string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := pa.store.Pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role FROM admins WHERE email = $1 AND role = $2`,
		email, role).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
