package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trattoria/internal/auth"
	"trattoria/internal/domain"
	"trattoria/internal/logger"
	"trattoria/internal/payment"
	"trattoria/internal/repository"
	"trattoria/internal/service"
)

const testSecret = "test-secret"

type stubProvider struct{ url string }

func (p *stubProvider) CreateCheckoutLink(ctx context.Context, items []payment.LineItem, locationID, redirectURL string) (string, error) {
	return p.url, nil
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	ordersRepo := repository.NewMemoryOrders(store)
	adminsRepo := repository.NewMemoryAdmins(store)

	hash, err := auth.HashPassword("adminpassword")
	if err != nil {
		t.Fatal(err)
	}
	err = adminsRepo.Create(context.Background(), &domain.AdminUser{
		Name: "Admin User", Email: "admin@example.com", PasswordHash: hash, Role: auth.RoleAdmin,
	})
	if err != nil {
		t.Fatal(err)
	}

	menuSvc := service.NewMenuService(store)
	ordersSvc := service.NewOrderService(store, ordersRepo)
	checkoutSvc := service.NewCheckoutService(store, ordersRepo, &stubProvider{url: "https://pay.example.com/link/abc"},
		"LOC123", "https://example.com/thanks", "USD")
	authSvc := auth.NewService(adminsRepo, testSecret)

	return NewServer(menuSvc, ordersSvc, checkoutSvc, authSvc, logger.NewLogger("test"))
}

func doJSON(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/admin/login", map[string]any{
		"email": "admin@example.com", "password": "adminpassword",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login code %v: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
	return resp.Token
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return v
}

func TestMenuFlow(t *testing.T) {
	s := setupServer(t)
	token := adminToken(t, s)

	// create
	w := doJSON(t, s, http.MethodPost, "/api/menu", map[string]any{
		"name": "Margherita Pizza", "description": "Classic cheese pizza", "price": 10.99, "category": "Entree",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v: %s", w.Code, w.Body.String())
	}
	created := decodeJSON[domain.MenuItem](t, w)
	if created.ID == "" || !created.Available {
		t.Fatalf("bad created item: %+v", created)
	}

	// public list
	w = doJSON(t, s, http.MethodGet, "/api/menu", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	items := decodeJSON[[]domain.MenuItem](t, w)
	if len(items) != 1 || items[0].Name != "Margherita Pizza" {
		t.Fatalf("list: %+v", items)
	}

	// partial update: only price
	w = doJSON(t, s, http.MethodPut, "/api/menu/"+created.ID, map[string]any{"price": 11.49}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %s", w.Code, w.Body.String())
	}
	updated := decodeJSON[domain.MenuItem](t, w)
	if updated.Name != created.Name || updated.Description != created.Description {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}

	// delete, then delete again
	w = doJSON(t, s, http.MethodDelete, "/api/menu/"+created.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/menu/"+created.ID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete expected 404, got %v", w.Code)
	}
}

func TestOrderScenario(t *testing.T) {
	s := setupServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/menu", map[string]any{
		"name": "Margherita Pizza", "price": 10.99, "category": "Entree",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create item %v", w.Code)
	}
	item := decodeJSON[domain.MenuItem](t, w)

	// place order
	w = doJSON(t, s, http.MethodPost, "/api/orders", map[string]any{
		"name":  "Alice",
		"items": []map[string]any{{"item_id": item.ID, "quantity": 2}},
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("place order %v: %s", w.Code, w.Body.String())
	}
	order := decodeJSON[domain.Order](t, w)
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("status: %v", order.Status)
	}
	if order.TotalPrice.String() != "21.98" {
		t.Fatalf("total: %v", order.TotalPrice)
	}

	// set status
	w = doJSON(t, s, http.MethodPatch, "/api/orders/"+order.ID+"/status", map[string]any{"status": "Completed"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status %v: %s", w.Code, w.Body.String())
	}
	patched := decodeJSON[domain.Order](t, w)
	if patched.Status != domain.OrderStatusCompleted {
		t.Fatalf("status after patch: %v", patched.Status)
	}

	// list filtered
	w = doJSON(t, s, http.MethodGet, "/api/orders?status=Completed", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list orders %v", w.Code)
	}
	page := decodeJSON[repository.OrderPage](t, w)
	if page.TotalOrders != 1 || len(page.Orders) != 1 || page.Orders[0].ID != order.ID {
		t.Fatalf("filtered list: %+v", page)
	}
	if page.CurrentPage != 1 {
		t.Fatalf("default page expected 1, got %v", page.CurrentPage)
	}
}

func TestPlaceOrder_UnknownItem(t *testing.T) {
	s := setupServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]any{
		"name":  "Alice",
		"items": []map[string]any{{"item_id": repository.NewID(), "quantity": 1}},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v: %s", w.Code, w.Body.String())
	}

	// nothing was persisted
	w = doJSON(t, s, http.MethodGet, "/api/orders", nil, token)
	page := decodeJSON[repository.OrderPage](t, w)
	if page.TotalOrders != 0 {
		t.Fatalf("order count changed: %+v", page)
	}
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]any{
		"name": "", "items": []map[string]any{},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	var resp struct {
		Message string             `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) == 0 {
		t.Fatalf("expected field errors: %s", w.Body.String())
	}
}

func TestCheckoutLink(t *testing.T) {
	s := setupServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/menu", map[string]any{
		"name": "Pepperoni Pizza", "price": 12.99, "category": "Entree",
	}, token)
	item := decodeJSON[domain.MenuItem](t, w)

	w = doJSON(t, s, http.MethodPost, "/api/orders/create-checkout-link", map[string]any{
		"name":  "Alice",
		"email": "alice@example.com",
		"items": []map[string]any{{"item_id": item.ID, "quantity": 3}},
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("checkout %v: %s", w.Code, w.Body.String())
	}
	res := decodeJSON[service.CheckoutResult](t, w)
	if res.CheckoutURL != "https://pay.example.com/link/abc" || res.TotalPrice.String() != "38.97" {
		t.Fatalf("checkout result: %+v", res)
	}

	// missing email
	w = doJSON(t, s, http.MethodPost, "/api/orders/create-checkout-link", map[string]any{
		"name":  "Alice",
		"items": []map[string]any{{"item_id": item.ID, "quantity": 1}},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without email, got %v", w.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := setupServer(t)

	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/menu", map[string]any{"name": "X", "price": 1, "category": "C"}},
		{http.MethodPut, "/api/menu/" + repository.NewID(), map[string]any{"price": 2}},
		{http.MethodDelete, "/api/menu/" + repository.NewID(), nil},
		{http.MethodGet, "/api/orders", nil},
		{http.MethodPatch, "/api/orders/" + repository.NewID() + "/status", map[string]any{"status": "Completed"}},
	}
	for _, p := range paths {
		w := doJSON(t, s, p.method, p.path, p.body, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %v", p.method, p.path, w.Code)
		}
		w = doJSON(t, s, p.method, p.path, p.body, "not-a-token")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s with bad token: expected 401, got %v", p.method, p.path, w.Code)
		}
	}
}

func TestAdminRoutesRejectNonAdminRole(t *testing.T) {
	s := setupServer(t)

	// token with a valid signature but a non-admin role claim
	claims := auth.Claims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, s, http.MethodGet, "/api/orders", nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin role, got %v", w.Code)
	}
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/admin/login", map[string]any{
		"email": "admin@example.com", "password": "wrong",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/admin/login", map[string]any{
		"email": "nobody@example.com", "password": "adminpassword",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	s := setupServer(t)
	token := adminToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/menu", map[string]any{
		"name": "Lemonade", "price": 3.49, "category": "Drink",
	}, token)
	item := decodeJSON[domain.MenuItem](t, w)

	w = doJSON(t, s, http.MethodPost, "/api/orders", map[string]any{
		"name":  "Bob",
		"items": []map[string]any{{"item_id": item.ID, "quantity": 1}},
	}, "")
	order := decodeJSON[domain.Order](t, w)

	w = doJSON(t, s, http.MethodPatch, "/api/orders/"+order.ID+"/status", map[string]any{"status": "Shipped"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %v", w.Code)
	}

	// unknown order id with a valid status
	w = doJSON(t, s, http.MethodPatch, "/api/orders/"+repository.NewID()+"/status", map[string]any{"status": "Completed"}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %v", w.Code)
	}
}
