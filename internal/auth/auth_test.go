package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trattoria/internal/domain"
	"trattoria/internal/repository"
)

func setup(t *testing.T) (*Service, *domain.AdminUser) {
	t.Helper()
	store := repository.NewMemoryStore()
	admins := repository.NewMemoryAdmins(store)

	hash, err := HashPassword("adminpassword")
	if err != nil {
		t.Fatal(err)
	}
	u := domain.AdminUser{Name: "Admin User", Email: "admin@example.com", PasswordHash: hash, Role: RoleAdmin}
	if err := admins.Create(context.Background(), &u); err != nil {
		t.Fatal(err)
	}
	return NewService(admins, "test-secret"), &u
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc, admin := setup(t)

	token, err := svc.Login(ctx, "admin@example.com", "adminpassword")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != admin.ID || claims.Role != RoleAdmin {
		t.Fatalf("wrong claims: %+v", claims)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expiry outside 1h window: %v", ttl)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "adminpassword")
	_, errWrongPass := svc.Login(ctx, "admin@example.com", "wrong")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials: %v / %v", errUnknown, errWrongPass)
	}
	// identical error for both: callers cannot distinguish unknown email from bad password
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatalf("login errors leak which check failed")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	svc, admin := setup(t)

	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	svc, _ := setup(t)

	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}
	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}
}
