package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"trattoria/internal/repository"
)

const (
	// RoleAdmin единственная привилегированная роль
	RoleAdmin = "admin"

	tokenTTL = time.Hour
)

var (
	// ErrInvalidCredentials намеренно общая ошибка: не раскрываем, что именно не совпало
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken токен отсутствует, просрочен или не проходит проверку подписи
	ErrInvalidToken = errors.New("invalid token")
)

// Claims полезная нагрузка токена: идентичность и роль
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service проверяет учётные данные и выпускает/проверяет bearer-токены
type Service struct {
	admins repository.AdminRepository
	secret []byte
}

func NewService(admins repository.AdminRepository, secret string) *Service {
	return &Service{admins: admins, secret: []byte(secret)}
}

// Login сверяет пароль с bcrypt-хэшем и выпускает подписанный токен на 1 час
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.admins.GetByEmailAndRole(ctx, email, RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Role: admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken разбирает и проверяет токен, возвращая его claims
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword хэширует пароль для засева администратора
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
