package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trattoria/internal/auth"
	"trattoria/internal/config"
	"trattoria/internal/domain"
	httpapi "trattoria/internal/http"
	"trattoria/internal/logger"
	"trattoria/internal/payment"
	"trattoria/internal/repository"
	"trattoria/internal/service"

	_ "trattoria/docs"
)

// @title Trattoria API
// @version 1.0
// @description Restaurant ordering backend: menu catalog, orders, checkout links.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.NewLogger("trattoria")

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup", "", "load config", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		menuRepo  repository.MenuRepository
		orderRepo repository.OrderRepository
		adminRepo repository.AdminRepository
	)
	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("startup", "", "connect database", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Bootstrap(ctx); err != nil {
			log.Error("startup", "", "bootstrap schema", err)
			os.Exit(1)
		}
		menuRepo = repository.NewPostgresMenu(pg)
		orderRepo = repository.NewPostgresOrders(pg)
		adminRepo = repository.NewPostgresAdmins(pg)
		log.Info("startup", "", "using postgres store")
	} else {
		store := repository.NewMemoryStore()
		menuRepo = store
		orderRepo = repository.NewMemoryOrders(store)
		adminRepo = repository.NewMemoryAdmins(store)
		log.Info("startup", "", "using in-memory store")
	}

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := seedAdmin(ctx, adminRepo, cfg.Admin); err != nil {
			log.Error("startup", "", "seed admin", err)
			os.Exit(1)
		}
		log.Info("startup", "", "admin user seeded")
	}

	menuSvc := service.NewMenuService(menuRepo)
	ordersSvc := service.NewOrderService(menuRepo, orderRepo)
	provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.Token)
	checkoutSvc := service.NewCheckoutService(menuRepo, orderRepo, provider,
		cfg.Payment.LocationID, cfg.Payment.RedirectURL, cfg.Payment.Currency)
	authSvc := auth.NewService(adminRepo, cfg.JWTSecret)

	srv := httpapi.NewServer(menuSvc, ordersSvc, checkoutSvc, authSvc, log)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Info("startup", "", "HTTP server listening on "+httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "", "serve", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "", "shutdown", err)
	}
}

func seedAdmin(ctx context.Context, admins repository.AdminRepository, cfg config.AdminConfig) error {
	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	return admins.Create(ctx, &domain.AdminUser{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})
}
