package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"trattoria/internal/auth"
	"trattoria/internal/domain"
	"trattoria/internal/logger"
	"trattoria/internal/payment"
	"trattoria/internal/repository"
	"trattoria/internal/service"
)

type Server struct {
	engine   *gin.Engine
	menu     *service.MenuService
	orders   *service.OrderService
	checkout *service.CheckoutService
	auth     *auth.Service
	log      *logger.Logger
}

func NewServer(menu *service.MenuService, orders *service.OrderService, checkout *service.CheckoutService, authSvc *auth.Service, log *logger.Logger) *Server {
	r := gin.New()
	s := &Server{engine: r, menu: menu, orders: orders, checkout: checkout, auth: authSvc, log: log}
	r.Use(s.requestLogger(), gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		menu := api.Group("/menu")
		menu.GET("", s.listMenu)
		menu.POST("", s.requireAdmin, s.createMenuItem)
		menu.PUT(":id", s.requireAdmin, s.updateMenuItem)
		menu.DELETE(":id", s.requireAdmin, s.deleteMenuItem)

		orders := api.Group("/orders")
		orders.POST("", s.placeOrder)
		orders.POST("/create-checkout-link", s.createCheckoutLink)
		orders.GET("", s.requireAdmin, s.listOrders)
		orders.PATCH(":id/status", s.requireAdmin, s.updateOrderStatus)

		api.POST("/admin/login", s.adminLogin)
	}
}

// Menu handlers

// @Summary List menu items
// @Tags menu
// @Produce json
// @Success 200 {array} domain.MenuItem
// @Router /menu [get]
func (s *Server) listMenu(c *gin.Context) {
	items, err := s.menu.List(c)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

type createMenuItemReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   *bool           `json:"available"`
}

// @Summary Create menu item
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body createMenuItemReq true "Menu item"
// @Success 201 {object} domain.MenuItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /menu [post]
func (s *Server) createMenuItem(c *gin.Context) {
	var req createMenuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	item, err := s.menu.Create(c, service.CreateMenuItemParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   req.Available,
	})
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, item)
}

type updateMenuItemReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Available   *bool            `json:"available"`
}

// @Summary Update menu item (partial)
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Param input body updateMenuItemReq true "Fields to update"
// @Success 200 {object} domain.MenuItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /menu/{id} [put]
func (s *Server) updateMenuItem(c *gin.Context) {
	var req updateMenuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	item, err := s.menu.Update(c, c.Param("id"), service.UpdateMenuItemParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   req.Available,
	})
	if err != nil {
		s.respondError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Delete menu item
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /menu/{id} [delete]
func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := s.menu.Delete(c, c.Param("id")); err != nil {
		s.respondError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

// Order handlers

type orderItemReq struct {
	ItemID         string `json:"item_id"`
	Quantity       int64  `json:"quantity"`
	Customizations string `json:"customizations"`
}

type placeOrderReq struct {
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Items []orderItemReq `json:"items"`
}

func toItemRequests(items []orderItemReq) []service.OrderItemRequest {
	out := make([]service.OrderItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, service.OrderItemRequest{
			ItemID:         it.ItemID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
		})
	}
	return out
}

// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body placeOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Router /orders [post]
func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	o, err := s.orders.PlaceOrder(c, req.Name, req.Email, toItemRequests(req.Items))
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary Create a hosted checkout link
// @Tags orders
// @Accept json
// @Produce json
// @Param input body placeOrderReq true "Order with customer email"
// @Success 200 {object} service.CheckoutResult
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /orders/create-checkout-link [post]
func (s *Server) createCheckoutLink(c *gin.Context) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	res, err := s.checkout.CreateCheckoutLink(c, req.Name, req.Email, toItemRequests(req.Items))
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} repository.OrderPage
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	f := repository.OrderFilter{Status: c.Query("status")}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	page, err := s.orders.List(c, f)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param input body updateStatusReq true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/status [patch]
func (s *Server) updateOrderStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	o, err := s.orders.SetStatus(c, c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		s.respondError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, o)
}

// Admin handlers

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /admin/login [post]
func (s *Server) adminLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	token, err := s.auth.Login(c, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// respondError переводит доменные ошибки в HTTP-статусы.
// notFound подставляется как текст для ErrNotFound; детали внутренних
// ошибок наружу не отдаются.
func (s *Server) respondError(c *gin.Context, err error, notFound string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
		return
	}
	var unavailable *domain.ItemUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusBadRequest, gin.H{"message": unavailable.Error()})
		return
	}
	var pe *payment.ProviderError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Payment provider request failed"})
		return
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
	default:
		s.log.Error("request_failed", requestID(c), "unhandled error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
