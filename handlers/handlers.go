package handlers

import (
	"net/http"
	"os"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/cart"
	"ecommerce-backend/internal/checkout"
	"ecommerce-backend/internal/orders"
	"ecommerce-backend/internal/payments"
	"ecommerce-backend/internal/products"
	"ecommerce-backend/internal/staff"
	"ecommerce-backend/internal/stores/kafka"
	"ecommerce-backend/internal/users"
	"ecommerce-backend/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	u        *users.Conf
	p        *products.Conf
	c        *cart.Conf
	ck       *checkout.Conf
	o        *orders.Conf
	pay      *payments.Conf
	st       *staff.Conf
	k        *kafka.Conf // nil when no brokers are configured; events are skipped
	keys     *auth.Keys
	validate *validator.Validate
}

func NewHandler(u *users.Conf, p *products.Conf, c *cart.Conf, ck *checkout.Conf,
	o *orders.Conf, pay *payments.Conf, st *staff.Conf, k *kafka.Conf, keys *auth.Keys) *Handler {
	return &Handler{
		u:        u,
		p:        p,
		c:        c,
		ck:       ck,
		o:        o,
		pay:      pay,
		st:       st,
		k:        k,
		keys:     keys,
		validate: validator.New(),
	}
}

// API builds the gin engine with all routes mounted under /api.
func API(h *Handler) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(h.keys)
	if err != nil {
		panic(err)
	}

	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/health", HealthCheck)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/admin/register", h.AdminRegister)
			authGroup.POST("/admin/login", h.AdminLogin)
		}

		productGroup := api.Group("/products")
		{
			productGroup.GET("", h.ListProducts)
			productGroup.GET("/:id", h.GetProduct)
			productGroup.Use(m.Authentication())
			productGroup.POST("", m.Authorize(h.CreateProduct, auth.RoleAdmin))
			productGroup.PUT("/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
			productGroup.DELETE("/:id", m.Authorize(h.DeleteProduct, auth.RoleAdmin))
		}

		cartGroup := api.Group("/cart")
		cartGroup.Use(m.Authentication())
		{
			cartGroup.GET("", m.Authorize(h.GetCart, auth.RoleCustomer))
			cartGroup.POST("/items", m.Authorize(h.AddToCart, auth.RoleCustomer))
			cartGroup.DELETE("/items/:id", m.Authorize(h.RemoveFromCart, auth.RoleCustomer))
		}

		orderGroup := api.Group("/orders")
		orderGroup.Use(m.Authentication())
		{
			orderGroup.POST("", m.Authorize(h.Checkout, auth.RoleCustomer))
			orderGroup.GET("", m.Authorize(h.ListMyOrders, auth.RoleCustomer))
			orderGroup.GET("/all", m.Authorize(h.ListAllOrders, auth.RoleAdmin))
		}

		paymentGroup := api.Group("/payments")
		paymentGroup.Use(m.Authentication())
		{
			paymentGroup.GET("", m.Authorize(h.ListPayments, auth.RoleAdmin))
		}

		staffGroup := api.Group("/staff")
		staffGroup.Use(m.Authentication())
		{
			staffGroup.GET("", m.Authorize(h.ListStaff, auth.RoleAdmin))
			staffGroup.POST("", m.Authorize(h.AddStaff, auth.RoleAdmin))
			staffGroup.DELETE("/:id", m.Authorize(h.DeleteStaff, auth.RoleAdmin))
		}
	}

	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
