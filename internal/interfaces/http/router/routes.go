package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers of the shop API
type Handlers struct {
	Users     *handler.UserHandler
	Products  *handler.ProductHandler
	Cart      *handler.CartHandler
	Orders    *handler.OrderHandler
	Reviews   *handler.ReviewHandler
	Dashboard *handler.DashboardHandler
}

// Guards are the access-control middleware applied per route.
// AuthRateLimit may be nil.
type Guards struct {
	Authenticate  gin.HandlerFunc
	RequireAdmin  gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
}

// authed prepends authentication to handlers
func (g Guards) authed(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{g.Authenticate}, handlers...)
}

// admin prepends authentication and the admin check to handlers
func (g Guards) admin(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{g.Authenticate, g.RequireAdmin}, handlers...)
}

// credentials prepends the credential endpoint rate limit when configured
func (g Guards) credentials(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	if g.AuthRateLimit == nil {
		return handlers
	}
	return append([]gin.HandlerFunc{g.AuthRateLimit}, handlers...)
}

// ShopRoutes returns the route tables of every resource
func ShopRoutes(h Handlers, g Guards) []RouteRegistrar {
	users := NewDomainGroup("users", "/users").
		POST("/register", g.credentials(h.Users.Register)...).
		POST("/login", g.credentials(h.Users.Login)...).
		POST("/logout", g.authed(h.Users.Logout)...).
		GET("/profile", g.authed(h.Users.GetProfile)...).
		PUT("/profile", g.authed(h.Users.UpdateProfile)...).
		GET("", g.admin(h.Users.List)...).
		GET("/:id", g.admin(h.Users.GetByID)...).
		PUT("/:id", g.admin(h.Users.Update)...).
		DELETE("/:id", g.admin(h.Users.Delete)...)

	products := NewDomainGroup("products", "/products").
		GET("", h.Products.List).
		GET("/featured", h.Products.Featured).
		GET("/categories", h.Products.Categories).
		GET("/top", h.Products.Top).
		GET("/stats", g.admin(h.Products.Stats)...).
		GET("/:id", h.Products.GetByID).
		POST("", g.admin(h.Products.Create)...).
		PUT("/:id", g.admin(h.Products.Update)...).
		DELETE("/:id", g.admin(h.Products.Delete)...)

	cart := NewDomainGroup("cart", "/cart").
		Use(g.Authenticate).
		GET("", h.Cart.Get).
		POST("", h.Cart.AddItem).
		DELETE("", h.Cart.Clear).
		PUT("/:productId", h.Cart.UpdateItem).
		DELETE("/:productId", h.Cart.RemoveItem)

	orders := NewDomainGroup("orders", "/orders").
		Use(g.Authenticate).
		POST("", h.Orders.Create).
		GET("/myorders", h.Orders.MyOrders).
		PUT("/cancel/:id", h.Orders.Cancel).
		GET("/all", g.RequireAdmin, h.Orders.ListAll).
		GET("/recent", g.RequireAdmin, h.Orders.Recent).
		GET("/stats", g.RequireAdmin, h.Orders.Stats).
		GET("/analytics", g.RequireAdmin, h.Orders.Analytics).
		GET("/:id", h.Orders.GetByID).
		GET("/:id/invoice", h.Orders.Invoice).
		PUT("/:id/status", g.RequireAdmin, h.Orders.UpdateStatus)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		Use(g.Authenticate, g.RequireAdmin).
		GET("/stats", h.Dashboard.Stats).
		GET("/monthly-revenue", h.Dashboard.MonthlyRevenue)

	reviews := NewDomainGroup("reviews", "/reviews").
		POST("", g.authed(h.Reviews.Create)...).
		GET("/product/:id", h.Reviews.ListForProduct).
		GET("/user", g.authed(h.Reviews.ListMine)...).
		GET("/order/:orderId", g.authed(h.Reviews.Reviewable)...).
		DELETE("/:id", g.authed(h.Reviews.Delete)...)

	return []RouteRegistrar{users, products, cart, orders, dashboard, reviews}
}
