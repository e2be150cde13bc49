// routes/routes.go
package routes

import (
	"net/http"

	"candle-shop/controllers"
	"candle-shop/middleware"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted by RegisterRoutes
type Controllers struct {
	User     *controllers.UserController
	Address  *controllers.AddressController
	Product  *controllers.ProductController
	Review   *controllers.ReviewController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Feedback *controllers.FeedbackController
	Admin    *controllers.AdminController
	Message  *controllers.MessageController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, verifier middleware.TokenVerifier, limiter *middleware.RateLimiter, metricsHandler http.Handler) {
	router.Handle("/metrics", metricsHandler).Methods("GET")
	router.HandleFunc("/health", c.Health.Health).Methods("GET")

	// Public routes
	public := router.NewRoute().Subrouter()
	public.Use(limiter.Handler)
	public.HandleFunc("/auth/register", c.User.Register).Methods("POST")
	public.HandleFunc("/auth/login", c.User.Login).Methods("POST")
	public.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	public.HandleFunc("/products/{id:[0-9]+}", c.Product.GetProductByID).Methods("GET")
	public.HandleFunc("/reviews", c.Review.GetReviews).Methods("GET")
	public.HandleFunc("/cart/quote", c.Cart.QuoteCart).Methods("POST")
	public.HandleFunc("/messages", c.Message.SubmitMessage).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(verifier))
	admin.Use(middleware.AdminMiddleware)
	admin.Use(limiter.Handler)
	admin.HandleFunc("/orders", c.Admin.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/stats", c.Admin.GetStats).Methods("GET")
	admin.HandleFunc("/orders/{id:[0-9]+}/status", c.Admin.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}", c.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id:[0-9]+}", c.Product.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/messages", c.Message.GetMessages).Methods("GET")
	admin.HandleFunc("/messages/{id:[0-9]+}/reply", c.Message.ReplyToMessage).Methods("POST")

	// Protected routes
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(verifier))
	protected.Use(limiter.Handler)
	protected.HandleFunc("/profile", c.User.GetProfile).Methods("GET")

	protected.HandleFunc("/addresses", c.Address.GetAddresses).Methods("GET")
	protected.HandleFunc("/addresses", c.Address.AddAddress).Methods("POST")

	protected.HandleFunc("/orders", c.Order.CreateOrder).Methods("POST")
	protected.HandleFunc("/orders/mine", c.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{id:[0-9]+}", c.Order.GetOrder).Methods("GET")
	protected.HandleFunc("/orders/{id:[0-9]+}/feedback", c.Feedback.SubmitFeedback).Methods("POST")
	protected.HandleFunc("/orders/{id:[0-9]+}/feedback", c.Feedback.GetFeedback).Methods("GET")
}
