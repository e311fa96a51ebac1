package routes

import (
	"net/http"
	"time"

	"academix/handlers"
	"academix/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle carries every handler the router needs.
type HandlerBundle struct {
	Booking *handlers.BookingHandler
	Payment *handlers.PaymentHandler
	Refund  *handlers.RefundHandler
	Payout  *handlers.PayoutHandler
	Webhook *handlers.WebhookHandler
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthUserMiddleware())
		api.POST("/order", hb.Booking.CreateOrderHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.GET("", hb.Booking.ListBookingsHandler)
		api.DELETE("/:id", hb.Booking.CancelOrderHandler)
	}
}

// RegisterPaymentRoutes registers the client-side verification endpoint.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthUserMiddleware())
		api.POST("/verify", hb.Payment.VerifyPaymentHandler)
	}
}

// RegisterWebhookRoutes registers the gateway callback endpoint. No auth
// middleware here: the signature on the body is the authentication.
func RegisterWebhookRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.POST("/api/webhooks/razorpay", hb.Webhook.HandleWebhook)
}

// RegisterAdminRoutes registers operator endpoints for refunds and payouts.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.JWTAuthAdminMiddleware())
		admin.POST("/refunds", hb.Refund.CreateRefundHandler)
		admin.GET("/payouts", hb.Payout.ListPayoutsHandler)
		admin.GET("/payouts/:id", hb.Payout.GetPayoutHandler)
		admin.POST("/payouts/:id/transfer", hb.Payout.InitiateTransferHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Academix"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Razorpay-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
