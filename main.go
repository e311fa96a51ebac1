package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academix/config"
	"academix/cron"
	"academix/database"
	auditRepoPkg "academix/database/repository/audit"
	batchRepoPkg "academix/database/repository/batch"
	bookingRepoPkg "academix/database/repository/booking"
	payoutRepoPkg "academix/database/repository/payout"
	settingsRepoPkg "academix/database/repository/settings"
	transactionRepoPkg "academix/database/repository/transaction"
	"academix/handlers"
	"academix/middleware"
	"academix/routes"
	"academix/services/booking"
	"academix/services/gateway"
	"academix/services/notification"
	"academix/services/payment"
	"academix/services/payout"
	"academix/services/tasks"
	"academix/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Gateway client and payout job queue.
	gatewayClient := gateway.NewRazorpayClient(
		config.AppConfig.RazorpayKeyID,
		config.AppConfig.RazorpayKeySecret,
		config.AppConfig.RazorpayWebhookSecret,
	)
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	enqueuer := tasks.NewAsynqEnqueuer(asynqClient, logger)

	// Repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	transactionRepo := transactionRepoPkg.NewMongoTransactionRepo()
	payoutRepo := payoutRepoPkg.NewMongoPayoutRepo()
	batchRepo := batchRepoPkg.NewMongoBatchRepo()
	settingsRepo := settingsRepoPkg.NewMongoSettingsRepo(utils.GetCacheClient())
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// Services.
	notifier := notification.NewDefaultNotificationService()

	bookingService := &booking.DefaultBookingService{
		BookingRepo:     bookingRepo,
		TransactionRepo: transactionRepo,
		BatchRepo:       batchRepo,
		SettingsRepo:    settingsRepo,
		Gateway:         gatewayClient,
		Logger:          logger,
	}

	reconciler := &payment.DefaultReconciler{
		BookingRepo:     bookingRepo,
		TransactionRepo: transactionRepo,
		PayoutRepo:      payoutRepo,
		AuditRepo:       auditRepo,
		Gateway:         gatewayClient,
		Enqueuer:        enqueuer,
		Notifier:        notifier,
		Logger:          logger,
	}

	payoutService := &payout.DefaultPayoutService{
		PayoutRepo:  payoutRepo,
		BookingRepo: bookingRepo,
		BatchRepo:   batchRepo,
		AuditRepo:   auditRepo,
		Gateway:     gatewayClient,
		Enqueuer:    enqueuer,
		Notifier:    notifier,
		Logger:      logger,
	}

	// Background payout worker.
	cron.InitPayoutWorker(payoutService)

	// Handlers.
	handlerBundle := &routes.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService, logger),
		Payment: handlers.NewPaymentHandler(reconciler, logger),
		Refund:  handlers.NewRefundHandler(reconciler, logger),
		Payout:  handlers.NewPayoutHandler(payoutService, auditRepo, logger),
		Webhook: handlers.NewWebhookHandler(gatewayClient, reconciler, payoutService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
