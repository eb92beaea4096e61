package router

import (
	"net/http"

	"github.com/DHFin/dhf-pay-back-private/config"
	"github.com/DHFin/dhf-pay-back-private/internal/handler"
	"github.com/DHFin/dhf-pay-back-private/internal/middleware"
	"github.com/DHFin/dhf-pay-back-private/internal/repository"
	"github.com/DHFin/dhf-pay-back-private/internal/service"
	"github.com/DHFin/dhf-pay-back-private/pkg/mempool"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, mailer service.Mailer, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// External collaborators
	feeOracle := mempool.NewClient(cfg.Mempool.BaseURL, cfg.Mempool.Timeout)

	// Services
	paymentSvc := service.NewPaymentService(paymentRepo, storeRepo, mailer, log)
	transactionSvc := service.NewTransactionService(transactionRepo, paymentRepo, storeRepo, userRepo, feeOracle, mailer, log)

	// Handlers
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tx := r.Group("/transaction")
	{
		tx.POST("", transactionHandler.Create)
		tx.POST("/generateWallet", transactionHandler.GenerateWallet)
		tx.GET("", middleware.BearerToken(), transactionHandler.List)
		tx.GET("/last/:id", transactionHandler.Last)
		tx.GET("/btc/commission", transactionHandler.BtcCommission)
		tx.GET("/btc/:id", transactionHandler.BtcByPayment)
		tx.GET("/:txHash", middleware.BearerToken(), middleware.UserRequired(userRepo), transactionHandler.GetByTxHash)
		tx.PATCH("/:txHash", transactionHandler.Reject)
		tx.PUT("/:txHash", transactionHandler.Reject)
	}

	pay := r.Group("/payment")
	{
		pay.POST("", middleware.BearerToken(), paymentHandler.Create)
		pay.POST("/sendBill", paymentHandler.SendBill)
		pay.GET("/:id", middleware.BearerToken(), middleware.UserRequired(userRepo), paymentHandler.GetByID)
	}

	return r
}
