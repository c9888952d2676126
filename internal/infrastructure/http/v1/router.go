package v1

import (
	"github.com/gin-gonic/gin"

	"medledger/internal/domain/auth"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/catalogs/vendor"
	"medledger/internal/domain/documents/purchaseorder"
	"medledger/internal/domain/documents/sale"
	"medledger/internal/domain/registers/settlement"
	"medledger/internal/domain/registers/stock"
	"medledger/internal/domain/reports"
	"medledger/internal/infrastructure/http/v1/handlers"
	"medledger/internal/infrastructure/http/v1/middleware"
	"medledger/internal/infrastructure/storage/postgres"
	"medledger/internal/infrastructure/storage/postgres/catalog_repo"
	"medledger/internal/infrastructure/storage/postgres/document_repo"
	"medledger/internal/infrastructure/storage/postgres/register_repo"
	"medledger/internal/infrastructure/storage/postgres/report_repo"
	"medledger/pkg/logger"
	"medledger/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager manages database transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Audit records entity changes (optional)
	Audit *postgres.AuditService

	// LowStockThreshold is the default quantity at or below which a
	// medicine counts as low stock in reports
	LowStockThreshold int64
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	publicAuth := rg.Group("/auth")

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalogs")
	baseHandler := handlers.NewBaseHandler()

	num := numerator.New(cfg.Pool.Unwrap())
	stockService := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))

	// --- MEDICINES ---
	{
		repo := catalog_repo.NewMedicineRepo(cfg.TxManager)
		service := medicine.NewService(repo, cfg.TxManager, stockService, num)
		handler := handlers.NewMedicineHandler(baseHandler, service)

		group := catalogs.Group("/medicines")
		RegisterCatalogRoutes(group, handler)
		group.GET("/barcode/:barcode", handler.FindByBarcode)
	}

	// --- VENDORS ---
	{
		repo := catalog_repo.NewVendorRepo(cfg.TxManager)
		service := vendor.NewService(repo, cfg.TxManager, num)
		handler := handlers.NewVendorHandler(baseHandler, service)

		RegisterCatalogRoutes(catalogs.Group("/vendors"), handler)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	num := numerator.New(cfg.Pool.Unwrap())
	stockRepo := register_repo.NewStockRepo(cfg.TxManager)
	stockService := stock.NewService(stockRepo)
	medicineRepo := catalog_repo.NewMedicineRepo(cfg.TxManager)
	vendorRepo := catalog_repo.NewVendorRepo(cfg.TxManager)

	// --- SALES ---
	{
		repo := document_repo.NewSaleRepo(cfg.TxManager)
		service := sale.NewService(repo, medicineRepo, stockService, num, cfg.TxManager)
		handler := handlers.NewSaleHandler(baseHandler, service, cfg.Audit)

		handler.RegisterRoutes(docsGroup.Group("/sales"))
	}

	// --- PURCHASE ORDERS ---
	{
		repo := document_repo.NewPurchaseOrderRepo(cfg.TxManager)
		service := purchaseorder.NewService(repo, vendorRepo, medicineRepo, stockService, num, cfg.TxManager)
		handler := handlers.NewPurchaseOrderHandler(baseHandler, service, cfg.Audit)

		handler.RegisterRoutes(docsGroup.Group("/purchase-orders"))
	}

	// --- PAYMENTS ---
	{
		repo := register_repo.NewSettlementRepo(cfg.TxManager)
		orderRepo := document_repo.NewPurchaseOrderRepo(cfg.TxManager)
		service := settlement.NewService(repo, medicineRepo, orderRepo, cfg.TxManager)
		handler := handlers.NewPaymentsHandler(baseHandler, service, cfg.Audit)

		handler.RegisterRoutes(rg.Group("/payments"))
	}
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	stockRepo := register_repo.NewStockRepo(cfg.TxManager)
	stockService := stock.NewService(stockRepo)
	stockHandler := handlers.NewStockHandler(baseHandler, stockService, stockRepo)

	stockHandler.RegisterRoutes(registers.Group("/stock"))
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo, cfg.LowStockThreshold)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportHandler.RegisterRoutes(reportsGroup)
}
