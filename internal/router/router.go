package router

import (
	"time"

	"vendaflow/internal/config"
	"vendaflow/internal/handler"
	"vendaflow/internal/infra"
	"vendaflow/internal/middleware"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
	"vendaflow/internal/service"
	"vendaflow/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, llmCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	llmClient := infra.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	zapiClient := infra.NewZAPIClient(cfg.ZAPIBaseURL, cfg.ZAPIInstanceID, cfg.ZAPIToken)
	storage, err := infra.NewStorage(cfg.StoragePath, cfg.PublicURL)
	if err != nil {
		panic(err)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	productRepo := repository.NewProductRepository(db)
	rejectionRepo := repository.NewKitRejectionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	stockRepo := repository.NewStockRepository(db)
	paymentMethodRepo := repository.NewPaymentMethodRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, orgRepo, cfg)
	orgSvc := service.NewOrganizationService(orgRepo, userRepo)
	leadSvc := service.NewLeadService(leadRepo)
	stockSvc := service.NewStockService(productRepo, stockRepo)
	sessions := service.NewDisclosureSessionStore(rdb)
	productSvc := service.NewProductService(productRepo, rejectionRepo, stockSvc, sessions)
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, leadRepo, productRepo, userRepo, stockSvc, dispatcher)
	paymentMethodSvc := service.NewPaymentMethodService(paymentMethodRepo)
	romaneioSvc := service.NewRomaneioService(saleRepo, orgRepo, infra.NewRomaneioPDF(), cfg.PublicURL)

	whatsappSvc := service.NewWhatsAppService(userRepo, leadRepo, leadSvc, llmClient, llmCB, zapiClient, rdb, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	orgsH := handler.NewOrganizationsHandler(orgSvc)
	leadsH := handler.NewLeadsHandler(leadSvc)
	productsH := handler.NewProductsHandler(productSvc, stockSvc)
	salesH := handler.NewSalesHandler(saleSvc, storage)
	paymentMethodsH := handler.NewPaymentMethodsHandler(paymentMethodSvc)
	romaneioH := handler.NewRomaneioHandler(romaneioSvc)
	whatsappH := handler.NewWhatsAppHandler(whatsappSvc, cfg.ZAPIWebhookToken)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.POST("/webhooks/whatsapp", whatsappH.Webhook)
	r.Static("/uploads", storage.BasePath())

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	// Super admin surface — tenant management, no org scope
	admin := r.Group("/admin", jwtMW, middleware.RequireRole(model.RoleSuperAdmin))
	{
		admin.POST("/organizations", orgsH.Create)
		admin.GET("/organizations", orgsH.List)
		admin.PUT("/organizations/:id", orgsH.Update)
		admin.POST("/organizations/:id/suspend", orgsH.Suspend)
		admin.POST("/organizations/:id/reactivate", orgsH.Reactivate)
	}

	// Tenant surface — everything below runs scoped to the token's org
	v1 := r.Group("/v1", jwtMW, middleware.TenantScope())
	{
		org := v1.Group("/organization")
		{
			org.GET("", orgsH.Me)
			org.GET("/onboarding", orgsH.OnboardingStatus)
			org.POST("/onboarding", middleware.RequireRole(model.RoleAdmin), orgsH.SaveOnboarding)
		}

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.POST("/:id/reactivate", usersH.Reactivate)
		}

		leads := v1.Group("/leads")
		{
			leads.POST("", leadsH.Create)
			leads.GET("", leadsH.List)
			leads.GET("/:id", leadsH.Get)
			leads.PUT("/:id", leadsH.Update)
			leads.POST("/:id/answers", leadsH.SaveAnswers)
		}

		// Catalog reads are open to all roles; writes are admin/manager
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/disclosure", productsH.Disclosure)
		v1.POST("/products/:id/reject-kit", productsH.RejectKit)
		v1.POST("/products/:id/reveal-tier", productsH.RevealTier)
		prods := v1.Group("/products", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.POST("/:id/reactivate", productsH.Reactivate)
			prods.POST("/:id/stock/adjust", productsH.AdjustStock)
		}
		v1.GET("/stock/movements", middleware.RequireRole(model.RoleAdmin, model.RoleManager), productsH.ListMovements)

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.POST("/price-check", salesH.PriceCheck)
			sales.GET("/authorizations", salesH.ListAuthorizations)
			sales.POST("/authorizations",
				middleware.RequirePermission(model.PermAuthorizeDiscount), salesH.GrantAuthorization)
			sales.GET("/:id", salesH.Get)
			sales.POST("/:id/validate-expedition",
				middleware.RequirePermission(model.PermValidateExpedition), salesH.ValidateExpedition)
			sales.POST("/:id/dispatch",
				middleware.RequirePermission(model.PermDispatch), salesH.Dispatch)
			sales.POST("/:id/deliver",
				middleware.RequirePermission(model.PermDeliver), salesH.Deliver)
			sales.POST("/:id/confirm-payment",
				middleware.RequirePermission(model.PermConfirmPayment), salesH.ConfirmPayment)
			sales.POST("/:id/cancel",
				middleware.RequirePermission(model.PermCancelSale), salesH.Cancel)
			sales.POST("/:id/return", salesH.Return)
			sales.POST("/:id/reschedule", salesH.Reschedule)
			sales.POST("/:id/payment-proof", salesH.AttachPaymentProof)
			sales.POST("/:id/invoice", salesH.AttachInvoice)
		}

		pm := v1.Group("/payment-methods")
		{
			pm.GET("", paymentMethodsH.List)
			pm.GET("/:id", paymentMethodsH.Get)
			pmAdmin := pm.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
			{
				pmAdmin.POST("", paymentMethodsH.Create)
				pmAdmin.PUT("/:id", paymentMethodsH.Update)
				pmAdmin.DELETE("/:id", paymentMethodsH.Deactivate)
				pmAdmin.POST("/:id/reactivate", paymentMethodsH.Reactivate)
			}
		}

		v1.GET("/romaneio", romaneioH.Get)
		v1.GET("/romaneio/pdf", romaneioH.PDF)

		wa := v1.Group("/whatsapp", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			wa.GET("/status", whatsappH.InstanceStatus)
			wa.GET("/qr-code", whatsappH.QRCode)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
