package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	catalogapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
	cmsapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/cms"
	contactapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/contact"
	crmapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
	currencyapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/currency"
	documentapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	identityapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/identity"
	notificationapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	reportapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/report"
	settingapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/setting"
	shopapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	uploadapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/upload"
	webquoteapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/webquote"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/billing"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/cache"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/event"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/export"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/mail"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/printing"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/sanitize"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/scheduler"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/storage"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/handler"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Le Tatche Bois API
//	@version		1.0
//	@description	Back office de la menuiserie Le Tatche Bois : CRM, documents commerciaux, catalogue et boutique

//	@contact.name	Le Tatche Bois
//	@contact.url	https://github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	version    = "1.0.0"
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: timeFormat,
		Service:    cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry: traces, metrics and logs share the collector endpoint
	var (
		providers *telemetry.Providers
		profiler  *telemetry.Profiler
	)
	if cfg.Telemetry.Enabled {
		providers, err = telemetry.Setup(ctx, telemetry.Config{
			ServiceName:       cfg.Telemetry.ServiceName,
			ServiceVersion:    version,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			Insecure:          cfg.Telemetry.Insecure,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize telemetry", zap.Error(err))
		}
		log = providers.BridgeLogger(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	}
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err = telemetry.StartProfiler(telemetry.ProfilerConfig{
			ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
			ApplicationName: cfg.Telemetry.ServiceName,
		}, log)
		if err != nil {
			log.Warn("Continuous profiling unavailable", zap.Error(err))
		} else {
			providers.EnableSpanProfiles()
		}
	}
	defer zap.ReplaceGlobals(log)()
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Le Tatche Bois back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL))

	// Initialize database connection with custom logger
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	var dbInstrumentation *telemetry.GormInstrumentation
	if cfg.Telemetry.Enabled {
		dbInstrumentation, err = telemetry.InstrumentGorm(db.DB, providers.MeterFor("db.client"), telemetry.GormConfig{
			Tracing:       cfg.Telemetry.DBTraceEnabled,
			WithVariables: cfg.Telemetry.DBLogFullSQL,
			SlowQuery:     cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err != nil {
			log.Warn("Database instrumentation unavailable", zap.Error(err))
		}
	}

	// Initialize repositories
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	cmsRepo := persistence.NewGormCMSRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	appointmentRepo := persistence.NewGormAppointmentRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryLogRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	sequenceStore := persistence.NewGormSequenceStore(db.DB)

	// Cache: Redis when configured, in-memory stores otherwise
	caches, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := caches.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWT)
	guard := publicform.NewGuard(caches.Throttle(), sanitize.NewPolicy(), publicform.Config{
		Limit:  cfg.HTTP.PublicFormLimit,
		Window: cfg.HTTP.PublicFormWindow,
	}, log)

	// Application services
	settingService := settingapp.NewSettingService(settingRepo, auditRepo, log)
	currencyService := currencyapp.NewCurrencyService(currencyRepo, auditRepo, log)
	auditService := auditapp.NewAuditService(auditRepo, log)
	userService := identityapp.NewUserService(userRepo, caches.TokenBlacklist(), auditRepo, cfg.JWT.RefreshTokenExpiration, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, caches.TokenBlacklist(), auditRepo, log)

	catalogService := catalogapp.NewCatalogService(itemRepo, categoryRepo, supplierRepo,
		catalogapp.UsageCheckers{documentRepo, orderRepo}, log)
	stockService := catalogapp.NewStockService(itemRepo, movementRepo,
		persistence.NewGormCatalogTransactionScope(db.DB), log)

	crmScope := persistence.NewGormCRMTransactionScope(db.DB)
	leadService := crmapp.NewLeadService(leadRepo, activityRepo, crmScope, log)
	clientService := crmapp.NewClientService(clientRepo, projectRepo, documentRepo, paymentRepo, auditRepo, crmScope, log)
	projectService := crmapp.NewProjectService(projectRepo, clientRepo, activityRepo, auditRepo, crmScope, log)
	appointmentService := crmapp.NewAppointmentService(appointmentRepo, log)

	documentScope := persistence.NewGormTransactionScope(db.DB)
	documentService := documentapp.NewDocumentService(documentRepo, deliveryRepo, auditRepo, documentScope, log)
	documentService.SetClientDirectory(clientService)
	paymentService := documentapp.NewPaymentService(paymentRepo, documentRepo, documentScope, log)
	sequenceService := documentapp.NewSequenceService(sequenceStore, documentRepo, auditRepo, log)

	notificationService := notificationapp.NewNotificationService(notificationRepo, userService, log)
	appointmentService.SetReminderNotifier(notificationService)

	reportService := reportapp.NewReportService(reportRepo, caches.ReportCache(), auditRepo, log)
	reportService.RegisterEncoder(report.FormatCSV, export.NewCSVEncoder())
	reportService.RegisterEncoder(report.FormatXLSX, export.NewXLSXEncoder())

	contentService := cmsapp.NewContentService(cmsRepo, auditRepo, log)
	quoteService := webquoteapp.NewQuoteService(quoteRepo, auditRepo,
		persistence.NewGormQuoteTransactionScope(db.DB), guard, leadService, log)
	orderService := shopapp.NewOrderService(orderRepo, persistence.NewGormShopTransactionScope(db.DB), log)

	// Mail: the sender only logs when SMTP is disabled
	mailer, err := mail.NewMailer(mail.NewSender(cfg.Mail, log), mail.Options{
		Brand:       cfg.App.Name,
		SiteURL:     cfg.App.BaseURL,
		AdminEmails: cfg.Mail.AdminEmails,
		ReplyTo:     cfg.Mail.From,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	mailer.SetRecipientSource(settingService)
	notificationService.SetEmailer(mailer, settingService)
	orderService.SetNotifier(mailer)
	messageService := contactapp.NewMessageService(contactRepo, auditRepo, guard, mailer,
		contactapp.Sender{Email: cfg.Mail.From, Name: cfg.Mail.FromName}, log)

	// Stripe checkout is optional, cash on delivery and bank transfer work without it
	var (
		gateway        shopapp.PaymentGateway
		webhookService *shopapp.WebhookService
	)
	if cfg.Stripe.Enabled() {
		stripeAdapter, err := billing.NewStripeAdapter(billing.Config{
			SecretKey:  cfg.Stripe.SecretKey,
			Live:       cfg.App.IsProduction(),
			Currency:   cfg.Stripe.Currency,
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe", zap.Error(err))
		}
		gateway = stripeAdapter
		webhookService = shopapp.NewWebhookService(shopapp.WebhookServiceConfig{
			OrderRepo:     orderRepo,
			AuditRepo:     auditRepo,
			Idempotency:   caches.IdempotencyStore(),
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Logger:        log,
		})
	}
	checkoutService := shopapp.NewCheckoutService(orderRepo, gateway, auditRepo, log)

	// Object storage for uploads and archived PDFs
	store, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	uploadService := uploadapp.NewUploadService(store, auditRepo, cfg.Storage.MaxUploadSize, log)

	var chrome *printing.ChromedpRenderer
	if cfg.PDF.Enabled {
		chrome = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.PDF.Timeout,
			RemoteURL:      cfg.PDF.RemoteURL,
			NoSandbox:      cfg.PDF.NoSandbox,
			MaxTabs:        cfg.PDF.MaxTabs,
			Logger:         log,
		})
		renderer, err := printing.NewDocumentRenderer(chrome, settingService)
		if err != nil {
			log.Fatal("Failed to load document templates", zap.Error(err))
		}
		documentService.SetArchiver(renderer, store)
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(auditapp.NewEventHandler(auditService, log))
	// mail goes out off the request path and at most once per event
	eventBus.SubscribeWith(
		event.NewIdempotentHandler("notifications", notificationapp.NewEventHandler(notificationService, log), caches.IdempotencyStore(), log),
		nil, event.Async())
	eventBus.Subscribe(reportapp.NewCacheInvalidator(reportService, log))

	var businessMetrics *telemetry.BusinessMetrics
	if providers != nil {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  providers.MeterFor("ltb-business"),
			Logger: log,
			Gauges: telemetry.NewGormGaugeSource(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
		} else {
			eventBus.Subscribe(businessMetrics)
		}
	}

	stockService.SetEventPublisher(eventBus)
	leadService.SetEventPublisher(eventBus)
	clientService.SetEventPublisher(eventBus)
	projectService.SetEventPublisher(eventBus)
	appointmentService.SetEventPublisher(eventBus)
	documentService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	messageService.SetEventPublisher(eventBus)
	quoteService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	checkoutService.SetEventPublisher(eventBus)
	if webhookService != nil {
		webhookService.SetEventPublisher(eventBus)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if businessMetrics != nil {
		businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
	}

	// Reference data and the first administrator
	if err := currencyService.EnsureDefaults(ctx); err != nil {
		log.Error("Failed to seed currencies", zap.Error(err))
	}
	if cfg.Admin.Email != "" {
		created, err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			log.Error("Failed to bootstrap administrator", zap.Error(err))
		} else if created {
			log.Info("Administrator account created", zap.String("email", cfg.Admin.Email))
		}
	}

	// Background jobs
	var (
		jobScheduler *scheduler.Scheduler
		cronTrigger  *scheduler.CronTrigger
	)
	if cfg.Scheduler.Enabled {
		jobs := notificationapp.NewJobs(notificationService, documentService, appointmentService,
			stockService, quoteService, log)
		jobs.SetWindows(cfg.Scheduler.QuoteExpiryWindow, cfg.Scheduler.AppointmentReminderFor)

		jobScheduler = scheduler.NewScheduler(scheduler.SchedulerConfig{
			MaxConcurrentJobs: cfg.Scheduler.Workers,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     2,
			RetryDelay:        time.Minute,
		}, log)
		jobScheduler.Register("overdue-invoices", jobs.CheckOverdueInvoices)
		jobScheduler.Register("expiring-quotes", jobs.CheckExpiringQuotes)
		jobScheduler.Register("appointment-reminders", jobs.SendAppointmentReminders)
		jobScheduler.Register("low-stock", jobs.LowStockDigest)
		jobScheduler.Register("expire-quote-requests", jobs.ExpireQuoteRequests)

		cronTrigger = scheduler.NewCronTrigger(jobScheduler, log)
		schedules := map[string]string{
			"overdue-invoices":      cfg.Scheduler.OverdueCronSchedule,
			"expiring-quotes":       cfg.Scheduler.ExpiringCronSchedule,
			"appointment-reminders": cfg.Scheduler.ReminderCronSchedule,
			"low-stock":             cfg.Scheduler.LowStockCronSchedule,
			"expire-quote-requests": cfg.Scheduler.ExpiringCronSchedule,
		}
		for task, expr := range schedules {
			if err := cronTrigger.Add(task, expr); err != nil {
				log.Fatal("Invalid job schedule", zap.String("task", task), zap.Error(err))
			}
		}

		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators
	middleware.SetupValidator()

	// Create Gin engine
	engine := gin.New()

	// Configure trusted proxies for correct client IP detection
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	// Middleware order: request ID, tracing, recovery, logging, then the HTTP guards
	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName)...)
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: providers.Meter,
			Enabled:       true,
		}))
	}
	if profiler != nil {
		engine.Use(middleware.Profiling())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log, "/health"))
	engine.Use(middleware.Secure())
	corsMiddleware, err := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition", "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	if err != nil {
		log.Fatal("Invalid CORS configuration", zap.Error(err))
	}
	engine.Use(corsMiddleware)
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, "/api/v1/uploads"))
	if cfg.HTTP.RateLimitEnabled {
		apiLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer apiLimiter.Stop()
		engine.Use(middleware.RateLimit(apiLimiter))
	}

	// Health check
	systemHandler := handler.NewSystemHandler(version)
	systemHandler.AddCheck("database", db)
	if client := caches.Client(); client != nil {
		systemHandler.AddCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	engine.GET("/health", systemHandler.Health)

	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.Revocations = caches.TokenBlacklist()
	authConfig.Logger = log
	jwtMiddleware := middleware.NewAuthenticator(authConfig).Require()

	if cfg.Swagger.Enabled {
		docsGuard, err := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.App.IsProduction(),
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware)
		if err != nil {
			log.Fatal("Invalid swagger configuration", zap.Error(err))
		}
		engine.GET("/swagger/*any", docsGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Uploads written to disk are served by the API itself
	if !cfg.Storage.Enabled {
		engine.Static("/uploads", cfg.Storage.LocalDir)
	}

	// Handlers
	itemHandler := handler.NewItemHandler(catalogService)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService, checkoutService)
	quoteHandler := handler.NewQuoteRequestHandler(quoteService)
	messageHandler := handler.NewMessageHandler(messageService)
	currencyHandler := handler.NewCurrencyHandler(currencyService)
	settingHandler := handler.NewSettingHandler(settingService)
	contentHandler := handler.NewContentHandler(contentService)
	public := handler.PublicHandlers{
		Items:      itemHandler,
		Categories: categoryHandler,
		Orders:     orderHandler,
		Quotes:     quoteHandler,
		Messages:   messageHandler,
		Currencies: currencyHandler,
		Settings:   settingHandler,
		Content:    contentHandler,
	}
	if webhookService != nil {
		public.Webhooks = handler.NewStripeWebhookHandler(webhookService)
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware)
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributeInjector())
	}
	if profiler != nil {
		r.Use(middleware.ProfilingAttributeInjector())
	}

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateLimitWindow)
	defer authLimiter.Stop()
	r.Register(handler.AuthRoutes(handler.NewAuthHandler(authService), authLimiter))
	r.Register(handler.UserRoutes(handler.NewUserHandler(userService)))
	r.Register(handler.CatalogRoutes(itemHandler, categoryHandler,
		handler.NewSupplierHandler(catalogService), handler.NewStockHandler(stockService)))
	r.Register(handler.CRMRoutes(
		handler.NewLeadHandler(leadService),
		handler.NewClientHandler(clientService),
		handler.NewProjectHandler(projectService),
		handler.NewAppointmentHandler(appointmentService),
	))
	r.Register(handler.DocumentRoutes(handler.NewDocumentHandler(documentService, paymentService, sequenceService)))
	r.Register(handler.OrderRoutes(orderHandler))
	r.Register(handler.QuoteRequestRoutes(quoteHandler))
	r.Register(handler.MessageRoutes(messageHandler))
	r.Register(handler.NotificationRoutes(handler.NewNotificationHandler(notificationService)))
	r.Register(handler.CurrencyRoutes(currencyHandler))
	r.Register(handler.SettingRoutes(settingHandler))
	r.Register(handler.ContentRoutes(contentHandler))
	r.Register(handler.UploadRoutes(handler.NewUploadHandler(uploadService)))
	for _, group := range handler.ReportRoutes(handler.NewReportHandler(reportService, auditService)) {
		r.Register(group)
	}
	r.Register(handler.SystemRoutes(systemHandler))
	r.Register(handler.PublicRoutes(public))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if cronTrigger != nil {
		_ = cronTrigger.Stop(shutdownCtx)
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(shutdownCtx); err != nil {
			log.Warn("Job scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if chrome != nil {
		_ = chrome.Close()
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	dbInstrumentation.Stop()
	cancelRoot()

	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
