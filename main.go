package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kedai/internal/config"
	"kedai/internal/handlers"
	applog "kedai/internal/logger"
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/internal/session"
	"kedai/pkg/rabbitmq"
)

// Repositories groups the data stores the services run on.
type Repositories struct {
	Orders    repositories.OrderRepository
	Discounts repositories.DiscountRepository
	Payments  repositories.PaymentRepository
	Menu      repositories.MenuRepository
}

// NewRepositories returns GORM repositories over db, or in-memory ones when db is nil.
func NewRepositories(db *gorm.DB) Repositories {
	if db == nil {
		return Repositories{
			Orders:    repositories.NewMockOrderRepository(),
			Discounts: repositories.NewMockDiscountRepository(),
			Payments:  repositories.NewMockPaymentRepository(),
			Menu:      repositories.NewMockMenuRepository(),
		}
	}
	return Repositories{
		Orders:    repositories.NewGORMOrderRepository(db),
		Discounts: repositories.NewGORMDiscountRepository(db),
		Payments:  repositories.NewGORMPaymentRepository(db),
		Menu:      repositories.NewGORMMenuRepository(db),
	}
}

// Deps is the infrastructure NewApp wires the services onto.
type Deps struct {
	Repos     Repositories
	Sessions  session.Provider
	Publisher services.EventPublisher // nil disables order events
	Log       *zap.Logger
}

// NewApp builds the fiber application with every route registered.
func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	log := deps.Log

	// --- Services ---
	discountService := services.NewDiscountService(deps.Repos.Discounts, log)
	paymentService := services.NewPaymentService(deps.Repos.Payments, services.PaymentConfig{
		CardDelay:           cfg.CardProcessingDelay,
		EWalletDelay:        cfg.EWalletProcessingDelay,
		RequireEWalletPhone: cfg.EWalletRequirePhone,
	}, log)
	orderService := services.NewOrderService(deps.Repos.Orders, deps.Publisher, log)
	cartService := services.NewCartService(deps.Repos.Menu, log)
	checkoutService := services.NewCheckoutService(discountService, paymentService, orderService, log)

	// --- Handlers ---
	cartHandler := handlers.NewCartHandler(cartService, log)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	managementHandler := handlers.NewManagementHandler(orderService, log)

	app := fiber.New(fiber.Config{AppName: "kedai"})

	// --- Middleware ---
	app.Use(recover.New())
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if bp, ok := deps.Publisher.(*rabbitmq.BreakerPublisher); ok {
			body["events"] = bp.State()
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Identity(middleware.NewTokenVerifier(cfg.JWTSecret), log))

	sessionStore := middleware.NewSessionStore(cfg.SessionTTL)
	sessions := middleware.Session(sessionStore, deps.Sessions, log)
	apiV1.Use("/cart", sessions)
	apiV1.Use("/checkout", sessions)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)

	orderHandler.RegisterRoutes(apiV1)
	managementHandler.RegisterRoutes(apiV1)

	return app
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := applog.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			zlog.Fatal("JWT_SECRET must be set in production")
		}
		zlog.Warn("JWT_SECRET not set, staff and customer tokens are signed with an empty key")
	}

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := NewRepositories(db)

	// --- Sessions ---
	var sessions session.Provider = session.NewMemoryProvider()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		sessions = session.NewRedisProvider(rdb, cfg.SessionTTL)
	} else {
		zlog.Warn("REDIS_ADDR not set, carts are kept in process memory")
	}

	// --- RabbitMQ ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: services.OrderExchange}, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = rabbitmq.NewBreakerPublisher(mqClient, rabbitmq.BreakerSettings{}, zlog)

		if err := mqClient.ConsumeOrderEvents(orderEventLogger(zlog)); err != nil {
			zlog.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	} else {
		zlog.Warn("RABBITMQ_URL not set, order events are disabled")
	}

	if cfg.SeedDemoData {
		seedDemoData(context.Background(), repos, zlog)
	}

	app := NewApp(cfg, Deps{
		Repos:     repos,
		Sessions:  sessions,
		Publisher: publisher,
		Log:       zlog,
	})

	// --- Start HTTP Server ---
	zlog.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("error during fiber shutdown", zap.Error(err))
	}
	zlog.Info("server gracefully stopped")
}

// openDatabase connects with the configured driver and migrates the schema.
// The memory driver returns a nil *gorm.DB.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		return nil, nil
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.MenuItem{},
		&models.DiscountCode{},
		&models.Order{},
		&models.OrderLine{},
		&models.PaymentTransaction{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// orderEventLogger is the consumer side of the order event feed. It records
// each event; downstream integrations attach here.
func orderEventLogger(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var ev services.OrderEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("malformed order event: %w", err)
		}
		log.Info("order event received",
			zap.String("event", ev.Event),
			zap.String("order_id", ev.OrderID),
			zap.String("status", ev.Status.String()),
		)
		return nil
	}
}

// seedDemoData populates a fresh store with a small menu and two discount codes.
func seedDemoData(ctx context.Context, repos Repositories, log *zap.Logger) {
	items := []models.MenuItem{
		{ID: "nasi-lemak", Name: "Nasi Lemak", Description: "Coconut rice with sambal, egg and anchovies", Price: decimal.RequireFromString("10.00"), IsAvailable: true},
		{ID: "mee-goreng", Name: "Mee Goreng Mamak", Description: "Spicy fried yellow noodles", Price: decimal.RequireFromString("9.50"), IsAvailable: true},
		{ID: "roti-canai", Name: "Roti Canai", Description: "Flatbread with dhal", Price: decimal.RequireFromString("2.50"), IsAvailable: true},
		{ID: "teh-tarik", Name: "Teh Tarik", Description: "Pulled milk tea", Price: decimal.RequireFromString("3.50"), IsAvailable: true},
	}
	for i := range items {
		if err := repos.Menu.Create(ctx, &items[i]); err != nil {
			log.Warn("error seeding menu item", zap.String("name", items[i].Name), zap.Error(err))
		}
	}

	expires := time.Now().AddDate(0, 3, 0)
	welcomeUses := 100
	codes := []models.DiscountCode{
		{Code: "SAVE10", Description: "10% off orders above RM30", Percentage: decimal.NewFromInt(10), MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(30)), IsActive: true},
		{Code: "WELCOME15", Description: "15% off, up to RM10", Percentage: decimal.NewFromInt(15), MaxDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(10)), MaxUses: &welcomeUses, ExpiresAt: &expires, IsActive: true},
	}
	for i := range codes {
		if err := repos.Discounts.Create(ctx, &codes[i]); err != nil {
			log.Warn("error seeding discount code", zap.String("code", codes[i].Code), zap.Error(err))
		}
	}
	log.Info("demo data seeded", zap.Int("menu_items", len(items)), zap.Int("discount_codes", len(codes)))
}
