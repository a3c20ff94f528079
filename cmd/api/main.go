package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/trademe-app/trademe-api/internal/config"
	"github.com/trademe-app/trademe-api/internal/db"
	"github.com/trademe-app/trademe-api/internal/payments"
	"github.com/trademe-app/trademe-api/internal/review"
	"github.com/trademe-app/trademe-api/internal/services/auth"
	"github.com/trademe-app/trademe-api/internal/services/item"
	"github.com/trademe-app/trademe-api/internal/services/media"
	reviewapi "github.com/trademe-app/trademe-api/internal/services/review"
	"github.com/trademe-app/trademe-api/internal/services/subscription"
	tradeapi "github.com/trademe-app/trademe-api/internal/services/trade"
	"github.com/trademe-app/trademe-api/internal/services/user"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/trade"
	"github.com/trademe-app/trademe-api/internal/verification"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer database.Close()

	store := storage.NewPostgres(database)

	// Подключаемся к Redis для кодов подтверждения телефона
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Неверный REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Ядро: движок предложений, жизненный цикл обменов и шлюз отзывов
	engine := trade.NewEngine(store)
	lifecycle := trade.NewLifecycle(store, cfg.AutoRetireItems)
	gate := review.NewGate(store)

	// Внешние интеграции
	mediaService, err := media.NewMediaService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации Cloudinary: %v", err)
	}
	paymentProvider := payments.NewProvider(cfg.PaymentConfig)
	verificationService := verification.NewService(rdb, verification.LogSender{}, store)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Trade Me API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService, err := auth.NewAuthService(cfg, store)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации авторизации: %v", err)
	}
	jwtService := authService.GetJWTService()

	userService := user.NewUserService(store, verificationService, jwtService)
	itemService := item.NewItemService(store, mediaService, jwtService)
	tradeService := tradeapi.NewTradeService(engine, lifecycle, jwtService)
	reviewService := reviewapi.NewReviewService(gate, jwtService)
	subscriptionService := subscription.NewSubscriptionService(store, paymentProvider, jwtService)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	userService.SetupRoutes(app)
	itemService.SetupRoutes(app)
	tradeService.SetupRoutes(app)
	reviewService.SetupRoutes(app)
	subscriptionService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ Trade Me API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
