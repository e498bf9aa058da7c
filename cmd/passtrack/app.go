package main

import (
	"context"
	"database/sql"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"passtrack/internal/auth"
	"passtrack/internal/config"
	"passtrack/internal/handlers"
	"passtrack/internal/midpass"
	"passtrack/internal/migrations"
	"passtrack/internal/services"
	"passtrack/internal/storage"
	"passtrack/internal/telegram"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	dbPool *pgxpool.Pool
	echo   *echo.Echo

	orderService *services.OrderServiceImpl
	autoupdate   *services.AutoupdateService

	adminHandler *handlers.AdminHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	app.log.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.log.Info("migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.log.Info("successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	auditStorage := storage.NewPostgresAuditStorage(app.dbPool)
	userStorage := storage.NewPostgresUserStorage(app.dbPool)

	// Движок обновления заказов
	rotator := midpass.NewRotator(app.cfg.MidpassProxies)
	client := midpass.NewHTTPClient(app.cfg.RequestTimeout)
	app.orderService = services.NewOrderService(
		orderStorage, auditStorage, rotator, client, app.cfg.ImagesDir, app.log,
	)

	// Нотификатор
	var notifier telegram.Notifier
	if app.cfg.TelegramToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(app.cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("failed to connect to telegram: %w", err)
		}
		app.log.Info("telegram bot connected", zap.String("username", botAPI.Self.UserName))
		notifier = telegram.NewBotNotifier(botAPI, app.orderService.StatusImagePath, app.log)
	} else {
		app.log.Warn("TELEGRAM_TOKEN is not configured, notifications will only be logged")
		notifier = telegram.NewNopNotifier(app.log)
	}

	// Планировщик автообновления
	location, err := app.cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", app.cfg.Timezone, err)
	}
	app.autoupdate = services.NewAutoupdateService(
		app.orderService,
		userStorage,
		notifier,
		app.cfg.AutoupdateSchedules,
		location,
		app.cfg.OrderPacing,
		app.log,
	)

	// Handler layer
	app.adminHandler = handlers.NewAdminHandler(
		app.orderService,
		app.autoupdate,
		app.cfg.AdminLogin,
		app.cfg.AdminPasswordHash,
		app.cfg.JWTSecret,
		app.cfg.TokenExpiration,
	)

	return nil
}

// initServer инициализирует HTTP-сервер ops API и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())

	// Служебные маршруты
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(200)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/admin/login", app.adminHandler.Login)

	// Защищённые маршруты (требуют аутентификации)
	protected := e.Group("/api/admin")
	protected.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	protected.GET("/orders", app.adminHandler.ListOrders)
	protected.GET("/orders/:uid/audits", app.adminHandler.OrderAudits)
	protected.POST("/autoupdate", app.adminHandler.TriggerAutoupdate)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	// Запуск расписаний автообновления
	app.log.Info("starting autoupdate schedules")
	if err := app.autoupdate.Start(ctx); err != nil {
		return fmt.Errorf("failed to start autoupdate: %w", err)
	}

	// Запуск сервера
	app.log.Info("starting ops API", zap.String("address", app.cfg.RunAddress))
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.log.Info("shutting down")

	app.autoupdate.Stop()

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.log.Info("gracefully stopped")
	return nil
}
