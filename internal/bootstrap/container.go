// FILE: internal/bootstrap/container.go
package bootstrap

import (
	"context"
	"log"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/controller"
	"pagecraft-be/internal/handler"
	"pagecraft-be/internal/pkg/logger"
	"pagecraft-be/internal/pkg/mailer"
	"pagecraft-be/internal/pkg/ratelimit"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/internal/service"
	"pagecraft-be/internal/websocket"
	"pagecraft-be/pkg/renderer"

	pktNats "pagecraft-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	UserController       controller.IUserController
	PointsController     controller.IPointsController
	AdminController      controller.IAdminController
	GenerationController controller.IGenerationController
	UpgradeController    controller.IUpgradeController

	// Background Services (Exposed for main.go to run)
	RenderWorker    service.IRenderWorkerService
	ReminderService service.IReminderService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Job Queue (in-process; the worker consumes render jobs from here)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Rate Limiter (shares the hub's Redis; counts in-process without it)
	limiter := ratelimit.NewLimiter(rdb, sysLogger)

	// 3. Services
	pointsService := service.NewPointsService(uowFactory, cfg.Points, natsPub, sysLogger)
	grantService := service.NewGrantService(uowFactory, cfg.Points, natsPub, emailService)
	referralService := service.NewReferralService(uowFactory, cfg.Points, natsPub)
	usageService := service.NewUsageService(uowFactory, pointsService, cfg.Points)

	authService := service.NewAuthService(uowFactory, grantService, referralService)
	userService := service.NewUserService(uowFactory)

	publisherService := service.NewPublisherService(pubSub, cfg.Renderer.TopicName)
	generationService := service.NewGenerationService(uowFactory, publisherService, usageService)

	pageRenderer := renderer.NewLocalRenderer(time.Duration(cfg.Renderer.PageDelayMs) * time.Millisecond)
	renderWorker := service.NewRenderWorkerService(
		pubSub,
		cfg.Renderer.TopicName,
		uowFactory,
		usageService,
		pageRenderer,
	)

	upgradeService := service.NewUpgradeService(uowFactory, referralService, natsPub)
	reminderService := service.NewReminderService(uowFactory, emailService)

	// 3.5 Notification System Infrastructure
	notifService := service.NewNotificationService(uowFactory, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 4. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		NotificationHandler:  notifHandler,
		WebSocketHub:         wsHub,
		AuthController:       controller.NewAuthController(authService),
		UserController:       controller.NewUserController(userService),
		PointsController:     controller.NewPointsController(pointsService, grantService, limiter),
		AdminController:      controller.NewAdminController(grantService),
		GenerationController: controller.NewGenerationController(generationService),
		UpgradeController:    controller.NewUpgradeController(upgradeService),

		RenderWorker:    renderWorker,
		ReminderService: reminderService,
	}
}
