package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nordviken/onboarding-backend/internal/application"
	"github.com/nordviken/onboarding-backend/internal/application/commands"
	"github.com/nordviken/onboarding-backend/internal/application/processors"
	"github.com/nordviken/onboarding-backend/internal/application/query"
	"github.com/nordviken/onboarding-backend/internal/application/sequence"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/internal/infra/client/pm"
	"github.com/nordviken/onboarding-backend/internal/infra/client/registry"
	"github.com/nordviken/onboarding-backend/internal/infra/mail"
	"github.com/nordviken/onboarding-backend/internal/infra/storage"
	"github.com/nordviken/onboarding-backend/internal/presentation/queue"
	"github.com/nordviken/onboarding-backend/internal/presentation/rest"
	"github.com/nordviken/onboarding-backend/internal/presentation/scheduler"
	"github.com/nordviken/onboarding-backend/pkg/db"
)

func Init() {
	// DB
	dbConfig := db.NewConfig()
	pool, err := pgxpool.New(context.Background(), dbConfig.GetDSN())
	if err != nil {
		log.Panicf("failed to create pool: %v", err)
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)

	// Configs
	mailConfig := mail.NewMailConfig()
	oidcConfig := auth.NewOIDCConfig()
	outboxConfig := scheduler.NewOutboxConfig()
	sequenceConfig := processors.NewSequenceConfig()
	restConfig := rest.NewConfig()
	mandateUpdatesConfig := queue.NewMandateUpdatesConfig()
	// solving problem of slight clock mismatch for jwt verifications
	jwt.TimeFunc = func() time.Time {
		return time.Now().Add(60 * time.Second)
	}
	mailServer := mail.NewMailServer(mailConfig)

	// AWS
	cfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Panic("can't load aws config", err)
	}
	s3 := storage.NewStorage(cfg)

	// Upstream clients
	pmClient := pm.NewClient(pm.NewConfig())
	var registryClient *registry.Client
	registryConfig := registry.NewConfig()
	if registryConfig.BaseURL != "" {
		tokens, err := registry.NewTokenCache(context.Background(), registryConfig)
		if err != nil {
			log.Panicf("failed to init registry token cache: %v", err)
		}
		registryClient = registry.NewClient(registryConfig, tokens)
	}

	identityProvider, err := auth.NewIdentityProvider(oidcConfig)
	if err != nil {
		log.Panicf("failed to init identity provider: %v", err)
	}

	orchestrator := sequence.NewOrchestrator(pmClient)

	handlers := &application.Handlers{
		SubmitOnboarding: commands.NewSubmitOnboarding(uowFactory, registryClient),
		UploadDocument:   commands.NewUploadDocument(uowFactory, s3),
		GetSubmission:    query.NewGetSubmission(uowFactory),
		ListSubmissions:  query.NewListSubmissions(uowFactory),
	}
	procs := &application.Processors{
		CreateSequence: processors.NewCreateSequence(sequenceConfig, uowFactory, orchestrator),
		SendMail:       commands.NewSendMail(mailServer, uowFactory),
	}

	handler := rest.NewServer(handlers, procs, identityProvider, restConfig)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	rest.RegisterHandlers(app, handler)

	outboxPoller := scheduler.NewOutboxPoller(procs, uowFactory, outboxConfig)
	go outboxPoller.Start()

	var mandatePoller *queue.MandateUpdatesPoller
	if mandateUpdatesConfig.Enabled {
		mandatePoller = queue.NewMandateUpdatesPoller(
			sqs.NewFromConfig(cfg), mandateUpdatesConfig, commands.NewRecordMandateStatus(uowFactory))
		go mandatePoller.Start()
	}

	go func() {
		if err := app.Listen(":8080"); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	outboxPoller.Stop()
	if mandatePoller != nil {
		mandatePoller.Stop()
	}

	slog.Info("Running cleanup tasks...")

	uowFactory.Pool.Close()
	fmt.Println("Fiber was successfully shutdown.")
}
