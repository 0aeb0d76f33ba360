package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/aivisualpro/SYMXSystems-sub002/internal/config"
	gateway "github.com/aivisualpro/SYMXSystems-sub002/internal/gateways"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/handlers"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/repository"
	"github.com/aivisualpro/SYMXSystems-sub002/internal/services"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/logger"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/pg"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/prom"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/redis"
	"github.com/aivisualpro/SYMXSystems-sub002/pkg/xhttp"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	smsClient, err := gateway.NewClient(&gateway.Config{
		URL:    config.Get().ProviderURL,
		APIKey: config.Get().ProviderAPIKey,
	})
	if err != nil {
		logger.Error("failed creating sms gateway client", "error", err)
		return
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	messageLogRepo := repository.NewMessageLogRepository(db)
	confirmationRepo := repository.NewConfirmationRepository(db)

	// services
	scheduleService := services.NewScheduleService(scheduleRepo, employeeRepo)
	messagingService := services.NewMessagingService(smsClient, messageLogRepo, confirmationRepo, scheduleRepo, services.MessagingConfig{
		PublicBaseURL:       config.Get().PublicBaseURL,
		DefaultFrom:         config.Get().ProviderDefaultFrom,
		ConfirmationTTLDays: config.Get().ConfirmationTTLDays,
	})
	webhookService := services.NewWebhookService(messageLogRepo, scheduleRepo, employeeRepo, redisAdap)
	confirmationService := services.NewConfirmationService(confirmationRepo, scheduleRepo, messageLogRepo)
	healthService := services.NewHealthService()

	// v1 handlers
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	messagingHandler := handlers.NewMessagingHandler(messagingService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, config.Get().ProviderWebhookSecret)
	confirmHandler := handlers.NewConfirmHandler(confirmationService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterScheduleRoutes(g, config.Get().SessionSecret, scheduleHandler)
	handlers.RegisterMessagingRoutes(g, config.Get().SessionSecret, messagingHandler)
	handlers.RegisterWebhookRoutes(g, webhookHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// confirmation links are handed to SMS recipients, so they live
	// outside the versioned API
	pub := s.Router.Group("/public")
	handlers.RegisterConfirmRoutes(pub, confirmHandler)

	if config.Get().AppDebugMetricsAddr != "" {
		var hostname string
		hostname, err = os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
		if err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}

		metricsURI := config.Get().AppDebugMetricsURI
		if metricsURI == "" {
			metricsURI = "/metrics"
		}
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, metricsURI)
		}()
	}

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
