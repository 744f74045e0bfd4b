package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/yatube/community/internal/config"
	"github.com/yatube/community/internal/database"
	"github.com/yatube/community/internal/events"
	"github.com/yatube/community/internal/handlers"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/internal/views"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB, cfg.Admin)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL,
			nats.Name("community-server"),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			log.Fatalf("nats connection failed: %v", err)
		}
		defer nc.Drain()
		publisher = events.NewNatsPublisher(nc, cfg.NATS.SubjectPrefix)
		logger.Info("nats_connected", map[string]interface{}{
			"url":    nc.ConnectedUrlRedacted(),
			"prefix": cfg.NATS.SubjectPrefix,
		})
	}

	var engine fiber.Views = views.NewHTML()
	if cfg.Server.ViewsMode == config.ViewsJSON {
		engine = views.NewJSON()
	}

	app := handlers.NewApp(engine)
	handlers.Register(app, handlers.Deps{
		DB:          db,
		Events:      publisher,
		PageSize:    cfg.Feed.PageSize,
		FrontendURL: cfg.Server.FrontendURL,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":      cfg.Server.Port,
		"address":   listenAddr,
		"db_driver": cfg.DB.Driver,
		"views":     cfg.Server.ViewsMode,
		"page_size": cfg.Feed.PageSize,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
