package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rotadesk/rota/backend/internal/cache"
	"github.com/rotadesk/rota/backend/internal/config"
	"github.com/rotadesk/rota/backend/internal/handler"
	"github.com/rotadesk/rota/backend/internal/notify"
	"github.com/rotadesk/rota/backend/internal/seed"
	"github.com/rotadesk/rota/backend/internal/service"
	"github.com/rotadesk/rota/backend/internal/storage"
)

func main() {
	/**********************************************
	 * Logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * Configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return
	}

	/**********************************************
	 * Store
	 **********************************************/
	backend, closeStore, err := storage.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open the store", "driver", cfg.Store.Driver, "error", err)
		return
	}
	defer closeStore()

	// the memory store starts empty, so give it a company to log in to
	if cfg.Store.Driver == "memory" {
		password, generated := seed.Password(cfg.Seed.User.Password)
		if generated {
			logger.Info("SEED_USER_PASSWORD is not set, demo users get a generated password", "password", password)
		}

		err := seed.Demo(context.Background(), backend, seed.DemoOptions{
			CompanyID:   cfg.Seed.CompanyID,
			Password:    password,
			EmailDomain: cfg.Seed.EmailDomain,
			Users:       12,
			Shifts:      40,
			Now:         time.Now().In(cfg.Location()),
		})
		if err != nil {
			logger.Error("failed to seed the memory store", "error", err)
			return
		}
		logger.Info("memory store seeded", "company_id", cfg.Seed.CompanyID, "manager", "manager")
	}

	/**********************************************
	 * RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open a channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to declare the queue", "error", err)
		return
	}

	notifier := notify.NewAMQP(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	/**********************************************
	 * Redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return
	}

	kv := cache.NewRedis(rdb, "rota:")

	/**********************************************
	 * Service and handler
	 **********************************************/
	svc := service.New(backend, backend, kv, notifier, service.Options{
		ConfirmationTTL:    time.Duration(cfg.Rota.ConfirmationTTL) * time.Second,
		ImportSessionTTL:   time.Duration(cfg.Rota.ImportSessionTTL) * time.Second,
		NameMatchThreshold: cfg.Rota.NameMatchThreshold,
		Location:           cfg.Location(),
	})

	handler, err := handler.NewHandler(cfg, svc, backend, kv)
	if err != nil {
		logger.Error("failed to create the handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
