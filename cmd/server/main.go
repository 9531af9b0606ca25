package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/tranvu/inventory-ledger/configs"
	"github.com/tranvu/inventory-ledger/internal/adapter/events"
	"github.com/tranvu/inventory-ledger/internal/adapter/handler"
	"github.com/tranvu/inventory-ledger/internal/adapter/storage"
	"github.com/tranvu/inventory-ledger/internal/core/service"
	"github.com/tranvu/inventory-ledger/internal/logging"
	"github.com/tranvu/inventory-ledger/internal/port"
)

func main() {
	configPath := flag.String("config", "configs/base.yaml", "path to config file")
	flag.Parse()

	cfg, err := configs.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.Init(cfg.App.Name, cfg.App.LogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("ping mysql", "error", err)
		os.Exit(1)
	}
	log.Info("connected to mysql")

	store := storage.NewMySQLStore(db)
	if cfg.MySQL.Migrate {
		if err := store.Migrate(ctx); err != nil {
			log.Error("migrate", "error", err)
			os.Exit(1)
		}
	}

	// Redis (optional, idempotent placement)
	var idem port.IdempotencyStore
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("ping redis", "error", err)
			os.Exit(1)
		}
		idem = storage.NewRedisIdempotency(rdb, cfg.Idempotency.TTL)
		log.Info("connected to redis")
	}

	// RabbitMQ (optional, order events)
	var publisher port.EventPublisher
	var rabbit *events.RabbitPublisher
	if cfg.Rabbit.URL != "" {
		rabbit, err = events.NewRabbitPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Error("connect rabbitmq", "error", err)
			os.Exit(1)
		}
		publisher = rabbit
		log.Info("connected to rabbitmq", "exchange", cfg.Rabbit.Exchange)
	}

	itemSvc := service.NewItemService(store, logging.New("items"))
	stockSvc := service.NewStockService(store, logging.New("stock"))
	orderSvc := service.NewOrderService(store, idem, publisher, logging.New("orders"))

	router := handler.NewRouter(
		handler.NewItemHandler(itemSvc, stockSvc),
		handler.NewInventoryHandler(stockSvc),
		handler.NewOrderHandler(orderSvc),
		logging.New("http"),
	)

	httpServer := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.App.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	if rabbit != nil {
		rabbit.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Info("connections closed")
}
