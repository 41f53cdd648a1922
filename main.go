package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ecommerce-backend/handlers"
	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/cart"
	"ecommerce-backend/internal/checkout"
	"ecommerce-backend/internal/consul"
	"ecommerce-backend/internal/orders"
	"ecommerce-backend/internal/payments"
	"ecommerce-backend/internal/products"
	"ecommerce-backend/internal/staff"
	"ecommerce-backend/internal/stores/kafka"
	"ecommerce-backend/internal/stores/postgres"
	"ecommerce-backend/internal/users"

	"github.com/joho/godotenv"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := run(); err != nil {
		slog.Error("startup failed", slog.String("ERROR", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	keys, err := auth.NewKeys(os.Getenv("JWT_SECRET"))
	if err != nil {
		return err
	}

	uConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	pConf, err := products.NewConf(db)
	if err != nil {
		return err
	}
	cConf, err := cart.NewConf(db)
	if err != nil {
		return err
	}
	oConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	payConf, err := payments.NewConf(db)
	if err != nil {
		return err
	}
	stConf, err := staff.NewConf(db)
	if err != nil {
		return err
	}

	ckStore, err := checkout.NewPGStore(db)
	if err != nil {
		return err
	}
	ckConf, err := checkout.NewConf(ckStore)
	if err != nil {
		return err
	}

	// Kafka is optional; without brokers the order-placed events are skipped.
	var kConf *kafka.Conf
	if os.Getenv("KAFKA_BROKERS") != "" {
		kConf, err = kafka.NewConf()
		if err != nil {
			return err
		}
		defer kConf.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	port, err := strconv.Atoi(getEnv("PORT", "4000"))
	if err != nil {
		return err
	}

	// Optional self-registration so a gateway can discover this instance.
	if os.Getenv("CONSUL_HTTP_ADDR") != "" {
		client, err := consul.NewClient()
		if err != nil {
			return err
		}
		serviceName := getEnv("SERVICE_NAME", "ecommerce-backend")
		if err := consul.RegisterService(client, serviceName, getEnv("SERVICE_ADDRESS", "localhost"), port); err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("Service", serviceName))
	}

	h := handlers.NewHandler(uConf, pConf, cConf, ckConf, oConf, payConf, stConf, kConf, keys)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      handlers.API(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("Addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("Signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			if er := server.Close(); er != nil {
				return er
			}
			return err
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
