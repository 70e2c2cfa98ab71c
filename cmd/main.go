package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/plajta/depo-service/docs"
	"github.com/plajta/depo-service/internal/app"
	"github.com/plajta/depo-service/internal/auth"
	"github.com/plajta/depo-service/internal/config"
	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/handler"
	"github.com/plajta/depo-service/internal/pocketbase"
	"github.com/plajta/depo-service/internal/repo"
	"github.com/plajta/depo-service/internal/service"
	"github.com/plajta/depo-service/pkg/cache"

	"github.com/joho/godotenv"
)

const scanDedupeTTL = time.Hour

// @title           Depo Service API
// @version         1.0
// @description     Документация HTTP API консоли депо
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	pb := pocketbase.New(logger, conf.PocketBase)
	store := repo.NewStore(logger, pb)
	orderCache := cache.New[entities.Order](conf.Cache.Capacity, conf.Cache.TTL)

	orderService := service.NewOrderService(logger, store, orderCache, scanDedupeTTL)
	formController := service.NewFormController(logger, orderService)
	sessions := auth.NewService(logger, pb, conf.Session)

	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, orderService)
	httpHandler := handler.NewHTTPHandler(logger, orderService, formController, sessions)
	authHandler := handler.NewAuthHandler(logger, sessions)
	handler.RegisterMetrics()

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler, authHandler)
	app.SetConsumers(kafkaHandler)
	app.SetStarters(orderCache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
