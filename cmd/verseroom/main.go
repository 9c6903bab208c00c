package main

import (
	"context"
	"flag"
	"log"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/verseroom/verseroom/internal/config"
	"github.com/verseroom/verseroom/internal/infra/database"
	"github.com/verseroom/verseroom/internal/infra/gateway"
	"github.com/verseroom/verseroom/internal/infra/repository"
	"github.com/verseroom/verseroom/internal/interface/rest"
	restmiddleware "github.com/verseroom/verseroom/internal/interface/rest/middleware"
	"github.com/verseroom/verseroom/internal/service"
	"github.com/verseroom/verseroom/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.MigratePostgres(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			log.Fatalf("failed to set up tracing: %v", err)
		}
		defer cleanup()
	}

	userRepo := repository.NewUserRepository(db)
	songRepo := repository.NewSongRepository(db, mc)
	suggestionRepo := repository.NewSuggestionRepository(db, mc)

	authService := service.NewAuthService(userRepo)
	eventService := service.NewEventService(rdb)
	notifier := gateway.NewWebhookNotifier(conf.Server.NotifyWebhook)

	songUC := usecase.NewSongUsecase(songRepo, eventService)
	suggestionUC := usecase.NewSuggestionUsecase(suggestionRepo, notifier, eventService)

	handler := rest.NewHandler(songUC, suggestionUC, authService, eventService)
	authMiddleware := restmiddleware.NewAuthMiddleware(authService)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("verseroom"))
	}
	e.Use(authMiddleware.IdentifyRequester)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Listen))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", "verseroom"),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		_ = provider.Shutdown(ctx)
	}, nil
}
