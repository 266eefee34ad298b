package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/roamplan/roamplan/internal/config"
	"github.com/roamplan/roamplan/internal/infra/database"
	"github.com/roamplan/roamplan/internal/infra/repository"
	"github.com/roamplan/roamplan/internal/present/rest"
	"github.com/roamplan/roamplan/internal/present/rest/middleware"
	"github.com/roamplan/roamplan/internal/service"
	"github.com/roamplan/roamplan/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to setup trace provider: " + err.Error())
		}
		defer cleanup()
	}

	userRepo := repository.NewUserRepository(db)
	tripRepo := repository.NewTripRepository(db, mc)
	itineraryRepo := repository.NewItineraryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	deletionRepo := repository.NewDeletionRepository(db)
	transactor := database.NewTransactor(db)

	authService := service.NewAuthService(userRepo, conf.App.JwtSecret, conf.App.JwtExpiry())
	signalService := service.NewSignalService(rdb)

	tripUsecase := usecase.NewTripUsecase(tripRepo)
	itineraryUsecase := usecase.NewItineraryUsecase(tripRepo, itineraryRepo, activityRepo)
	activityUsecase := usecase.NewActivityUsecase(tripRepo, itineraryRepo, activityRepo)
	deletionUsecase := usecase.NewDeletionUsecase(
		tripRepo, itineraryRepo, activityRepo, deletionRepo,
		transactor, signalService, conf.App.UndoWindow(),
	)
	restoreUsecase := usecase.NewRestoreUsecase(
		tripRepo, itineraryRepo, activityRepo, deletionRepo,
		transactor, signalService,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := service.NewSweeper(deletionRepo, conf.App.SweepInterval())
	go sweeper.Run(ctx)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("roamplan"))
	}

	handler := rest.NewHandler(
		authService,
		signalService,
		tripUsecase,
		itineraryUsecase,
		activityUsecase,
		deletionUsecase,
		restoreUsecase,
	)
	handler.RegisterRoutes(e, middleware.NewAuthMiddleware(authService))

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	cleanup := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("failed to shutdown trace provider",
				slog.String("error", err.Error()),
			)
		}
	}
	return cleanup, nil
}
