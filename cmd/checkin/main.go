package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"checkin/config"
	"checkin/internal/delivery"
	"checkin/internal/delivery/http"
	"checkin/internal/delivery/http/router/handler"
	"checkin/internal/delivery/worker"
	"checkin/internal/domain/entity"
	"checkin/internal/domain/repository"
	"checkin/internal/domain/service"
	"checkin/internal/infra/alert"
	"checkin/internal/infra/location"
	logs "checkin/internal/infra/log"
	"checkin/internal/infra/notification"
	"checkin/internal/infra/persistence/sqlite"
	"checkin/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newSnapshotRepository,
		),
	)
}

// newSnapshotRepository opens the local snapshot database and ties its
// lifetime to the application.
func newSnapshotRepository(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (repository.SnapshotRepository, error) {
	repo, err := sqlite.NewSnapshotRepository(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return repo.Close()
		},
	})

	return repo, nil
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newWebhookNotifier,
			alert.NewSlogSink,
			location.NewPushSource,
			newLocationSource,
			newCatalog,
		),
	)
}

// newWebhookNotifier creates the outbound notification gateway
func newWebhookNotifier(cfg *config.Config, logger *slog.Logger) service.CheckInNotifier {
	return notification.NewWebhookNotifier(cfg.Notification.WebhookURL, logger)
}

// newLocationSource exposes the push source under its domain contract
func newLocationSource(source *location.PushSource) service.LocationSource {
	return source
}

// newCatalog builds the immutable point catalog from configuration
func newCatalog(cfg *config.Config) (entity.Catalog, error) {
	catalog := make(entity.Catalog, 0, len(cfg.Points))
	for _, pc := range cfg.Points {
		point, err := entity.NewCheckInPoint(pc.ID, pc.PeriodID, pc.Name, pc.Latitude, pc.Longitude, pc.StartTime, pc.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid check-in point %d: %w", pc.ID, err)
		}
		catalog = append(catalog, point)
	}

	return catalog, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCheckInService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewCheckInHandler,
			handler.NewLocationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewWorker,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
