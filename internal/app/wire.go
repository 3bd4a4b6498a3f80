//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"time"

	request_cancel_post "dispatch/internal/handlers/rest/request_cancel_post"
	request_claim_post "dispatch/internal/handlers/rest/request_claim_post"
	request_get "dispatch/internal/handlers/rest/request_get"
	request_post "dispatch/internal/handlers/rest/request_post"
	request_retry_post "dispatch/internal/handlers/rest/request_retry_post"
	requests_open_get "dispatch/internal/handlers/rest/requests_open_get"
	rider_get "dispatch/internal/handlers/rest/rider_get"
	rider_heartbeat_post "dispatch/internal/handlers/rest/rider_heartbeat_post"
	rider_post "dispatch/internal/handlers/rest/rider_post"
	rider_put "dispatch/internal/handlers/rest/rider_put"
	riders_online_get "dispatch/internal/handlers/rest/riders_online_get"
	"dispatch/internal/handlers/tasks/presence_sweeper"
	"dispatch/internal/handlers/tasks/request_sweeper"
	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/factory/pricing"
	"dispatch/internal/publisher"

	"dispatch/internal/entities"
	requestRepo "dispatch/internal/repository/request"
	riderRepo "dispatch/internal/repository/rider"
	dispatchService "dispatch/internal/service/dispatch"
	intakeService "dispatch/internal/service/intake"
	riderService "dispatch/internal/service/rider"

	"dispatch/pkg/background"
	"dispatch/pkg/logger"
	"dispatch/pkg/querier"
	"dispatch/pkg/retrier"
	"dispatch/pkg/retrier/backoff_adapter"
	"dispatch/pkg/tx"
	"dispatch/pkg/watch"

	"github.com/IBM/sarama"
	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
)

type (
	RequestSweepInterval  time.Duration
	StaleRequestAge       time.Duration
	PresenceSweepInterval time.Duration
)

type Application struct {
	ServiceDispatch   ServiceDispatch
	ServiceRider      ServiceRider
	BackgroundWorkers *background.Worker
}

type ServiceDispatch interface {
	request_post.Service
	request_get.Service
	requests_open_get.Service
	request_claim_post.Service
	request_cancel_post.Service
	request_retry_post.Service
}

type ServiceRider interface {
	rider_post.Service
	rider_put.Service
	rider_get.Service
	rider_heartbeat_post.Service
	riders_online_get.Service
}

// InitializeApplication для HTTP сервиса (cmd/service)
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	producer sarama.SyncProducer,
	cfg *config.Config,
) (*Application, error) {
	wire.Build(
		provideTxManager,
		provideQuerier,
		provideRequestSweepInterval,
		provideStaleRequestAge,
		providePresenceSweepInterval,

		provideRequestRepository,
		provideRiderRepository,

		provideServiceRider,
		provideServiceDispatch,
		pricing.New,
		provideKafkaPublisher,

		provideRequestSweeperTask,
		providePresenceSweeperTask,
		provideTaskList,
		provideBackgroundWorkers,

		wire.Struct(new(Application), "*"),

		wire.Bind(new(ServiceDispatch), new(*dispatchService.Dispatch)),
		wire.Bind(new(ServiceRider), new(*riderService.Service)),

		wire.Bind(new(dispatchService.Repository), new(*requestRepo.Repository)),
		wire.Bind(new(riderService.Repository), new(*riderRepo.Repository)),
		wire.Bind(new(dispatchService.Presence), new(*riderService.Service)),
		wire.Bind(new(dispatchService.Publisher), new(*publisher.Kafka)),
		wire.Bind(new(dispatchService.Pricer), new(*pricing.Factory)),

		wire.Bind(new(dispatchService.TxManager), new(*tx.Manager)),

		wire.Bind(new(request_sweeper.Service), new(*dispatchService.Dispatch)),
		wire.Bind(new(presence_sweeper.Service), new(*riderService.Service)),
	)
	return &Application{}, nil
}

type KafkaWorkerApp struct {
	IntakeService *intakeService.Service
	RequestWatch  *watch.Hub[entities.DeliveryRequest]
}

// InitializeKafkaWorkerApp для Kafka воркера (cmd/worker-order-placed)
func InitializeKafkaWorkerApp(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	producer sarama.SyncProducer,
	cfg *config.Config,
) (*KafkaWorkerApp, error) {
	wire.Build(
		provideTxManager,
		provideQuerier,

		provideRequestRepository,
		provideRiderRepository,

		provideServiceRider,
		provideServiceDispatch,
		pricing.New,

		provideKafkaPublisher,
		provideRequestWatchHub,
		provideHubPublisher,
		provideFanoutPublisher,

		provideExpireRetrier,
		provideIntakeService,

		wire.Bind(new(dispatchService.Repository), new(*requestRepo.Repository)),
		wire.Bind(new(riderService.Repository), new(*riderRepo.Repository)),
		wire.Bind(new(dispatchService.Presence), new(*riderService.Service)),
		wire.Bind(new(dispatchService.Publisher), new(*publisher.Fanout)),
		wire.Bind(new(dispatchService.Pricer), new(*pricing.Factory)),

		wire.Bind(new(dispatchService.TxManager), new(*tx.Manager)),

		wire.Bind(new(intakeService.Coordinator), new(*dispatchService.Dispatch)),
		wire.Bind(new(intakeService.Profiles), new(*riderService.Service)),

		wire.Struct(new(KafkaWorkerApp), "*"),
	)
	return nil, nil
}

func provideTxManager(pool *pgxpool.Pool) *tx.Manager {
	return tx.New(pool)
}

func provideQuerier(pool *pgxpool.Pool, getter *pgxv5.CtxGetter) *querier.Querier {
	return querier.New(pool, getter)
}

func provideRequestRepository(querier *querier.Querier) *requestRepo.Repository {
	return requestRepo.New(querier)
}

func provideRiderRepository(querier *querier.Querier) *riderRepo.Repository {
	return riderRepo.New(querier)
}

func provideServiceRider(
	repository riderService.Repository,
	cfg *config.Config,
) *riderService.Service {
	return riderService.New(repository, cfg.Dispatch.PresenceTTL)
}

func provideServiceDispatch(
	repository dispatchService.Repository,
	presence dispatchService.Presence,
	events dispatchService.Publisher,
	pricer dispatchService.Pricer,
	txManager dispatchService.TxManager,
) *dispatchService.Dispatch {
	return dispatchService.New(
		repository,
		presence,
		events,
		pricer,
		txManager,
	)
}

func provideKafkaPublisher(log logger.Logger, producer sarama.SyncProducer, cfg *config.Config) *publisher.Kafka {
	return publisher.NewKafka(log, producer, cfg.Kafka.TopicRequests)
}

func provideRequestWatchHub() *watch.Hub[entities.DeliveryRequest] {
	return watch.NewHub[entities.DeliveryRequest]()
}

func provideHubPublisher(hub *watch.Hub[entities.DeliveryRequest]) *publisher.Hub {
	return publisher.NewHub(hub)
}

func provideFanoutPublisher(kafkaPublisher *publisher.Kafka, hubPublisher *publisher.Hub) *publisher.Fanout {
	return publisher.NewFanout(kafkaPublisher, hubPublisher)
}

// provideExpireRetrier - backoff для подтверждения отмены протухшей заявки
func provideExpireRetrier() retrier.Retrier {
	return backoff_adapter.New(retrier.Config{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  30 * time.Second,
		Randomization:   0.5,
		Multiplier:      2,
	})
}

// provideIntakeService создает intakeService для обработки событий Kafka
func provideIntakeService(
	ctx context.Context,
	log logger.Logger,
	coordinator intakeService.Coordinator,
	profiles intakeService.Profiles,
	hub *watch.Hub[entities.DeliveryRequest],
	expireRetrier retrier.Retrier,
	cfg *config.Config,
) *intakeService.Service {
	return intakeService.New(ctx, log, coordinator, profiles, hub, expireRetrier, cfg.Dispatch.WaitTimeout)
}

func provideRequestSweepInterval(cfg *config.Config) RequestSweepInterval {
	return RequestSweepInterval(cfg.Tasks.RequestSweepInterval)
}

func provideStaleRequestAge(cfg *config.Config) StaleRequestAge {
	return StaleRequestAge(cfg.Tasks.StaleRequestAge)
}

func providePresenceSweepInterval(cfg *config.Config) PresenceSweepInterval {
	return PresenceSweepInterval(cfg.Tasks.PresenceSweepInterval)
}

func provideRequestSweeperTask(
	log logger.Logger,
	service request_sweeper.Service,
	interval RequestSweepInterval,
	maxAge StaleRequestAge,
) *request_sweeper.RequestSweeper {
	return request_sweeper.New(log, service, time.Duration(interval), time.Duration(maxAge))
}

func providePresenceSweeperTask(
	log logger.Logger,
	service presence_sweeper.Service,
	interval PresenceSweepInterval,
) *presence_sweeper.PresenceSweeper {
	return presence_sweeper.New(log, service, time.Duration(interval))
}

func provideTaskList(
	requestSweeperTask *request_sweeper.RequestSweeper,
	presenceSweeperTask *presence_sweeper.PresenceSweeper,
) []background.Task {
	return []background.Task{
		requestSweeperTask,
		presenceSweeperTask,
	}
}

func provideBackgroundWorkers(ctx context.Context, log logger.Logger, tasks []background.Task) (*background.Worker, error) {
	return background.New(ctx, log, tasks)
}
