package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// Дефолтный дедлайн гонки: столько заказчик ждёт клейма, прежде чем
	// заявка будет отменена.
	defaultWaitTimeout = 60 * time.Second
	// Дефолтный срок жизни heartbeat в онлайн-пуле.
	defaultPresenceTTL = 90 * time.Second
)

type (
	Tasks struct {
		RequestSweepInterval  time.Duration
		StaleRequestAge       time.Duration
		PresenceSweepInterval time.Duration
	}

	Dispatch struct {
		WaitTimeout time.Duration // дедлайн ожидания клейма
		PresenceTTL time.Duration // свежесть heartbeat для онлайн-пула
	}

	HTTPServer struct {
		Port             string
		RequestTimeout   time.Duration // middleware timeout
		RateLimiterQPS   int           // middleware rate limiter capacity
		RateLimiterBurst int           // middleware rate limiter burst/refill
		PprofEnabled     bool
		PprofPort        string
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}

	Marketplace struct {
		GRPCHost string
	}

	Kafka struct {
		PortHealthcheck string
		Brokers         string
		ConsumerGroup   string
		TopicOrders     string // события заказов маркетплейса
		TopicRequests   string // изменения заявок для ожидающих клиентов
		Sarama          Sarama
		Handlers        KafkaHandlers
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	KafkaHandlers struct {
		OrderEvents HandlerTimeouts
	}

	HandlerTimeouts struct {
		ProcessTimeout time.Duration
	}

	Config struct {
		Tasks       Tasks
		Dispatch    Dispatch
		Server      HTTPServer
		Database    Database
		Marketplace Marketplace
		Kafka       Kafka
	}
)

func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	requestSweepInterval, err := osGetEnvDuration("BACKGROUND_REQUEST_SWEEP_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	staleRequestAge, err := osGetEnvDuration("BACKGROUND_STALE_REQUEST_AGE")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	presenceSweepInterval, err := osGetEnvDuration("BACKGROUND_PRESENCE_SWEEP_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	waitTimeout, err := osGetEnvDuration("DISPATCH_WAIT_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if waitTimeout == time.Duration(0) {
		waitTimeout = defaultWaitTimeout
	}

	presenceTTL, err := osGetEnvDuration("DISPATCH_PRESENCE_TTL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if presenceTTL == time.Duration(0) {
		presenceTTL = defaultPresenceTTL
	}

	saramaOffsetsAutocommit, err := osGetBool("KAFKA_SARAMA_OFFSETS_AUTOCOMMIT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	orderEventsTimeout, err := osGetEnvDuration("KAFKA_HANDLER_ORDER_EVENTS_PROCESS_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	requestTimeout, err := osGetEnvDuration("MIDDLEWARE_REQUEST_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterQPS, err := osGetInt("MIDDLEWARE_RATE_LIMIT_QPS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterBurst, err := osGetInt("MIDDLEWARE_RATE_LIMIT_BURST")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pprofEnabled, err := osGetBool("PPROF_ENABLED")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &Config{
		Tasks: Tasks{
			RequestSweepInterval:  requestSweepInterval,
			StaleRequestAge:       staleRequestAge,
			PresenceSweepInterval: presenceSweepInterval,
		},
		Dispatch: Dispatch{
			WaitTimeout: waitTimeout,
			PresenceTTL: presenceTTL,
		},
		Server: HTTPServer{
			Port:             os.Getenv("PORT"),
			RequestTimeout:   requestTimeout,
			RateLimiterQPS:   rateLimiterQPS,
			RateLimiterBurst: rateLimiterBurst,
			PprofEnabled:     pprofEnabled,
			PprofPort:        os.Getenv("PPROF_PORT"),
		},
		Database: Database{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		},
		Marketplace: Marketplace{
			GRPCHost: os.Getenv("MARKETPLACE_GRPC_HOST"),
		},
		Kafka: Kafka{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			ConsumerGroup:   os.Getenv("KAFKA_CONSUMER_GROUP"),
			TopicOrders:     os.Getenv("KAFKA_TOPIC_ORDERS"),
			TopicRequests:   os.Getenv("KAFKA_TOPIC_REQUESTS"),
			PortHealthcheck: os.Getenv("KAFKA_HTTP_HEALTHCHECK_PORT"),
			Sarama: Sarama{
				Version:                   os.Getenv("KAFKA_SARAMA_VERSION"),
				ConsumerOffsetsAutocommit: saramaOffsetsAutocommit,
			},
			Handlers: KafkaHandlers{
				OrderEvents: HandlerTimeouts{
					ProcessTimeout: orderEventsTimeout,
				},
			},
		},
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required (set via PORT env variable)")
	}
	if cfg.Server.RequestTimeout == time.Duration(0) {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT is required")
	}
	if cfg.Server.RateLimiterQPS == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_QPS is required")
	}
	if cfg.Server.RateLimiterBurst == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST is required")
	}
	if cfg.Server.PprofPort == "" && cfg.Server.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}

	if cfg.Database.Host == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if cfg.Database.Port == "" {
		return errors.New("POSTGRES_PORT is required")
	}
	if cfg.Database.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("POSTGRES_PASSWORD is required")
	}
	if cfg.Database.DBName == "" {
		return errors.New("POSTGRES_DB is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("POSTGRES_SSLMODE is required")
	}

	if cfg.Tasks.RequestSweepInterval == time.Duration(0) {
		return errors.New("BACKGROUND_REQUEST_SWEEP_INTERVAL is required")
	}
	if cfg.Tasks.StaleRequestAge == time.Duration(0) {
		return errors.New("BACKGROUND_STALE_REQUEST_AGE is required")
	}
	if cfg.Tasks.PresenceSweepInterval == time.Duration(0) {
		return errors.New("BACKGROUND_PRESENCE_SWEEP_INTERVAL is required")
	}

	// Зачистка не должна успевать раньше честного дедлайна клиента.
	if cfg.Tasks.StaleRequestAge < cfg.Dispatch.WaitTimeout {
		return errors.New("BACKGROUND_STALE_REQUEST_AGE must not be shorter than DISPATCH_WAIT_TIMEOUT")
	}

	if cfg.Marketplace.GRPCHost == "" {
		return errors.New("MARKETPLACE_GRPC_HOST is required")
	}

	if cfg.Kafka.Brokers == "" {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Kafka.TopicOrders == "" {
		return errors.New("KAFKA_TOPIC_ORDERS is required")
	}
	if cfg.Kafka.TopicRequests == "" {
		return errors.New("KAFKA_TOPIC_REQUESTS is required")
	}
	if cfg.Kafka.ConsumerGroup == "" {
		return errors.New("KAFKA_CONSUMER_GROUP is required")
	}
	if cfg.Kafka.PortHealthcheck == "" {
		return errors.New("KAFKA_HTTP_HEALTHCHECK_PORT is required")
	}

	if cfg.Kafka.Sarama.Version == "" {
		return errors.New("KAFKA_SARAMA_VERSION is required")
	}

	if cfg.Kafka.Handlers.OrderEvents.ProcessTimeout == time.Duration(0) {
		return errors.New("KAFKA_HANDLER_ORDER_EVENTS_PROCESS_TIMEOUT is required")
	}

	return nil
}

func osGetInt(s string) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return time.Duration(0), nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return false, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}
