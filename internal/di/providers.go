package di

import (
	"fmt"

	drepo "SignalRelay/internal/domain/repository"
	"SignalRelay/internal/handler/api"
	"SignalRelay/internal/relay"
	internalrepo "SignalRelay/internal/repository"
	"SignalRelay/internal/telegram"
	"SignalRelay/internal/usecase"
	"SignalRelay/pkg/config"
	xhttp "SignalRelay/pkg/http"
	pkgkafka "SignalRelay/pkg/kafka"
	xlogger "SignalRelay/pkg/logger"
	"SignalRelay/pkg/metrics"
	"SignalRelay/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideRuleSet compiles the signal patterns, falling back to the
// built-in set when the config lists none.
func ProvideRuleSet(cfg *config.Config) (*relay.RuleSet, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = relay.DefaultPatterns
	}
	rs, err := relay.NewRuleSet(patterns)
	if err != nil {
		return nil, fmt.Errorf("rule set: %w", err)
	}
	return rs, nil
}

// ProvideOffsetStore creates the update-offset store: Redis when
// enabled, in-memory otherwise.
func ProvideOffsetStore(cfg *config.Config) (drepo.OffsetStore, error) {
	if !cfg.Redis.Enabled {
		return internalrepo.NewMemoryOffsetStore(), nil
	}
	store, err := internalrepo.NewRedisOffsetStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("offset store: %w", err)
	}
	return store, nil
}

// ProvideTransport creates the Telegram transport client.
func ProvideTransport(cfg *config.Config, logger *xlogger.Logger, offsets drepo.OffsetStore) drepo.Transport {
	return telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.APIURL,
		cfg.Telegram.PollTimeout,
		logger,
		telegram.WithOffsetStore(offsets),
	)
}

// ProvidePublisher creates the Kafka signal publisher, or nil when
// fan-out is disabled.
func ProvidePublisher(cfg *config.Config) (drepo.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideRelayHandler creates the message classification/forwarding
// handler.
func ProvideRelayHandler(
	cfg *config.Config,
	rules *relay.RuleSet,
	transport drepo.Transport,
	publisher drepo.Publisher,
	m drepo.Metrics,
	logger *xlogger.Logger,
) *relay.Handler {
	return relay.NewHandler(
		cfg.Telegram.SourceChatID,
		cfg.Telegram.TargetChatID,
		rules,
		transport,
		publisher,
		m,
		logger,
	)
}

// ProvideSupervisor creates the transport lifecycle supervisor.
func ProvideSupervisor(
	cfg *config.Config,
	transport drepo.Transport,
	handler *relay.Handler,
	m drepo.Metrics,
	logger *xlogger.Logger,
) *usecase.Supervisor {
	return usecase.NewSupervisor(
		transport,
		handler,
		m,
		logger,
		cfg.Telegram.RestartBackoff,
		cfg.Telegram.TargetChatID,
		cfg.Telegram.StartupNotice,
	)
}

// ProvideStatusHandler creates the health surface handler.
func ProvideStatusHandler(cfg *config.Config, logger *xlogger.Logger, sup *usecase.Supervisor) xhttp.Handler {
	return api.NewStatusEchoHandler(logger, sup, cfg.Telegram.SourceChatID, cfg.Telegram.TargetChatID)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	sup *usecase.Supervisor,
	handler xhttp.Handler,
	publisher drepo.Publisher,
	offsets drepo.OffsetStore,
) *server.App {
	return server.New(cfg, logger, sup, handler, publisher, offsets)
}
