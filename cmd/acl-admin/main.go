package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"

	"github.com/danishnajam/kafka/internal/aclcache"
	"github.com/danishnajam/kafka/internal/audit"
	"github.com/danishnajam/kafka/internal/core/config"
	"github.com/danishnajam/kafka/internal/health"
	"github.com/danishnajam/kafka/internal/idempotency"
	"github.com/danishnajam/kafka/internal/logger"
	"github.com/danishnajam/kafka/internal/metrics"
	"github.com/danishnajam/kafka/internal/observability"
	"github.com/danishnajam/kafka/internal/router"
	"github.com/danishnajam/kafka/internal/server"
	"github.com/danishnajam/kafka/pkg/kadmin"
)

var Version = "dev"

type readiness struct {
	client  *kadmin.Client
	brokers []string
}

func (r readiness) Readiness() (bool, []string) {
	if err := r.client.Ping(); err != nil {
		return false, nil
	}
	return true, r.brokers
}

func main() {
	os.Exit(run())
}

func run() int {
	brokersFlag := flag.String("brokers", "", "comma-separated broker addresses (overrides KAFKA_BROKERS)")
	flag.Parse()

	cfg := config.FromEnv()
	if *brokersFlag != "" {
		var brokers []string
		for _, b := range strings.Split(*brokersFlag, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.KafkaBrokers = brokers
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Cluster:   cfg.ClusterName,
		Component: "acl-admin",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.SetCluster(cfg.ClusterName)
	observability.ExposeBuildInfo(Version)
	appLog.Info("starting acl-admin",
		"addr", cfg.Addr,
		"version", Version,
		"brokers", strings.Join(cfg.KafkaBrokers, ","),
		"cluster", cfg.ClusterName)

	version, err := sarama.ParseKafkaVersion(cfg.KafkaVersion)
	if err != nil {
		appLog.Error("invalid KAFKA_VERSION", "value", cfg.KafkaVersion, "err", err)
		return 1
	}

	admin, err := kadmin.Connect(kadmin.Config{
		Brokers:     cfg.KafkaBrokers,
		ClientID:    cfg.KafkaClientID,
		Version:     version,
		DialTimeout: cfg.KafkaDialTimeout,
	}, appLog)
	if err != nil {
		appLog.Error("failed to connect cluster admin", "err", err)
		return 1
	}
	defer func() { _ = admin.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache router.DescribeCache
	if cfg.CacheEnabled {
		c, err := aclcache.New(ctx, cfg.RedisAddr, cfg.CacheTTL, aclcache.WithDialTimeout(cfg.CacheOpTimeout))
		if err != nil {
			appLog.Error("describe cache setup failed", "err", err)
			return 1
		}
		defer func() { _ = c.Close() }()
		cache = c
	}

	var auditor router.Auditor
	if cfg.Audit.Enabled {
		p, err := audit.NewPublisher(cfg.KafkaBrokers, cfg.Audit.Topic, cfg.Audit.QueueSize, appLog)
		if err != nil {
			appLog.Error("audit publisher setup failed", "err", err)
			return 1
		}
		defer func() { _ = p.Close() }()
		auditor = p
	}

	guard := idempotency.New(cfg.IdempotencySize)
	h := router.New(appLog, admin, cache, auditor, guard, cfg.DeleteWaitTimeout)
	prov := metrics.Init(metrics.BuildInfo{Version: Version})

	var rr health.ReadinessReporter = readiness{client: admin, brokers: cfg.KafkaBrokers}
	if err := server.Run(ctx, cfg, appLog, h, rr, prov); err != nil {
		appLog.Error("server error", "err", err)
		return 1
	}
	appLog.Info("shutdown complete")
	return 0
}
