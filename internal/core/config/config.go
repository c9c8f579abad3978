package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AuditCfg struct {
	Enabled   bool
	Topic     string
	QueueSize int
}

type Config struct {
	Addr              string
	LogLevel          string
	ClusterName       string
	KafkaBrokers      []string
	KafkaVersion      string
	KafkaClientID     string
	KafkaDialTimeout  time.Duration
	RedisAddr         string
	CacheEnabled      bool
	CacheTTL          time.Duration
	CacheOpTimeout    time.Duration
	DeleteWaitTimeout time.Duration
	IdempotencySize   int
	Audit             AuditCfg
}

func FromEnv() Config {
	return Config{
		Addr:              getenv("ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		ClusterName:       getenv("CLUSTER_NAME", "default"),
		KafkaBrokers:      splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaVersion:      getenv("KAFKA_VERSION", "2.1.0"),
		KafkaClientID:     getenv("KAFKA_CLIENT_ID", "acl-admin"),
		KafkaDialTimeout:  getduration("KAFKA_DIAL_TIMEOUT", 10*time.Second),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		CacheEnabled:      getbool("CACHE_ENABLED", false),
		CacheTTL:          getduration("CACHE_TTL", 30*time.Second),
		CacheOpTimeout:    getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		DeleteWaitTimeout: getduration("DELETE_WAIT_TIMEOUT", 30*time.Second),
		IdempotencySize:   getint("IDEMPOTENCY_LRU_SIZE", 4096),
		Audit: AuditCfg{
			Enabled:   getbool("AUDIT_ENABLED", false),
			Topic:     getenv("AUDIT_TOPIC", "acl-audit"),
			QueueSize: getint("AUDIT_QUEUE_SIZE", 1024),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
