// Package config 는 게임화 서비스의 전체 설정 로딩을 담당한다.
package config

import (
	"fmt"

	commonconfig "github.com/park285/codepanel-gamification-go/internal/common/config"
)

// ServerConfig: HTTP 서버 설정 (포트 등) alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 (Timeouts, Limits 등) alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Redis 연결 설정 (리더보드 캐시용) alias
type RedisConfig = commonconfig.RedisConfig

// ValkeyMQConfig: Valkey Streams 기반 메시지 큐 설정 alias
type ValkeyMQConfig = commonconfig.ValkeyMQConfig

// PostgresConfig: PostgreSQL 데이터베이스 설정 alias
type PostgresConfig = commonconfig.PostgresConfig

// LogConfig: 로깅 설정 (디렉터리, 로테이션 등) alias
type LogConfig = commonconfig.LogConfig

// OTelConfig: OpenTelemetry 트레이싱 설정 alias
type OTelConfig = commonconfig.OTelConfig

// CacheConfig: 리더보드 캐시 동작 설정
type CacheConfig struct {
	Enabled bool
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Redis        RedisConfig
	Valkey       ValkeyMQConfig
	Postgres     PostgresConfig
	Cache        CacheConfig
	Log          LogConfig
	OTel         OTelConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := readServerConfig()
	if err != nil {
		return nil, err
	}
	serverTuning, err := readServerTuningConfig()
	if err != nil {
		return nil, err
	}
	redisCfg, err := readRedisConfig()
	if err != nil {
		return nil, err
	}
	valkey, err := readValkeyMQConfig()
	if err != nil {
		return nil, err
	}
	postgres, err := readPostgresConfig()
	if err != nil {
		return nil, err
	}
	cacheCfg, err := readCacheConfig()
	if err != nil {
		return nil, err
	}
	logCfg, err := readLogConfig()
	if err != nil {
		return nil, err
	}
	otel, err := commonconfig.ReadOTelConfigFromEnv(DefaultServiceName)
	if err != nil {
		return nil, fmt.Errorf("read otel config failed: %w", err)
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Redis:        redisCfg,
		Valkey:       valkey,
		Postgres:     postgres,
		Cache:        cacheCfg,
		Log:          logCfg,
		OTel:         otel,
	}, nil
}

func readServerConfig() (ServerConfig, error) {
	cfg, err := commonconfig.ReadServerConfigFromEnv(DefaultServerPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read server config failed: %w", err)
	}
	return cfg, nil
}

func readServerTuningConfig() (ServerTuningConfig, error) {
	cfg, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read server tuning config failed: %w", err)
	}
	return cfg, nil
}

func readRedisConfig() (RedisConfig, error) {
	cfg, err := commonconfig.ReadRedisConfigFromEnv(
		[]string{"CACHE_HOST", "REDIS_HOST"},
		[]string{"CACHE_PORT", "REDIS_PORT"},
		[]string{"CACHE_PASSWORD", "REDIS_PASSWORD"},
		[]string{"CACHE_SOCKET_PATH", "REDIS_SOCKET_PATH"},
		"localhost",
		6379,
		"",
	)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis config failed: %w", err)
	}
	return cfg, nil
}

func readValkeyMQConfig() (ValkeyMQConfig, error) {
	cfg, err := commonconfig.ReadValkeyMQConfigFromEnv(commonconfig.ValkeyMQConfigEnvOptions{
		HostKeys:     []string{"MQ_HOST", "VALKEY_MQ_HOST"},
		PortKeys:     []string{"MQ_PORT", "VALKEY_MQ_PORT"},
		PasswordKeys: []string{"MQ_PASSWORD", "VALKEY_MQ_PASSWORD"},

		TimeoutMillisKeys: []string{"MQ_TIMEOUT", "VALKEY_MQ_TIMEOUT"},
		PoolSizeKeys:      []string{"MQ_CONNECTION_POOL_SIZE", "VALKEY_MQ_CONNECTION_POOL_SIZE"},
		MinIdleKeys:       []string{"MQ_CONNECTION_MIN_IDLE_SIZE", "VALKEY_MQ_CONNECTION_MIN_IDLE_SIZE"},

		ConsumerGroupKeys: []string{"MQ_CONSUMER_GROUP", "VALKEY_MQ_CONSUMER_GROUP"},
		ConsumerNameKeys:  []string{"MQ_CONSUMER_NAME", "VALKEY_MQ_CONSUMER_NAME"},
		ResetConsumerGroupOnStartupKeys: []string{
			"MQ_RESET_CONSUMER_GROUP_ON_STARTUP",
			"VALKEY_MQ_RESET_CONSUMER_GROUP_ON_STARTUP",
		},
		StreamKeyKeys:           []string{"MQ_STREAM_KEY", "VALKEY_MQ_STREAM_KEY"},
		DeadLetterStreamKeyKeys: []string{"MQ_DLQ_STREAM_KEY", "VALKEY_MQ_DLQ_STREAM_KEY"},
		BatchSizeKeys:           []string{"MQ_BATCH_SIZE", "VALKEY_MQ_BATCH_SIZE"},
		BlockTimeoutMillisKeys: []string{
			"MQ_READ_TIMEOUT_MS",
			"VALKEY_MQ_READ_TIMEOUT_MS",
		},
		ConcurrencyKeys:           []string{"MQ_CONCURRENCY", "VALKEY_MQ_CONCURRENCY"},
		StreamMaxLenKeys:          []string{"MQ_STREAM_MAX_LEN", "VALKEY_MQ_STREAM_MAX_LEN"},
		MaxDeliveriesKeys:         []string{"MQ_MAX_DELIVERIES", "VALKEY_MQ_MAX_DELIVERIES"},
		ReclaimMinIdleMillisKeys:  []string{"MQ_RECLAIM_MIN_IDLE_MS", "VALKEY_MQ_RECLAIM_MIN_IDLE_MS"},
		ReclaimIntervalMillisKeys: []string{"MQ_RECLAIM_INTERVAL_MS", "VALKEY_MQ_RECLAIM_INTERVAL_MS"},

		DefaultHost:          "localhost",
		DefaultPort:          6379,
		DefaultPassword:      "",
		DefaultTimeoutMillis: 5000,
		DefaultPoolSize:      64,
		DefaultMinIdle:       10,

		DefaultConsumerGroup:               commonconfig.DefaultConsumerGroup,
		DefaultConsumerName:                DefaultConsumerName,
		DefaultResetConsumerGroupOnStartup: false,
		DefaultStreamKey:                   commonconfig.DefaultStreamKey,
		DefaultDeadLetterStreamKey:         commonconfig.DefaultDeadLetterStreamKey,
		DefaultBatchSize:                   commonconfig.MQBatchSize,
		DefaultBlockTimeoutMillis:          commonconfig.MQReadTimeoutMS,
		DefaultConcurrency:                 commonconfig.MQConsumerConcurrency,
		DefaultStreamMaxLen:                commonconfig.MQStreamMaxLen,
		DefaultMaxDeliveries:               commonconfig.MQMaxDeliveries,
		DefaultReclaimMinIdleMillis:        commonconfig.MQReclaimMinIdleMS,
		DefaultReclaimIntervalMillis:       commonconfig.MQReclaimIntervalMS,
	})
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read valkey mq config failed: %w", err)
	}
	return cfg, nil
}

func readPostgresConfig() (PostgresConfig, error) {
	cfg, err := commonconfig.ReadPostgresConfigFromEnv(DefaultDBName, DefaultDBUser)
	if err != nil {
		return PostgresConfig{}, fmt.Errorf("read postgres config failed: %w", err)
	}
	return cfg, nil
}

func readCacheConfig() (CacheConfig, error) {
	enabled, err := commonconfig.BoolFromEnv("LEADERBOARD_CACHE_ENABLED", true)
	if err != nil {
		return CacheConfig{}, fmt.Errorf("read LEADERBOARD_CACHE_ENABLED failed: %w", err)
	}
	return CacheConfig{Enabled: enabled}, nil
}

func readLogConfig() (LogConfig, error) {
	cfg, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return LogConfig{}, fmt.Errorf("read log config failed: %w", err)
	}
	return cfg, nil
}
