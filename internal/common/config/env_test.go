package config

import (
	"testing"
	"time"
)

func TestIntFromEnv(t *testing.T) {
	key := "TEST_INT_ENV"

	t.Run("default", func(t *testing.T) {
		got, err := IntFromEnv(key, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv(key, "100")
		got, err := IntFromEnv(key, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 100 {
			t.Errorf("expected 100, got %d", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(key, "not_int")
		_, err := IntFromEnv(key, 42)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestBoolFromEnv(t *testing.T) {
	key := "TEST_BOOL_ENV"

	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"no", false},
	}

	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv(key, tt.val)
			got, err := BoolFromEnv(key, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(key, "maybe")
		_, err := BoolFromEnv(key, false)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestStringListFromEnv(t *testing.T) {
	key := "TEST_LIST_ENV"

	t.Setenv(key, "foo,bar, baz")
	got := StringListFromEnv(key, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0] != "foo" || got[1] != "bar" || got[2] != "baz" {
		t.Errorf("mismatch: %v", got)
	}

	t.Setenv(key, "  ")
	got = StringListFromEnv(key, []string{"default"})
	if len(got) != 1 || got[0] != "default" {
		t.Errorf("expected default, got %v", got)
	}
}

func TestDurationFromEnv(t *testing.T) {
	key := "TEST_DURATION_ENV"

	t.Setenv(key, "10")

	// Seconds
	d, err := DurationSecondsFromEnv(key, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 10*time.Second {
		t.Errorf("expected 10s, got %v", d)
	}

	// Millis
	d, err = DurationMillisFromEnv(key, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 10*time.Millisecond {
		t.Errorf("expected 10ms, got %v", d)
	}
}

func TestStringFromEnvFirstNonEmpty(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got := StringFromEnvFirstNonEmpty([]string{"TEST_FOO", "TEST_BAR"}, "default")
		if got != "default" {
			t.Errorf("expected default, got %q", got)
		}
	})

	t.Run("first_non_empty_wins", func(t *testing.T) {
		t.Setenv("TEST_FOO", "foo")
		t.Setenv("TEST_BAR", "bar")
		got := StringFromEnvFirstNonEmpty([]string{"TEST_FOO", "TEST_BAR"}, "default")
		if got != "foo" {
			t.Errorf("expected foo, got %q", got)
		}
	})

	t.Run("skips_empty", func(t *testing.T) {
		t.Setenv("TEST_FOO", "  ")
		t.Setenv("TEST_BAR", "bar")
		got := StringFromEnvFirstNonEmpty([]string{"TEST_FOO", "TEST_BAR"}, "default")
		if got != "bar" {
			t.Errorf("expected bar, got %q", got)
		}
	})
}

func TestIntFromEnvFirstNonEmpty(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got, err := IntFromEnvFirstNonEmpty([]string{"TEST_INT_FOO", "TEST_INT_BAR"}, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("TEST_INT_FOO", "  ")
		t.Setenv("TEST_INT_BAR", "10")
		got, err := IntFromEnvFirstNonEmpty([]string{"TEST_INT_FOO", "TEST_INT_BAR"}, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 10 {
			t.Errorf("expected 10, got %d", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("TEST_INT_FOO", "oops")
		_, err := IntFromEnvFirstNonEmpty([]string{"TEST_INT_FOO", "TEST_INT_BAR"}, 7)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestInt64FromEnvFirstNonEmpty(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got, err := Int64FromEnvFirstNonEmpty([]string{"TEST_I64_FOO", "TEST_I64_BAR"}, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("TEST_I64_FOO", "  ")
		t.Setenv("TEST_I64_BAR", "10")
		got, err := Int64FromEnvFirstNonEmpty([]string{"TEST_I64_FOO", "TEST_I64_BAR"}, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 10 {
			t.Errorf("expected 10, got %d", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("TEST_I64_FOO", "oops")
		_, err := Int64FromEnvFirstNonEmpty([]string{"TEST_I64_FOO", "TEST_I64_BAR"}, 7)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestBoolFromEnvFirstNonEmpty(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got, err := BoolFromEnvFirstNonEmpty([]string{"TEST_BOOL_FOO", "TEST_BOOL_BAR"}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != true {
			t.Errorf("expected true, got %v", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("TEST_BOOL_FOO", "  ")
		t.Setenv("TEST_BOOL_BAR", "false")
		got, err := BoolFromEnvFirstNonEmpty([]string{"TEST_BOOL_FOO", "TEST_BOOL_BAR"}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != false {
			t.Errorf("expected false, got %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("TEST_BOOL_FOO", "maybe")
		_, err := BoolFromEnvFirstNonEmpty([]string{"TEST_BOOL_FOO", "TEST_BOOL_BAR"}, true)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestStringListFromEnvFirstNonEmpty(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		got := StringListFromEnvFirstNonEmpty([]string{"TEST_LIST_FOO", "TEST_LIST_BAR"}, []string{"default"})
		if len(got) != 1 || got[0] != "default" {
			t.Errorf("expected default, got %v", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("TEST_LIST_FOO", "  ")
		t.Setenv("TEST_LIST_BAR", "a,b, c")
		got := StringListFromEnvFirstNonEmpty([]string{"TEST_LIST_FOO", "TEST_LIST_BAR"}, nil)
		if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
			t.Errorf("unexpected list: %v", got)
		}
	})
}

func TestReadPostgresConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ReadPostgresConfigFromEnv("codepanel", "codepanel")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != "localhost" || cfg.Port != 5432 {
			t.Errorf("unexpected host/port: %s:%d", cfg.Host, cfg.Port)
		}
		if cfg.Name != "codepanel" || cfg.User != "codepanel" {
			t.Errorf("unexpected name/user: %s/%s", cfg.Name, cfg.User)
		}
		if cfg.SSLMode != "disable" {
			t.Errorf("expected sslmode disable, got %q", cfg.SSLMode)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "15432")
		t.Setenv("DB_SOCKET_PATH", "/var/run/postgresql")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_SSLMODE", "require")

		cfg, err := ReadPostgresConfigFromEnv("codepanel", "codepanel")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != "db.internal" || cfg.Port != 15432 {
			t.Errorf("unexpected host/port: %s:%d", cfg.Host, cfg.Port)
		}
		if cfg.SocketPath != "/var/run/postgresql" {
			t.Errorf("unexpected socket path: %q", cfg.SocketPath)
		}
		if cfg.Password != "secret" || cfg.SSLMode != "require" {
			t.Errorf("unexpected password/sslmode: %q/%q", cfg.Password, cfg.SSLMode)
		}
	})

	t.Run("invalid_port", func(t *testing.T) {
		t.Setenv("DB_PORT", "oops")
		_, err := ReadPostgresConfigFromEnv("codepanel", "codepanel")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestReadOTelConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ReadOTelConfigFromEnv("gamification")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Enabled {
			t.Error("expected disabled by default")
		}
		if cfg.ServiceName != "gamification" {
			t.Errorf("unexpected service name: %q", cfg.ServiceName)
		}
		if cfg.SampleRate != 1.0 {
			t.Errorf("expected sample rate 1.0, got %v", cfg.SampleRate)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("OTEL_ENABLED", "true")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
		t.Setenv("OTEL_TRACES_SAMPLE_RATE", "0.25")

		cfg, err := ReadOTelConfigFromEnv("gamification")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Enabled {
			t.Error("expected enabled")
		}
		if cfg.OTLPEndpoint != "collector:4317" {
			t.Errorf("unexpected endpoint: %q", cfg.OTLPEndpoint)
		}
		if cfg.SampleRate != 0.25 {
			t.Errorf("expected sample rate 0.25, got %v", cfg.SampleRate)
		}
	})
}

func TestReadValkeyMQConfigFromEnv(t *testing.T) {
	baseOpts := ValkeyMQConfigEnvOptions{
		HostKeys:                  []string{"TEST_MQ_HOST"},
		PortKeys:                  []string{"TEST_MQ_PORT"},
		StreamKeyKeys:             []string{"TEST_MQ_STREAM_KEY"},
		DeadLetterStreamKeyKeys:   []string{"TEST_MQ_DLQ_STREAM_KEY"},
		MaxDeliveriesKeys:         []string{"TEST_MQ_MAX_DELIVERIES"},
		ReclaimMinIdleMillisKeys:  []string{"TEST_MQ_RECLAIM_MIN_IDLE_MS"},
		ReclaimIntervalMillisKeys: []string{"TEST_MQ_RECLAIM_INTERVAL_MS"},

		DefaultHost:                  "localhost",
		DefaultPort:                  6379,
		DefaultTimeoutMillis:         3000,
		DefaultPoolSize:              16,
		DefaultMinIdle:               2,
		DefaultConsumerGroup:         DefaultConsumerGroup,
		DefaultConsumerName:          "worker-1",
		DefaultStreamKey:             DefaultStreamKey,
		DefaultDeadLetterStreamKey:   DefaultDeadLetterStreamKey,
		DefaultBatchSize:             MQBatchSize,
		DefaultBlockTimeoutMillis:    MQReadTimeoutMS,
		DefaultConcurrency:           MQConsumerConcurrency,
		DefaultStreamMaxLen:          MQStreamMaxLen,
		DefaultMaxDeliveries:         MQMaxDeliveries,
		DefaultReclaimMinIdleMillis:  MQReclaimMinIdleMS,
		DefaultReclaimIntervalMillis: MQReclaimIntervalMS,
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := ReadValkeyMQConfigFromEnv(baseOpts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StreamKey != DefaultStreamKey {
			t.Errorf("unexpected stream key: %q", cfg.StreamKey)
		}
		if cfg.DeadLetterStreamKey != DefaultDeadLetterStreamKey {
			t.Errorf("unexpected dlq stream key: %q", cfg.DeadLetterStreamKey)
		}
		if cfg.ConsumerGroup != DefaultConsumerGroup {
			t.Errorf("unexpected consumer group: %q", cfg.ConsumerGroup)
		}
		if cfg.MaxDeliveries != MQMaxDeliveries {
			t.Errorf("unexpected max deliveries: %d", cfg.MaxDeliveries)
		}
		if cfg.ReclaimMinIdle != MQReclaimMinIdleMS*time.Millisecond {
			t.Errorf("unexpected reclaim min idle: %v", cfg.ReclaimMinIdle)
		}
		if cfg.ReclaimInterval != MQReclaimIntervalMS*time.Millisecond {
			t.Errorf("unexpected reclaim interval: %v", cfg.ReclaimInterval)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("TEST_MQ_STREAM_KEY", "events.test")
		t.Setenv("TEST_MQ_DLQ_STREAM_KEY", "events.test.dlq")
		t.Setenv("TEST_MQ_MAX_DELIVERIES", "3")
		t.Setenv("TEST_MQ_RECLAIM_MIN_IDLE_MS", "1000")
		t.Setenv("TEST_MQ_RECLAIM_INTERVAL_MS", "500")

		cfg, err := ReadValkeyMQConfigFromEnv(baseOpts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StreamKey != "events.test" || cfg.DeadLetterStreamKey != "events.test.dlq" {
			t.Errorf("unexpected stream keys: %q/%q", cfg.StreamKey, cfg.DeadLetterStreamKey)
		}
		if cfg.MaxDeliveries != 3 {
			t.Errorf("expected max deliveries 3, got %d", cfg.MaxDeliveries)
		}
		if cfg.ReclaimMinIdle != time.Second || cfg.ReclaimInterval != 500*time.Millisecond {
			t.Errorf("unexpected reclaim timings: %v/%v", cfg.ReclaimMinIdle, cfg.ReclaimInterval)
		}
	})

	t.Run("nonpositive_falls_back", func(t *testing.T) {
		t.Setenv("TEST_MQ_MAX_DELIVERIES", "0")
		cfg, err := ReadValkeyMQConfigFromEnv(baseOpts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDeliveries != MQMaxDeliveries {
			t.Errorf("expected fallback to default, got %d", cfg.MaxDeliveries)
		}
	})
}

func TestReadServerTuningConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ReadServerTuningConfigFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ReadHeaderTimeout != 5*time.Second {
			t.Errorf("expected ReadHeaderTimeout=5s, got %v", cfg.ReadHeaderTimeout)
		}
		if cfg.IdleTimeout != 90*time.Second {
			t.Errorf("expected IdleTimeout=90s, got %v", cfg.IdleTimeout)
		}
		if cfg.MaxHeaderBytes != 1<<20 {
			t.Errorf("expected MaxHeaderBytes=1MiB, got %d", cfg.MaxHeaderBytes)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SERVER_READ_HEADER_TIMEOUT_SECONDS", "7")
		t.Setenv("SERVER_IDLE_TIMEOUT_SECONDS", "60")
		t.Setenv("SERVER_MAX_HEADER_BYTES", "8192")
		cfg, err := ReadServerTuningConfigFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ReadHeaderTimeout != 7*time.Second {
			t.Errorf("expected ReadHeaderTimeout=7s, got %v", cfg.ReadHeaderTimeout)
		}
		if cfg.IdleTimeout != 60*time.Second {
			t.Errorf("expected IdleTimeout=60s, got %v", cfg.IdleTimeout)
		}
		if cfg.MaxHeaderBytes != 8192 {
			t.Errorf("expected MaxHeaderBytes=8192, got %d", cfg.MaxHeaderBytes)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("SERVER_MAX_HEADER_BYTES", "-1")
		_, err := ReadServerTuningConfigFromEnv()
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
