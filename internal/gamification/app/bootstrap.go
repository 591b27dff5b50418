// Package app 은 게임화 서비스의 의존성 조립과 기동을 담당한다.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/park285/codepanel-gamification-go/internal/common/bootstrap"
	"github.com/park285/codepanel-gamification-go/internal/common/telemetry"
	"github.com/park285/codepanel-gamification-go/internal/gamification/config"
	gmq "github.com/park285/codepanel-gamification-go/internal/gamification/mq"
	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
)

// Initialize 는 게임화 애플리케이션 의존성을 초기화하고 ServerApp을 반환한다.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	tracing, err := telemetry.NewProvider(ctx, cfg.OTel)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	cleanupTracing := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracing.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry_shutdown_failed", "err", shutdownErr)
		}
	}

	db, cleanupDB, err := newGamificationDB(ctx, cfg, logger)
	if err != nil {
		cleanupTracing()
		return nil, nil, err
	}

	repo, err := newGamificationRepository(ctx, db, logger)
	if err != nil {
		cleanupDB()
		cleanupTracing()
		return nil, nil, err
	}

	// 캐시가 꺼져 있으면 nil 캐시로 동작한다 (리더보드는 DB 집계로 폴백)
	var cache *gredis.LeaderboardCache
	cleanupDataValkey := func() {}
	if cfg.Cache.Enabled {
		dataValkeyClient, closeFn, redisErr := newGamificationDataRedis(ctx, cfg, logger)
		if redisErr != nil {
			cleanupDB()
			cleanupTracing()
			return nil, nil, redisErr
		}
		cleanupDataValkey = closeFn
		cache = gredis.NewLeaderboardCache(dataValkeyClient.Client, logger)
	} else {
		logger.Info("leaderboard_cache_disabled")
	}

	mqValkeyClient, cleanupMQValkey, err := newGamificationMQValkey(ctx, cfg, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupDB()
		cleanupTracing()
		return nil, nil, err
	}

	services := newGamificationServices(cfg, repo, cache, mqValkeyClient, logger)
	consumer := gmq.NewEventConsumer(mqValkeyClient.Client, logger, cfg.Valkey, services.pipeline.Handle)

	handler := newGamificationHTTPHandler(repo, services, tracing.IsEnabled(), logger)
	httpServer := newGamificationHTTPServer(cfg, handler)

	serverApp := newGamificationServerApp(logger, httpServer, consumer)

	cleanup := func() {
		cleanupMQValkey()
		cleanupDataValkey()
		cleanupDB()
		cleanupTracing()
	}

	return serverApp, cleanup, nil
}
