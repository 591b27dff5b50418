package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/park285/codepanel-gamification-go/internal/common/bootstrap"
	commonconfig "github.com/park285/codepanel-gamification-go/internal/common/config"
	"github.com/park285/codepanel-gamification-go/internal/common/dbutil"
	"github.com/park285/codepanel-gamification-go/internal/common/di"
	"github.com/park285/codepanel-gamification-go/internal/common/httpserver"
	"github.com/park285/codepanel-gamification-go/internal/gamification/config"
	"github.com/park285/codepanel-gamification-go/internal/gamification/httpapi"
	gmq "github.com/park285/codepanel-gamification-go/internal/gamification/mq"
	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
	gsvc "github.com/park285/codepanel-gamification-go/internal/gamification/service"
)

func newGamificationDB(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*gorm.DB, func(), error) {
	db, sqlDB, err := dbutil.OpenWithRetry(
		ctx,
		func(openCtx context.Context) (*gorm.DB, *sql.DB, error) {
			return openPostgres(openCtx, cfg.Postgres)
		},
		dbutil.DefaultRetryConfig(),
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres failed: %w", err)
	}

	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("postgres_close_failed", "err", closeErr)
		}
	}
	return db, closeFn, nil
}

func newGamificationRepository(ctx context.Context, db *gorm.DB, logger *slog.Logger) (*repository.Repository, error) {
	repo := repository.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	seeded, err := repo.SeedAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed achievements failed: %w", err)
	}
	if seeded > 0 {
		logger.Info("achievements_seeded", "count", seeded)
	}
	return repo, nil
}

func newGamificationDataRedis(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	client, closeFn, err := bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("init valkey failed: %w", err)
	}
	return client, closeFn, nil
}

func newGamificationMQValkey(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (di.MQValkeyClient, func(), error) {
	client, closeFn, err := bootstrap.NewAndPingMQValkeyClient(ctx, cfg.Valkey, logger)
	if err != nil {
		return di.MQValkeyClient{}, nil, fmt.Errorf("init valkey mq failed: %w", err)
	}
	return client, closeFn, nil
}

// gamificationServices: 파이프라인과 읽기 API가 공유하는 서비스 묶음
type gamificationServices struct {
	pipeline     *gsvc.Pipeline
	progress     *gsvc.ProgressService
	leaderboards *gsvc.LeaderboardService
	publisher    *gmq.EventPublisher
}

func newGamificationServices(
	cfg *config.Config,
	repo *repository.Repository,
	cache *gredis.LeaderboardCache,
	mqValkey di.MQValkeyClient,
	logger *slog.Logger,
) *gamificationServices {
	notifier := gmq.NewNotificationPublisher(mqValkey.Client, logger, cfg.Valkey.StreamMaxLen)
	evaluator := gsvc.NewEvaluator(repo, cache, notifier, logger)
	progress := gsvc.NewProgressService(repo, evaluator, logger)
	scoring := gsvc.NewScoringService(repo, cache, logger)

	return &gamificationServices{
		pipeline:     gsvc.NewPipeline(scoring, progress, logger),
		progress:     progress,
		leaderboards: gsvc.NewLeaderboardService(repo, cache, logger),
		publisher:    gmq.NewEventPublisher(mqValkey.Client, logger, cfg.Valkey),
	}
}

func newGamificationHTTPHandler(
	repo *repository.Repository,
	services *gamificationServices,
	otelEnabled bool,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	httpapi.Register(mux, repo, services.leaderboards, services.progress, services.publisher, logger)

	if otelEnabled {
		return otelhttp.NewHandler(mux, "gamification.http")
	}
	return mux
}

func newGamificationHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.NewServer(addr, handler, httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	})
}

func newGamificationServerApp(
	logger *slog.Logger,
	server *http.Server,
	consumer *gmq.EventConsumer,
) *bootstrap.ServerApp {
	return bootstrap.NewServerApp(
		"gamification",
		logger,
		server,
		10*time.Second,
		bootstrap.BackgroundTask{
			Name:        "event_consumer",
			ErrorLogKey: "event_consumer_failed",
			Run:         consumer.Run,
		},
		bootstrap.BackgroundTask{
			Name:        "event_reclaimer",
			ErrorLogKey: "event_reclaimer_failed",
			Run:         consumer.RunReclaimer,
		},
	)
}

func openPostgres(ctx context.Context, cfg commonconfig.PostgresConfig) (*gorm.DB, *sql.DB, error) {
	// UDS 경로가 설정되면 TCP 대신 소켓으로 연결한다
	host := cfg.Host
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	if cfg.SocketPath != "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.SocketPath,
			cfg.User,
			cfg.Password,
			cfg.Name,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("gorm open failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, sqlDB, nil
}
