package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/park285/codepanel-gamification-go/internal/common/cache"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
	"github.com/park285/codepanel-gamification-go/internal/gamification/mq"
	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
)

const (
	grantedCacheSize = 10_000
	grantedCacheTTL  = 10 * time.Minute
)

// Evaluator: 지표 값이 갱신될 때 목표에 도달한 업적을 평가하여 수여한다.
// 업적별로 에러가 격리되며, 한 업적의 수여 실패가 다른 업적 평가를 막지 않는다.
type Evaluator struct {
	repo     *repository.Repository
	cache    *gredis.LeaderboardCache
	notifier *mq.NotificationPublisher
	// granted: 이미 수여된 (user, achievement) 조합의 재평가를 줄이는 패스트패스
	granted *cache.TTLLRUCache
	logger  *slog.Logger
}

// NewEvaluator: 새로운 Evaluator 인스턴스를 생성한다. notifier는 nil일 수 있다.
func NewEvaluator(
	repo *repository.Repository,
	lbCache *gredis.LeaderboardCache,
	notifier *mq.NotificationPublisher,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		repo:     repo,
		cache:    lbCache,
		notifier: notifier,
		granted:  cache.NewTTLLRUCache(grantedCacheSize, grantedCacheTTL),
		logger:   logger,
	}
}

// Evaluate: 지표 값에 도달한 업적들을 수여한다. 최종 중복 차단은
// (user, achievement) 유니크 제약이 담당하므로 동시 평가에도 안전하다.
// occurredAt은 지표를 전진시킨 이벤트의 발생 시각이며, 보상 점수의 주간 귀속과
// 수여 시각이 모두 이 시각을 기준으로 한다. 점수 반영 경로와 같은 시간축을 쓰므로
// 재전달·지연 이벤트에도 주간 집계가 결정적으로 맞아떨어진다.
func (e *Evaluator) Evaluate(ctx context.Context, user *repository.User, metric model.MetricType, value int64, occurredAt time.Time) {
	defs, err := e.repo.ListEligibleAchievements(ctx, metric, value)
	if err != nil {
		e.logger.WarnContext(ctx, "achievement_eligibility_failed",
			"err", err,
			"user_id", user.ID,
			"metric", string(metric),
		)
		return
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	at := occurredAt.UTC()
	for _, def := range defs {
		key := user.ID + ":" + def.ID
		if done, ok := e.granted.Get(key); ok && done {
			continue
		}

		result, err := e.repo.GrantAchievement(ctx, user.ID, def, at)
		if err != nil {
			e.logger.WarnContext(ctx, "achievement_grant_failed",
				"err", err,
				"user_id", user.ID,
				"achievement_id", def.ID,
			)
			continue
		}

		e.granted.Set(key, true)
		if !result.Granted {
			continue
		}

		e.logger.InfoContext(ctx, "achievement_awarded",
			"user_id", user.ID,
			"achievement_id", def.ID,
			"achievement_name", def.Name,
			"points_reward", def.PointsReward,
		)

		if def.PointsReward != 0 {
			if cacheErr := e.cache.IncrementAll(ctx, user.ID, def.PointsReward, result.AwardedAt); cacheErr != nil {
				e.logger.WarnContext(ctx, "leaderboard_cache_incr_failed",
					"err", cacheErr,
					"user_id", user.ID,
					"achievement_id", def.ID,
				)
			}
		}

		e.notify(ctx, user, def, result.AwardedAt)
	}
}

func (e *Evaluator) notify(ctx context.Context, user *repository.User, def repository.Achievement, awardedAt time.Time) {
	if e.notifier == nil {
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		e.logger.WarnContext(ctx, "achievement_notify_skipped", "err", err, "user_id", user.ID)
		return
	}

	event := model.AchievementAwardedEvent{
		AchievementID:          def.ID,
		AchievementName:        def.Name,
		AchievementDescription: def.Description,
		UserID:                 userID,
		UserName:               user.Username,
		PointsReward:           def.PointsReward,
		AwardedAt:              awardedAt,
	}
	if err := e.notifier.PublishAchievementAwarded(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "achievement_notify_failed",
			"err", err,
			"user_id", user.ID,
			"achievement_id", def.ID,
		)
	}
}
