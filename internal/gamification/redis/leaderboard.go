// Package redis 는 발키 정렬 집합 기반 리더보드 캐시를 제공한다.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/codepanel-gamification-go/internal/common/config"
	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// ErrCacheDisabled: 캐시가 구성되지 않았을 때 조회 계열이 반환한다.
// 호출자는 이를 미스로 취급하고 원본 저장소로 폴백한다.
var ErrCacheDisabled = errors.New("leaderboard cache disabled")

// Entry: 캐시 리더보드 한 행
type Entry struct {
	UserID string
	Points int64
}

// LeaderboardCache: 주간/월간/전체 리더보드를 정렬 집합으로 유지하는 캐시.
// 캐시는 조회 가속용이며 원본은 Postgres다. nil 수신자도 허용된다(캐시 비활성).
type LeaderboardCache struct {
	client valkey.Client
	logger *slog.Logger
}

// NewLeaderboardCache: 새로운 LeaderboardCache를 생성한다.
func NewLeaderboardCache(client valkey.Client, logger *slog.Logger) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		logger: logger,
	}
}

// WeeklyKey: 주간 리더보드 키 (lb:weekly:<월요일 날짜>)
func WeeklyKey(t time.Time) string {
	return config.LeaderboardWeeklyKeyPrefix + model.WeekStart(t).Format(time.DateOnly)
}

// MonthlyKey: 월간 리더보드 키 (lb:monthly:<yyyy-MM>)
func MonthlyKey(t time.Time) string {
	return config.LeaderboardMonthlyKeyPrefix + model.MonthKey(t)
}

// AllTimeKey: 전체 기간 리더보드 키
func AllTimeKey() string {
	return config.LeaderboardAllTimeKey
}

// Enabled: 캐시 사용 가능 여부
func (c *LeaderboardCache) Enabled() bool {
	return c != nil && c.client != nil
}

// IncrementAll: 반영된 점수를 주간/월간/전체 세 보드에 모두 더한다.
// 호출자는 실패를 로깅하고 계속 진행한다(원본 집계는 DB가 담당).
func (c *LeaderboardCache) IncrementAll(ctx context.Context, userID string, points int, at time.Time) error {
	if !c.Enabled() {
		return nil
	}
	if points == 0 {
		return nil
	}

	for _, key := range []string{WeeklyKey(at), MonthlyKey(at), AllTimeKey()} {
		cmd := c.client.B().Zincrby().Key(key).Increment(float64(points)).Member(userID).Build()
		if err := c.client.Do(ctx, cmd).Error(); err != nil {
			return cerrors.RedisError{Operation: "leaderboard_zincrby", Err: err}
		}
	}
	return nil
}

// TopWeekly: 주간 보드의 [offset, offset+limit) 구간을 점수 내림차순으로 조회한다.
func (c *LeaderboardCache) TopWeekly(ctx context.Context, at time.Time, offset int, limit int) ([]Entry, error) {
	return c.top(ctx, WeeklyKey(at), offset, limit)
}

// TopMonthly: 월간 보드 상위 구간을 조회한다.
func (c *LeaderboardCache) TopMonthly(ctx context.Context, at time.Time, offset int, limit int) ([]Entry, error) {
	return c.top(ctx, MonthlyKey(at), offset, limit)
}

// TopAllTime: 전체 보드 상위 구간을 조회한다.
func (c *LeaderboardCache) TopAllTime(ctx context.Context, offset int, limit int) ([]Entry, error) {
	return c.top(ctx, AllTimeKey(), offset, limit)
}

func (c *LeaderboardCache) top(ctx context.Context, key string, offset int, limit int) ([]Entry, error) {
	if !c.Enabled() {
		return nil, ErrCacheDisabled
	}
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}

	cmd := c.client.B().Zrange().
		Key(key).
		Min(strconv.Itoa(offset)).
		Max(strconv.Itoa(offset + limit - 1)).
		Rev().
		Withscores().
		Build()
	scores, err := c.client.Do(ctx, cmd).AsZScores()
	if err != nil {
		return nil, cerrors.RedisError{Operation: "leaderboard_zrange", Err: err}
	}

	entries := make([]Entry, 0, len(scores))
	for _, zs := range scores {
		entries = append(entries, Entry{
			UserID: zs.Member,
			Points: int64(zs.Score),
		})
	}
	return entries, nil
}
