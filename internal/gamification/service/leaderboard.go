package service

import (
	"context"
	"log/slog"
	"time"

	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
)

// RankedEntry: 순위가 매겨진 리더보드 행
type RankedEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Points int64  `json:"points"`
}

// LeaderboardService: 리더보드 조회. 캐시를 우선 읽고 에러/미스 시
// Postgres 원본 집계로 폴백한다. 캐시가 꺼져 있어도 결과는 동일하다.
type LeaderboardService struct {
	repo   *repository.Repository
	cache  *gredis.LeaderboardCache
	logger *slog.Logger
}

// NewLeaderboardService: 새로운 LeaderboardService 인스턴스를 생성한다.
func NewLeaderboardService(repo *repository.Repository, cache *gredis.LeaderboardCache, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Weekly: 특정 주의 리더보드 페이지를 조회한다.
func (s *LeaderboardService) Weekly(ctx context.Context, weekStart time.Time, page int, size int) ([]RankedEntry, error) {
	if page < 0 {
		page = 0
	}
	offset := page * size

	if entries, ok := s.fromCache(ctx, func() ([]gredis.Entry, error) {
		return s.cache.TopWeekly(ctx, weekStart, offset, size)
	}); ok {
		return ranked(entries, offset), nil
	}

	rows, err := s.repo.WeeklyLeaderboard(ctx, weekStart, offset, size)
	if err != nil {
		return nil, err
	}
	return rankedRows(rows, offset), nil
}

// Monthly: 특정 달의 리더보드 상위 limit명을 조회한다.
func (s *LeaderboardService) Monthly(ctx context.Context, month time.Time, limit int) ([]RankedEntry, error) {
	if entries, ok := s.fromCache(ctx, func() ([]gredis.Entry, error) {
		return s.cache.TopMonthly(ctx, month, 0, limit)
	}); ok {
		return ranked(entries, 0), nil
	}

	rows, err := s.repo.MonthlyLeaderboard(ctx, month, limit)
	if err != nil {
		return nil, err
	}
	return rankedRows(rows, 0), nil
}

// AllTime: 전체 기간 리더보드 상위 limit명을 조회한다.
func (s *LeaderboardService) AllTime(ctx context.Context, limit int) ([]RankedEntry, error) {
	if entries, ok := s.fromCache(ctx, func() ([]gredis.Entry, error) {
		return s.cache.TopAllTime(ctx, 0, limit)
	}); ok {
		return ranked(entries, 0), nil
	}

	rows, err := s.repo.AllTimeLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rankedRows(rows, 0), nil
}

// fromCache: 캐시 조회 결과를 사용할 수 있으면 (entries, true)를 반환한다.
// 에러와 빈 결과는 미스로 취급한다 (캐시는 웜업 전일 수 있다).
func (s *LeaderboardService) fromCache(ctx context.Context, read func() ([]gredis.Entry, error)) ([]gredis.Entry, bool) {
	if !s.cache.Enabled() {
		return nil, false
	}
	entries, err := read()
	if err != nil {
		s.logger.WarnContext(ctx, "leaderboard_cache_read_failed", "err", err)
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

func ranked(entries []gredis.Entry, offset int) []RankedEntry {
	out := make([]RankedEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, RankedEntry{
			Rank:   offset + i + 1,
			UserID: e.UserID,
			Points: e.Points,
		})
	}
	return out
}

func rankedRows(rows []repository.LeaderboardEntry, offset int) []RankedEntry {
	out := make([]RankedEntry, 0, len(rows))
	for i, row := range rows {
		out = append(out, RankedEntry{
			Rank:   offset + i + 1,
			UserID: row.UserID,
			Points: row.Points,
		})
	}
	return out
}
