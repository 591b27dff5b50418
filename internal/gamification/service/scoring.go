package service

import (
	"context"
	"log/slog"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
)

// ScoreResult: 점수 반영 결과
type ScoreResult struct {
	Applied bool             // 원장에 새로 기록되었는지 (중복 replay면 false)
	Points  int              // 난이도 배수까지 적용된 최종 점수
	User    *repository.User // 이벤트 주체
}

// ScoringService: 도메인 이벤트를 점수로 환산하여 원장과 주간 집계에 반영한다.
type ScoringService struct {
	repo   *repository.Repository
	cache  *gredis.LeaderboardCache
	logger *slog.Logger
}

// NewScoringService: 새로운 ScoringService 인스턴스를 생성한다.
func NewScoringService(repo *repository.Repository, cache *gredis.LeaderboardCache, logger *slog.Logger) *ScoringService {
	return &ScoringService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Record: 이벤트를 점수로 반영한다. 사용자 미존재는 UserNotFoundError(영구 실패)로
// 반환된다. 커밋 이후 리더보드 캐시 증가는 최선 노력이며 실패는 로깅만 한다.
func (s *ScoringService) Record(ctx context.Context, event model.GamificationEvent) (ScoreResult, error) {
	userID := event.UserID.String()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return ScoreResult{}, err
	}

	points := AppliedPoints(event.EventType, event.Difficulty)

	var refID *string
	if event.RefID != nil {
		v := event.RefID.String()
		refID = &v
	}

	applied, err := s.repo.ApplyScore(ctx, repository.ApplyScoreParams{
		UserID:     userID,
		EventType:  event.EventType,
		RefType:    event.RefType,
		RefID:      refID,
		Points:     points,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return ScoreResult{}, err
	}
	if !applied {
		s.logger.InfoContext(ctx, "score_event_duplicate",
			"user_id", userID,
			"event_type", string(event.EventType),
		)
		return ScoreResult{Applied: false, User: user}, nil
	}

	s.logger.InfoContext(ctx, "score_event_recorded",
		"user_id", userID,
		"event_type", string(event.EventType),
		"points", points,
	)

	if points != 0 {
		if cacheErr := s.cache.IncrementAll(ctx, userID, points, event.OccurredAt); cacheErr != nil {
			s.logger.WarnContext(ctx, "leaderboard_cache_incr_failed",
				"err", cacheErr,
				"user_id", userID,
			)
		}
	}
	return ScoreResult{Applied: true, Points: points, User: user}, nil
}
