package service

import (
	"context"
	"log/slog"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
)

// ProgressService: 이벤트를 지표 진행도로 환산하고 갱신된 값마다 업적 평가를 돌린다.
type ProgressService struct {
	repo      *repository.Repository
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewProgressService: 새로운 ProgressService 인스턴스를 생성한다.
func NewProgressService(repo *repository.Repository, evaluator *Evaluator, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		repo:      repo,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Apply: 이벤트 타입 라우팅에 따라 누적 지표와 스트릭을 전진시킨다.
// appliedPoints는 점수 반영 단계에서 실제로 적용된 점수이며, 양수일 때만
// TOTAL_POINTS 지표를 같은 폭으로 전진시킨다.
// 지표별 실패는 격리된다: 한 지표의 갱신 실패가 나머지 지표 처리를 막지 않는다.
func (s *ProgressService) Apply(ctx context.Context, user *repository.User, event model.GamificationEvent, appliedPoints int) {
	route := MetricRouteFor(event.EventType)

	if route.Counter != nil {
		metric := *route.Counter
		value, err := s.repo.IncrementProgress(ctx, user.ID, metric, 1)
		if err != nil {
			s.logger.WarnContext(ctx, "progress_increment_failed",
				"err", err,
				"user_id", user.ID,
				"metric", string(metric),
			)
		} else {
			s.evaluator.Evaluate(ctx, user, metric, value, event.OccurredAt)
		}
	}

	for _, metric := range route.Streaks {
		result, err := s.repo.AdvanceStreak(ctx, user.ID, metric, event.OccurredAt)
		if err != nil {
			s.logger.WarnContext(ctx, "streak_advance_failed",
				"err", err,
				"user_id", user.ID,
				"metric", string(metric),
			)
			continue
		}
		// 같은 날 중복 행위는 스트릭을 바꾸지 않으므로 평가도 생략한다
		if result.Changed {
			s.evaluator.Evaluate(ctx, user, metric, result.Value, event.OccurredAt)
		}
	}

	if appliedPoints > 0 {
		value, err := s.repo.IncrementProgress(ctx, user.ID, model.MetricTotalPoints, int64(appliedPoints))
		if err != nil {
			s.logger.WarnContext(ctx, "progress_increment_failed",
				"err", err,
				"user_id", user.ID,
				"metric", string(model.MetricTotalPoints),
			)
		} else {
			s.evaluator.Evaluate(ctx, user, model.MetricTotalPoints, value, event.OccurredAt)
		}
	}
}

// ResetStreak: 스트릭을 0으로 되돌린다. (관리/배치 용도)
func (s *ProgressService) ResetStreak(ctx context.Context, userID string, metric model.MetricType) error {
	return s.repo.ResetStreak(ctx, userID, metric)
}

// UserProgress: 사용자의 전체 진행도 지표를 조회한다.
func (s *ProgressService) UserProgress(ctx context.Context, userID string) ([]repository.AchievementProgress, error) {
	return s.repo.ListProgressByUser(ctx, userID)
}
