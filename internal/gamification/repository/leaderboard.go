package repository

import (
	"context"
	"fmt"
	"time"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// LeaderboardEntry: 리더보드 한 행 (사용자와 점수)
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Points int64  `json:"points"`
}

// WeeklyLeaderboard: 특정 주의 점수 페이지를 점수 내림차순으로 조회한다.
// 동점은 user_id 오름차순으로 안정적으로 정렬된다.
func (r *Repository) WeeklyLeaderboard(ctx context.Context, weekStart time.Time, offset int, limit int) ([]LeaderboardEntry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}

	var rows []LeaderboardEntry
	err := r.db.WithContext(ctx).Model(&UserScore{}).
		Select("user_id, points").
		Where("week_start = ?", model.WeekStart(weekStart)).
		Order("points desc, user_id asc").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "weekly_leaderboard", Err: err}
	}
	return rows, nil
}

// MonthlyLeaderboard: 특정 달의 점수 이벤트 합계를 사용자별로 집계하여 조회한다.
func (r *Repository) MonthlyLeaderboard(ctx context.Context, month time.Time, limit int) ([]LeaderboardEntry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if limit <= 0 {
		return nil, nil
	}

	monthStart := model.MonthStart(month)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var rows []LeaderboardEntry
	err := r.db.WithContext(ctx).Model(&ScoreEvent{}).
		Select("user_id, SUM(points) AS points").
		Where("created_at >= ? AND created_at < ?", monthStart, monthEnd).
		Group("user_id").
		Order("points desc, user_id asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "monthly_leaderboard", Err: err}
	}
	return rows, nil
}

// AllTimeLeaderboard: 전체 기간의 점수 이벤트 합계를 사용자별로 집계하여 조회한다.
func (r *Repository) AllTimeLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if limit <= 0 {
		return nil, nil
	}

	var rows []LeaderboardEntry
	err := r.db.WithContext(ctx).Model(&ScoreEvent{}).
		Select("user_id, SUM(points) AS points").
		Group("user_id").
		Order("points desc, user_id asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "alltime_leaderboard", Err: err}
	}
	return rows, nil
}
