package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// ListAchievements: 전체 업적 정의를 조회한다.
func (r *Repository) ListAchievements(ctx context.Context) ([]Achievement, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var defs []Achievement
	err := r.db.WithContext(ctx).Order("metric asc, target_value asc").Find(&defs).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_achievements", Err: err}
	}
	return defs, nil
}

// ListEligibleAchievements: 지표가 일치하고 목표치가 현재 값 이하인 업적 정의를 조회한다.
func (r *Repository) ListEligibleAchievements(ctx context.Context, metric model.MetricType, value int64) ([]Achievement, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var defs []Achievement
	err := r.db.WithContext(ctx).
		Where("metric = ? AND target_value <= ?", string(metric), value).
		Order("target_value asc").
		Find(&defs).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_eligible_achievements", Err: err}
	}
	return defs, nil
}

// GrantResult: 업적 수여 결과
type GrantResult struct {
	Granted   bool
	AwardedAt time.Time
}

// GrantAchievement: 업적을 수여한다. 하나의 트랜잭션 안에서
// (user, achievement) 유니크 제약으로 중복 수여를 차단하고, 보상 점수를 주간 집계에
// 반영하며, ACHIEVEMENT_AWARDED 감사 이벤트를 원장에 남긴다.
// awardedAt은 지표를 전진시킨 이벤트의 발생 시각이며 보상 점수의 주간 귀속 기준이다.
// 이미 수여된 업적이면 (Granted=false, nil)을 반환한다.
func (r *Repository) GrantAchievement(ctx context.Context, userID string, def Achievement, awardedAt time.Time) (GrantResult, error) {
	if r == nil || r.db == nil {
		return GrantResult{}, fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return GrantResult{}, fmt.Errorf("user id is empty")
	}
	if awardedAt.IsZero() {
		awardedAt = time.Now().UTC()
	}

	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return GrantResult{}, cerrors.DatabaseError{Operation: "grant_achievement_begin", Err: err}
	}

	grant := UserAchievement{
		UserID:        userID,
		AchievementID: def.ID,
		AwardedAt:     awardedAt,
		CreatedAt:     awardedAt,
	}
	insert := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&grant)
	if insert.Error != nil {
		tx.Rollback()
		return GrantResult{}, cerrors.DatabaseError{Operation: "grant_achievement_insert", Err: insert.Error}
	}
	if insert.RowsAffected == 0 {
		// 이미 수여됨 (동시 평가 경합 포함)
		tx.Rollback()
		return GrantResult{Granted: false}, nil
	}

	if def.PointsReward != 0 {
		if err := upsertWeeklyScore(tx, userID, model.WeekStart(awardedAt), def.PointsReward, awardedAt); err != nil {
			tx.Rollback()
			return GrantResult{}, err
		}
	}

	// 감사 이벤트: 보상 점수를 원장에 남겨 주간/월간/전체 집계가 일치하게 한다
	refType := string(model.EventAchievementAwarded)
	audit := ScoreEvent{
		UserID:    userID,
		EventType: string(model.EventAchievementAwarded),
		RefType:   &refType,
		RefID:     &def.ID,
		Points:    def.PointsReward,
		CreatedAt: awardedAt,
	}
	if err := tx.Create(&audit).Error; err != nil {
		tx.Rollback()
		return GrantResult{}, cerrors.DatabaseError{Operation: "grant_achievement_audit", Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return GrantResult{}, cerrors.DatabaseError{Operation: "grant_achievement_commit", Err: err}
	}
	return GrantResult{Granted: true, AwardedAt: awardedAt}, nil
}

// UserAchievementView: 사용자 업적 조회 응답용 행 (정의 + 수여 시각)
type UserAchievementView struct {
	AchievementID string    `json:"achievementId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Category      string    `json:"category"`
	Metric        string    `json:"metric"`
	TargetValue   int64     `json:"targetValue"`
	PointsReward  int       `json:"pointsReward"`
	AwardedAt     time.Time `json:"awardedAt"`
}

// ListUserAchievements: 사용자가 획득한 업적 목록을 정의와 조인하여 조회한다.
func (r *Repository) ListUserAchievements(ctx context.Context, userID string) ([]UserAchievementView, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var rows []UserAchievementView
	err := r.db.WithContext(ctx).Model(&UserAchievement{}).
		Select("user_achievements.achievement_id, achievements.name, achievements.description, achievements.icon, achievements.category, achievements.metric, achievements.target_value, achievements.points_reward, user_achievements.awarded_at").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", strings.TrimSpace(userID)).
		Order("user_achievements.awarded_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_user_achievements", Err: err}
	}
	return rows, nil
}

// HasUserAchievement: 사용자가 특정 업적을 이미 획득했는지 확인한다.
func (r *Repository) HasUserAchievement(ctx context.Context, userID string, achievementID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", strings.TrimSpace(userID), strings.TrimSpace(achievementID)).
		Count(&count).Error
	if err != nil {
		return false, cerrors.DatabaseError{Operation: "has_user_achievement", Err: err}
	}
	return count > 0, nil
}

// CountAchievements: 업적 정의 수를 반환한다. (시드 여부 판정용)
func (r *Repository) CountAchievements(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Achievement{}).Count(&count).Error; err != nil {
		return 0, cerrors.DatabaseError{Operation: "count_achievements", Err: err}
	}
	return count, nil
}
