package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// StreakResult: 스트릭 전진 결과
type StreakResult struct {
	Value   int64
	Changed bool
}

// lockForUpdate: 동일 진행도 행에 대한 동시 갱신을 직렬화한다.
// SQLite(테스트 환경)는 행 잠금 구문을 지원하지 않으므로 트랜잭션 격리에 의존한다.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// SetProgress: 진행도 지표를 절대값으로 설정한다. 반환값은 설정된 값이다.
func (r *Repository) SetProgress(ctx context.Context, userID string, metric model.MetricType, value int64) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	now := time.Now().UTC()
	entity := AchievementProgress{
		ID:        CompositeProgressID(userID, string(metric)),
		UserID:    userID,
		Metric:    string(metric),
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      value,
			"updated_at": now,
			"version":    gorm.Expr("\"achievement_progress\".\"version\" + 1"),
		}),
	}).Create(&entity).Error; err != nil {
		return 0, cerrors.DatabaseError{Operation: "set_progress", Err: err}
	}
	return value, nil
}

// IncrementProgress: 진행도 지표를 delta만큼 증가시키고 갱신된 값을 반환한다.
func (r *Repository) IncrementProgress(ctx context.Context, userID string, metric model.MetricType, delta int64) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	id := CompositeProgressID(userID, string(metric))
	now := time.Now().UTC()

	var newValue int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row AchievementProgress
		err := lockForUpdate(tx).Where("id = ?", id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = AchievementProgress{
				ID:        id,
				UserID:    userID,
				Metric:    string(metric),
				Value:     delta,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if createErr := tx.Create(&row).Error; createErr != nil {
				return cerrors.DatabaseError{Operation: "increment_progress_create", Err: createErr}
			}
			newValue = delta
			return nil
		case err != nil:
			return cerrors.DatabaseError{Operation: "increment_progress_get", Err: err}
		}

		newValue = row.Value + delta
		updates := map[string]any{
			"value":      newValue,
			"updated_at": now,
			"version":    gorm.Expr("\"achievement_progress\".\"version\" + 1"),
		}
		if updateErr := tx.Model(&AchievementProgress{}).Where("id = ?", id).Updates(updates).Error; updateErr != nil {
			return cerrors.DatabaseError{Operation: "increment_progress_update", Err: updateErr}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newValue, nil
}

// AdvanceStreak: 행위 날짜를 기준으로 스트릭을 전진시킨다.
//   - 첫 기록: 값 1, first/last action date 모두 행위 날짜
//   - 마지막 기록 다음 날: 값 +1
//   - 같은 날(또는 과거 날짜): 변경 없음
//   - 하루 이상 공백: 값 1로 리셋, first action date도 새 스트릭 시작일로 재설정
func (r *Repository) AdvanceStreak(ctx context.Context, userID string, metric model.MetricType, actionDate time.Time) (StreakResult, error) {
	if r == nil || r.db == nil {
		return StreakResult{}, fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	id := CompositeProgressID(userID, string(metric))
	day := model.DateOnly(actionDate)
	now := time.Now().UTC()

	var result StreakResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row AchievementProgress
		err := lockForUpdate(tx).Where("id = ?", id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = AchievementProgress{
				ID:              id,
				UserID:          userID,
				Metric:          string(metric),
				Value:           1,
				FirstActionDate: &day,
				LastActionDate:  &day,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if createErr := tx.Create(&row).Error; createErr != nil {
				return cerrors.DatabaseError{Operation: "advance_streak_create", Err: createErr}
			}
			result = StreakResult{Value: 1, Changed: true}
			return nil
		case err != nil:
			return cerrors.DatabaseError{Operation: "advance_streak_get", Err: err}
		}

		updates := map[string]any{
			"updated_at": now,
			"version":    gorm.Expr("\"achievement_progress\".\"version\" + 1"),
		}

		switch {
		case row.LastActionDate == nil:
			// 리셋 후 첫 행위: 새 스트릭 시작
			result = StreakResult{Value: 1, Changed: true}
			updates["value"] = int64(1)
			updates["first_action_date"] = day
			updates["last_action_date"] = day
		case !day.After(model.DateOnly(*row.LastActionDate)):
			// 같은 날 또는 과거 날짜: 스트릭 불변 (쓰기 없이 종료)
			result = StreakResult{Value: row.Value, Changed: false}
			return nil
		case day.Equal(model.DateOnly(*row.LastActionDate).AddDate(0, 0, 1)):
			// 연속된 다음 날: 전진
			result = StreakResult{Value: row.Value + 1, Changed: true}
			updates["value"] = row.Value + 1
			updates["last_action_date"] = day
		default:
			// 공백 발생: 새 스트릭으로 리셋 (시작일도 재설정)
			result = StreakResult{Value: 1, Changed: true}
			updates["value"] = int64(1)
			updates["first_action_date"] = day
			updates["last_action_date"] = day
		}

		if updateErr := tx.Model(&AchievementProgress{}).Where("id = ?", id).Updates(updates).Error; updateErr != nil {
			return cerrors.DatabaseError{Operation: "advance_streak_update", Err: updateErr}
		}
		return nil
	})
	if err != nil {
		return StreakResult{}, err
	}
	return result, nil
}

// ResetStreak: 스트릭 값을 0으로 만들고 날짜 정보를 비운다. 행이 없으면 아무 일도 하지 않는다.
func (r *Repository) ResetStreak(ctx context.Context, userID string, metric model.MetricType) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}

	id := CompositeProgressID(strings.TrimSpace(userID), string(metric))
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Model(&AchievementProgress{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"value":             int64(0),
			"first_action_date": nil,
			"last_action_date":  nil,
			"updated_at":        now,
			"version":           gorm.Expr("\"achievement_progress\".\"version\" + 1"),
		}).Error
	if err != nil {
		return cerrors.DatabaseError{Operation: "reset_streak", Err: err}
	}
	return nil
}

// GetProgress: 진행도 행을 조회한다. 없으면 nil을 반환한다.
func (r *Repository) GetProgress(ctx context.Context, userID string, metric model.MetricType) (*AchievementProgress, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var row AchievementProgress
	err := r.db.WithContext(ctx).
		Where("id = ?", CompositeProgressID(strings.TrimSpace(userID), string(metric))).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, cerrors.DatabaseError{Operation: "get_progress", Err: err}
	}
	return &row, nil
}

// ListProgressByUser: 사용자의 모든 진행도 지표를 조회한다.
func (r *Repository) ListProgressByUser(ctx context.Context, userID string) ([]AchievementProgress, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var rows []AchievementProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("metric asc").
		Find(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_progress_by_user", Err: err}
	}
	return rows, nil
}
