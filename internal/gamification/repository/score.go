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

// ApplyScoreParams: 점수 이벤트 반영 파라미터 구조체
type ApplyScoreParams struct {
	UserID     string
	EventType  model.ScoreEventType
	RefType    *string
	RefID      *string
	Points     int
	OccurredAt time.Time
}

// ApplyScore: 점수 이벤트를 멱등하게 반영한다.
// 하나의 트랜잭션 안에서 이벤트 원장 기록과 주간 점수 upsert를 수행하며,
// (user, eventType, refId) 유니크 인덱스 충돌은 중복 반영으로 간주하여
// (false, nil)을 반환한다. 동시 재전달에서도 한 번만 반영된다.
func (r *Repository) ApplyScore(ctx context.Context, p ApplyScoreParams) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}

	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return false, fmt.Errorf("user id is empty")
	}
	if p.OccurredAt.IsZero() {
		p.OccurredAt = time.Now().UTC()
	}

	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return false, cerrors.DatabaseError{Operation: "apply_score_begin", Err: err}
	}

	applied, err := applyScoreTx(tx, p)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if !applied {
		tx.Rollback()
		return false, nil
	}

	if err := tx.Commit().Error; err != nil {
		return false, cerrors.DatabaseError{Operation: "apply_score_commit", Err: err}
	}
	return true, nil
}

func applyScoreTx(tx *gorm.DB, p ApplyScoreParams) (bool, error) {
	event := ScoreEvent{
		UserID:    p.UserID,
		EventType: string(p.EventType),
		RefType:   p.RefType,
		RefID:     p.RefID,
		Points:    p.Points,
		CreatedAt: p.OccurredAt,
	}

	// refId가 있는 이벤트만 중복 반영 판정 대상이다. 유니크 인덱스 충돌을
	// DO NOTHING으로 받아 동시 재전달 경합에서도 한 쪽만 반영되게 한다.
	if p.RefID != nil && strings.TrimSpace(*p.RefID) != "" {
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_type"}, {Name: "ref_id"}},
			DoNothing: true,
		}).Create(&event)
		if insert.Error != nil {
			return false, cerrors.DatabaseError{Operation: "apply_score_event", Err: insert.Error}
		}
		if insert.RowsAffected == 0 {
			return false, nil
		}
	} else {
		if err := tx.Create(&event).Error; err != nil {
			return false, cerrors.DatabaseError{Operation: "apply_score_event", Err: err}
		}
	}

	// 0점 이벤트도 주간 집계 행을 만든다 (활동만 있고 점수가 없는 사용자도
	// 주간 보드에 나타나야 한다)
	if err := upsertWeeklyScore(tx, p.UserID, model.WeekStart(p.OccurredAt), p.Points, p.OccurredAt); err != nil {
		return false, err
	}
	return true, nil
}

func upsertWeeklyScore(tx *gorm.DB, userID string, weekStart time.Time, points int, now time.Time) error {
	entity := UserScore{
		ID:        CompositeUserScoreID(userID, weekStart),
		UserID:    userID,
		WeekStart: weekStart,
		Points:    int64(points),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"points":     gorm.Expr("\"user_scores\".\"points\" + ?", points),
			"updated_at": now,
			"version":    gorm.Expr("\"user_scores\".\"version\" + 1"),
		}),
	}).Create(&entity).Error; err != nil {
		return cerrors.DatabaseError{Operation: "upsert_weekly_score", Err: err}
	}
	return nil
}

// HasScoreEvent: 동일 (user, eventType, refId) 이벤트가 이미 기록되었는지 확인한다.
func (r *Repository) HasScoreEvent(ctx context.Context, userID string, eventType model.ScoreEventType, refID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&ScoreEvent{}).
		Where("user_id = ? AND event_type = ? AND ref_id = ?", strings.TrimSpace(userID), string(eventType), strings.TrimSpace(refID)).
		Count(&count).Error
	if err != nil {
		return false, cerrors.DatabaseError{Operation: "has_score_event", Err: err}
	}
	return count > 0, nil
}

// WeeklyPoints: 특정 주의 사용자 점수를 조회한다. 행이 없으면 0을 반환한다.
func (r *Repository) WeeklyPoints(ctx context.Context, userID string, weekStart time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	var score UserScore
	err := r.db.WithContext(ctx).
		Where("id = ?", CompositeUserScoreID(userID, model.WeekStart(weekStart))).
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, cerrors.DatabaseError{Operation: "weekly_points", Err: err}
	}
	return score.Points, nil
}
