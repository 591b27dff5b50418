// Package repository 는 게임화 도메인의 GORM 기반 영속 계층이다.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository: DB 접근을 위한 GORM 기반 리포지토리
// 메서드들은 도메인별 파일로 분리됨:
//   - users.go: 사용자 조회/등록
//   - score.go: 점수 이벤트 기록 (멱등 처리)
//   - progress.go: 지표 진행도 및 스트릭
//   - achievement.go: 업적 정의/수여
//   - leaderboard.go: 리더보드 원본 조회
//   - catalog.go: 업적 카탈로그 시드
type Repository struct {
	db *gorm.DB
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB: 내부 gorm 핸들을 반환한다. (테스트 검증용)
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate: 자동으로 DB 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(
		&User{},
		&ScoreEvent{},
		&UserScore{},
		&AchievementProgress{},
		&Achievement{},
		&UserAchievement{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// CompositeUserScoreID: 주간 점수 행 ID (UserID:주 시작 날짜) 생성 함수
func CompositeUserScoreID(userID string, weekStart time.Time) string {
	return strings.TrimSpace(userID) + ":" + weekStart.UTC().Format(time.DateOnly)
}

// CompositeProgressID: 진행도 행 ID (UserID:Metric) 생성 함수
func CompositeProgressID(userID string, metric string) string {
	return strings.TrimSpace(userID) + ":" + strings.TrimSpace(metric)
}
