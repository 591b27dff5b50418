package repository

import "time"

// User: 이벤트 주체가 되는 사용자
type User struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Username  string    `gorm:"column:username;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (User) TableName() string { return "users" }

// ScoreEvent: 점수 반영 이력 (멱등성 판정과 월간/전체 집계의 원장)
// (user_id, event_type, ref_id) 유니크 인덱스가 동시 재전달에서도 중복 반영을
// 차단하는 최종 가드다. ref_id가 NULL인 행은 SQL 의미상 서로 충돌하지 않는다.
type ScoreEvent struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_score_events_idempotency,priority:1;index:idx_score_events_user_time,priority:1"`
	EventType string    `gorm:"column:event_type;not null;uniqueIndex:idx_score_events_idempotency,priority:2"`
	RefType   *string   `gorm:"column:ref_type"`
	RefID     *string   `gorm:"column:ref_id;uniqueIndex:idx_score_events_idempotency,priority:3"`
	Points    int       `gorm:"column:points;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index;index:idx_score_events_user_time,priority:2"`
}

func (ScoreEvent) TableName() string { return "score_events" }

// UserScore: 주 단위(월요일 기준) 점수 집계 행
type UserScore struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_scores_user_week,priority:1"`
	WeekStart time.Time `gorm:"column:week_start;not null;uniqueIndex:idx_user_scores_user_week,priority:2;index"`
	Points    int64     `gorm:"column:points;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
	Version   int64     `gorm:"column:version;not null;default:0"`
}

func (UserScore) TableName() string { return "user_scores" }

// AchievementProgress: 사용자별 지표 진행도
// 스트릭 지표는 first/last action date 두 날짜 컬럼으로 연속 여부를 판정한다.
type AchievementProgress struct {
	ID              string     `gorm:"column:id;primaryKey"`
	UserID          string     `gorm:"column:user_id;not null;uniqueIndex:idx_achievement_progress_user_metric,priority:1"`
	Metric          string     `gorm:"column:metric;not null;uniqueIndex:idx_achievement_progress_user_metric,priority:2"`
	Value           int64      `gorm:"column:value;not null;default:0"`
	FirstActionDate *time.Time `gorm:"column:first_action_date"`
	LastActionDate  *time.Time `gorm:"column:last_action_date"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
	Version         int64      `gorm:"column:version;not null;default:0"`
}

func (AchievementProgress) TableName() string { return "achievement_progress" }

// Achievement: 업적 정의 (카탈로그)
type Achievement struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Description  string    `gorm:"column:description;not null;default:''"`
	Icon         string    `gorm:"column:icon;not null;default:''"`
	Category     string    `gorm:"column:category;not null;index"`
	Metric       string    `gorm:"column:metric;not null;index"`
	TargetValue  int64     `gorm:"column:target_value;not null"`
	PointsReward int       `gorm:"column:points_reward;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Achievement) TableName() string { return "achievements" }

// UserAchievement: 사용자 업적 획득 기록
// (user_id, achievement_id) 유니크 제약이 중복 수여를 차단하는 최종 가드다.
type UserAchievement struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_achievements_user_achievement,priority:1"`
	AchievementID string    `gorm:"column:achievement_id;not null;uniqueIndex:idx_user_achievements_user_achievement,priority:2;index"`
	AwardedAt     time.Time `gorm:"column:awarded_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
