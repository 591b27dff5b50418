package httpapi

import (
	"time"

	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
	gsvc "github.com/park285/codepanel-gamification-go/internal/gamification/service"
)

// PublishEventRequest: 내부 이벤트 발행 요청 바디
type PublishEventRequest struct {
	EventType  string `json:"eventType"`
	UserID     string `json:"userId"`
	Difficulty string `json:"difficulty,omitempty"`
	RefType    string `json:"refType,omitempty"`
	RefID      string `json:"refId,omitempty"`
	OccurredAt string `json:"occurredAt,omitempty"`
}

// PublishEventResponse: 발행된 스트림 메시지 ID
type PublishEventResponse struct {
	MessageID string `json:"messageId"`
}

// AchievementResponse: 업적 카탈로그 조회 응답 행
type AchievementResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Category     string `json:"category"`
	Metric       string `json:"metric"`
	TargetValue  int64  `json:"targetValue"`
	PointsReward int    `json:"pointsReward"`
}

func toAchievementResponses(defs []repository.Achievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, AchievementResponse{
			ID:           def.ID,
			Name:         def.Name,
			Description:  def.Description,
			Icon:         def.Icon,
			Category:     def.Category,
			Metric:       def.Metric,
			TargetValue:  def.TargetValue,
			PointsReward: def.PointsReward,
		})
	}
	return out
}

// ProgressResponse: 사용자 진행도 조회 응답 행
type ProgressResponse struct {
	Metric          string     `json:"metric"`
	Value           int64      `json:"value"`
	FirstActionDate *time.Time `json:"firstActionDate,omitempty"`
	LastActionDate  *time.Time `json:"lastActionDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toProgressResponses(rows []repository.AchievementProgress) []ProgressResponse {
	out := make([]ProgressResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProgressResponse{
			Metric:          row.Metric,
			Value:           row.Value,
			FirstActionDate: row.FirstActionDate,
			LastActionDate:  row.LastActionDate,
			UpdatedAt:       row.UpdatedAt,
		})
	}
	return out
}

// WeeklyLeaderboardResponse: 주간 리더보드 페이지 응답
type WeeklyLeaderboardResponse struct {
	WeekStart string             `json:"weekStart"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
	Entries   []gsvc.RankedEntry `json:"entries"`
}

// MonthlyLeaderboardResponse: 월간 리더보드 응답
type MonthlyLeaderboardResponse struct {
	Month   string             `json:"month"`
	Entries []gsvc.RankedEntry `json:"entries"`
}

// AllTimeLeaderboardResponse: 전체 기간 리더보드 응답
type AllTimeLeaderboardResponse struct {
	Entries []gsvc.RankedEntry `json:"entries"`
}
