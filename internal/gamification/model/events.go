// Package model 은 게임화 파이프라인의 도메인 이벤트와 열거 타입을 정의한다.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScoreEventType: 점수 반영 대상이 되는 도메인 이벤트 종류
type ScoreEventType string

// SUBMISSION_ACCEPTED 등 도메인 이벤트 타입 상수 목록이다.
const (
	EventSubmissionAccepted      ScoreEventType = "SUBMISSION_ACCEPTED"
	EventReviewApproved          ScoreEventType = "REVIEW_APPROVED"
	EventProblemAccepted         ScoreEventType = "PROBLEM_ACCEPTED"
	EventCommentCreated          ScoreEventType = "COMMENT_CREATED"
	EventCommentLiked            ScoreEventType = "COMMENT_LIKED"
	EventCommentDisliked         ScoreEventType = "COMMENT_DISLIKED"
	EventProblemAnswerAccepted   ScoreEventType = "PROBLEM_ANSWER_ACCEPTED"
	EventProblemAnswerUnaccepted ScoreEventType = "PROBLEM_ANSWER_UNACCEPTED"
	EventProblemPosted           ScoreEventType = "PROBLEM_POSTED"
	EventAchievementAwarded      ScoreEventType = "ACHIEVEMENT_AWARDED"
)

// scoreEventTypes: 유효한 이벤트 타입 집합 (파싱 검증용)
var scoreEventTypes = map[ScoreEventType]struct{}{
	EventSubmissionAccepted:      {},
	EventReviewApproved:          {},
	EventProblemAccepted:         {},
	EventCommentCreated:          {},
	EventCommentLiked:            {},
	EventCommentDisliked:         {},
	EventProblemAnswerAccepted:   {},
	EventProblemAnswerUnaccepted: {},
	EventProblemPosted:           {},
	EventAchievementAwarded:      {},
}

// ParseScoreEventType: 문자열을 ScoreEventType으로 변환한다.
func ParseScoreEventType(s string) (ScoreEventType, error) {
	t := ScoreEventType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := scoreEventTypes[t]; !ok {
		return "", fmt.Errorf("unknown score event type: %q", s)
	}
	return t, nil
}

// DifficultyLevel: 문제 난이도 (점수 배수 결정)
type DifficultyLevel string

// BEGINNER 등 난이도 상수 목록이다.
const (
	DifficultyBeginner DifficultyLevel = "BEGINNER"
	DifficultyEasy     DifficultyLevel = "EASY"
	DifficultyMedium   DifficultyLevel = "MEDIUM"
	DifficultyHard     DifficultyLevel = "HARD"
	DifficultyExpert   DifficultyLevel = "EXPERT"
)

// Multiplier: 난이도별 점수 배수를 반환한다. nil이면 1.
func (d *DifficultyLevel) Multiplier() int {
	if d == nil {
		return 1
	}
	switch *d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyExpert:
		return 5
	default:
		// BEGINNER, EASY 및 알 수 없는 값은 배수 없음
		return 1
	}
}

// ParseDifficultyLevel: 문자열을 DifficultyLevel로 변환한다. 빈 문자열이면 nil.
func ParseDifficultyLevel(s string) (*DifficultyLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	switch DifficultyLevel(s) {
	case DifficultyBeginner, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		d := DifficultyLevel(s)
		return &d, nil
	default:
		return nil, fmt.Errorf("unknown difficulty level: %q", s)
	}
}

// MetricType: 업적 진행도 지표 종류
type MetricType string

// PROBLEMS_POSTED 등 지표 상수 목록이다.
const (
	MetricProblemsPosted       MetricType = "PROBLEMS_POSTED"
	MetricCommentsPosted       MetricType = "COMMENTS_POSTED"
	MetricAcceptedAnswers      MetricType = "ACCEPTED_ANSWERS"
	MetricAssignmentsCompleted MetricType = "ASSIGNMENTS_COMPLETED"
	MetricTotalPoints          MetricType = "TOTAL_POINTS"
	MetricTotalLikesReceived   MetricType = "TOTAL_LIKES_RECEIVED"
	MetricProblemPostingStreak MetricType = "PROBLEM_POSTING_STREAK"
	MetricAssignmentStreak     MetricType = "ASSIGNMENT_STREAK"
	MetricActivityStreak       MetricType = "ACTIVITY_STREAK"
)

// metricTypes: 유효한 지표 집합 (파싱 검증용)
var metricTypes = map[MetricType]struct{}{
	MetricProblemsPosted:       {},
	MetricCommentsPosted:       {},
	MetricAcceptedAnswers:      {},
	MetricAssignmentsCompleted: {},
	MetricTotalPoints:          {},
	MetricTotalLikesReceived:   {},
	MetricProblemPostingStreak: {},
	MetricAssignmentStreak:     {},
	MetricActivityStreak:       {},
}

// ParseMetricType: 문자열을 MetricType으로 변환한다.
func ParseMetricType(s string) (MetricType, error) {
	m := MetricType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := metricTypes[m]; !ok {
		return "", fmt.Errorf("unknown metric type: %q", s)
	}
	return m, nil
}

// IsStreak: 연속 기록(스트릭) 지표인지 여부를 반환한다.
func (m MetricType) IsStreak() bool {
	switch m {
	case MetricProblemPostingStreak, MetricAssignmentStreak, MetricActivityStreak:
		return true
	default:
		return false
	}
}

// AchievementCategory: 업적 분류
type AchievementCategory string

// MILESTONE 등 업적 분류 상수 목록이다.
const (
	CategoryMilestone AchievementCategory = "MILESTONE"
	CategoryStreak    AchievementCategory = "STREAK"
)

// GamificationEvent: 도메인 이벤트 봉투. 점수 파이프라인의 입력 단위이다.
type GamificationEvent struct {
	EventType  ScoreEventType   `json:"eventType"`
	UserID     uuid.UUID        `json:"userId"`
	Difficulty *DifficultyLevel `json:"difficulty,omitempty"`
	RefType    *string          `json:"refType,omitempty"`
	RefID      *uuid.UUID       `json:"refId,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// AchievementAwardedEvent: 업적 획득 알림 페이로드
type AchievementAwardedEvent struct {
	AchievementID          string    `json:"achievementId"`
	AchievementName        string    `json:"achievementName"`
	AchievementDescription string    `json:"achievementDescription"`
	UserID                 uuid.UUID `json:"userId"`
	UserName               string    `json:"userName"`
	PointsReward           int       `json:"pointsReward"`
	AwardedAt              time.Time `json:"awardedAt"`
}

// WeekStart: 주어진 시각이 속한 주의 월요일 자정(UTC 기준 날짜)을 반환한다.
// 주간 점수 집계 키로 사용된다.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // 일요일은 직전 월요일 기준
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}

// MonthKey: 월간 리더보드 키에 쓰이는 yyyy-MM 형식 문자열을 반환한다.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthStart: 주어진 시각이 속한 달의 1일 자정(UTC)을 반환한다.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOnly: 시각에서 UTC 날짜 성분만 남긴다. 스트릭 날짜 비교에 사용된다.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
