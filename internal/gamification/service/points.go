// Package service 는 점수 반영, 진행도 추적, 업적 평가, 리더보드 조회의
// 도메인 로직을 담당한다.
package service

import (
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// basePoints: 이벤트 타입별 기본 점수 테이블
var basePoints = map[model.ScoreEventType]int{
	model.EventSubmissionAccepted:      10,
	model.EventReviewApproved:          5,
	model.EventProblemAccepted:         0,
	model.EventCommentCreated:          1,
	model.EventCommentLiked:            2,
	model.EventCommentDisliked:         -2,
	model.EventProblemAnswerAccepted:   10,
	model.EventProblemAnswerUnaccepted: -10,
	model.EventProblemPosted:           0,
	model.EventAchievementAwarded:      0,
}

// BasePoints: 이벤트 타입의 기본 점수를 반환한다. 미등록 타입은 0점이다.
func BasePoints(t model.ScoreEventType) int {
	return basePoints[t]
}

// AppliedPoints: 기본 점수에 난이도 배수를 적용한 최종 점수를 계산한다.
func AppliedPoints(t model.ScoreEventType, difficulty *model.DifficultyLevel) int {
	return BasePoints(t) * difficulty.Multiplier()
}

// MetricRoute: 이벤트 하나가 전진시키는 지표 묶음
type MetricRoute struct {
	Counter *model.MetricType  // 단순 누적 지표 (없으면 nil)
	Streaks []model.MetricType // 날짜 기반 스트릭 지표
}

// MetricRouteFor: 이벤트 타입별 지표 라우팅을 반환한다.
// 감점성 이벤트(COMMENT_DISLIKED 등)와 업적 보상 이벤트는 지표를 전진시키지 않는다.
func MetricRouteFor(t model.ScoreEventType) MetricRoute {
	counter := func(m model.MetricType) *model.MetricType { return &m }

	switch t {
	case model.EventProblemPosted:
		return MetricRoute{
			Counter: counter(model.MetricProblemsPosted),
			Streaks: []model.MetricType{model.MetricProblemPostingStreak, model.MetricActivityStreak},
		}
	case model.EventCommentCreated:
		return MetricRoute{
			Counter: counter(model.MetricCommentsPosted),
			Streaks: []model.MetricType{model.MetricActivityStreak},
		}
	case model.EventCommentLiked:
		return MetricRoute{
			Counter: counter(model.MetricTotalLikesReceived),
			Streaks: []model.MetricType{model.MetricActivityStreak},
		}
	case model.EventProblemAnswerAccepted:
		return MetricRoute{
			Counter: counter(model.MetricAcceptedAnswers),
			Streaks: []model.MetricType{model.MetricActivityStreak},
		}
	case model.EventSubmissionAccepted, model.EventReviewApproved:
		return MetricRoute{
			Counter: counter(model.MetricAssignmentsCompleted),
			Streaks: []model.MetricType{model.MetricAssignmentStreak, model.MetricActivityStreak},
		}
	case model.EventCommentDisliked, model.EventProblemAnswerUnaccepted, model.EventAchievementAwarded:
		return MetricRoute{}
	default:
		// 그 밖의 이벤트는 활동 스트릭만 전진시킨다
		return MetricRoute{Streaks: []model.MetricType{model.MetricActivityStreak}}
	}
}
