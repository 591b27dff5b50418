// Package mq 는 도메인 이벤트/알림의 Valkey 스트림 토폴로지와 발행·소비 어댑터를 제공한다.
package mq

import (
	"strings"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// 알림 스트림 키 목록. 각 스트림은 <stream>.dlq 데드레터 스트림을 가진다.
const (
	NotificationCommentsStream     = "notifications.comments"
	NotificationAssignmentsStream  = "notifications.assignments"
	NotificationAchievementsStream = "notifications.achievements"
	NotificationEmailStream        = "notifications.email"
)

// 도메인 이벤트 라우팅 키 목록.
const (
	RoutingKeySubmissionAccepted      = "submission.accepted"
	RoutingKeyReviewApproved          = "review.approved"
	RoutingKeyProblemAccepted         = "problem.accepted"
	RoutingKeyCommentCreated          = "comment.created"
	RoutingKeyCommentLiked            = "comment.liked"
	RoutingKeyCommentDisliked         = "comment.disliked"
	RoutingKeyProblemAnswerAccepted   = "problem.answer.accepted"
	RoutingKeyProblemAnswerUnaccepted = "problem.answer.unaccepted"
	RoutingKeyProblemPosted           = "problem.posted"
	RoutingKeyAchievementAwarded      = "achievement.awarded"
)

// 알림 라우팅 키 목록.
const (
	RoutingKeyAssignmentCreated   = "assignment.created"
	RoutingKeyAssignmentDue       = "assignment.due"
	RoutingKeyAssignmentGraded    = "assignment.graded"
	RoutingKeyAssignmentSubmitted = "assignment.submitted"
	RoutingKeyEmailSend           = "email.send"
)

// routingKeys: 도메인 이벤트 타입별 라우팅 키 테이블
var routingKeys = map[model.ScoreEventType]string{
	model.EventSubmissionAccepted:      RoutingKeySubmissionAccepted,
	model.EventReviewApproved:          RoutingKeyReviewApproved,
	model.EventProblemAccepted:         RoutingKeyProblemAccepted,
	model.EventCommentCreated:          RoutingKeyCommentCreated,
	model.EventCommentLiked:            RoutingKeyCommentLiked,
	model.EventCommentDisliked:         RoutingKeyCommentDisliked,
	model.EventProblemAnswerAccepted:   RoutingKeyProblemAnswerAccepted,
	model.EventProblemAnswerUnaccepted: RoutingKeyProblemAnswerUnaccepted,
	model.EventProblemPosted:           RoutingKeyProblemPosted,
	model.EventAchievementAwarded:      RoutingKeyAchievementAwarded,
}

// RoutingKeyFor: 도메인 이벤트 타입의 라우팅 키를 반환한다.
func RoutingKeyFor(t model.ScoreEventType) (string, bool) {
	key, ok := routingKeys[t]
	return key, ok
}

// NotificationStreamFor: 라우팅 키의 접두어로 알림 스트림을 결정한다.
// 토픽 바인딩 comment.*/assignment.*/achievement.*/email.* 에 대응한다.
func NotificationStreamFor(routingKey string) (string, bool) {
	prefix, _, found := strings.Cut(strings.TrimSpace(routingKey), ".")
	if !found {
		return "", false
	}
	switch prefix {
	case "comment":
		return NotificationCommentsStream, true
	case "assignment":
		return NotificationAssignmentsStream, true
	case "achievement":
		return NotificationAchievementsStream, true
	case "email":
		return NotificationEmailStream, true
	default:
		return "", false
	}
}

// DeadLetterStream: 스트림의 데드레터 스트림 키를 반환한다.
func DeadLetterStream(stream string) string {
	return stream + ".dlq"
}
