package mq

import (
	"testing"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

func TestRoutingKeyFor(t *testing.T) {
	cases := []struct {
		eventType model.ScoreEventType
		want      string
	}{
		{model.EventSubmissionAccepted, "submission.accepted"},
		{model.EventReviewApproved, "review.approved"},
		{model.EventProblemAccepted, "problem.accepted"},
		{model.EventCommentCreated, "comment.created"},
		{model.EventCommentLiked, "comment.liked"},
		{model.EventCommentDisliked, "comment.disliked"},
		{model.EventProblemAnswerAccepted, "problem.answer.accepted"},
		{model.EventProblemAnswerUnaccepted, "problem.answer.unaccepted"},
		{model.EventProblemPosted, "problem.posted"},
		{model.EventAchievementAwarded, "achievement.awarded"},
	}
	for _, tc := range cases {
		key, ok := RoutingKeyFor(tc.eventType)
		if !ok || key != tc.want {
			t.Errorf("RoutingKeyFor(%s) = (%q, %v), want %q", tc.eventType, key, ok, tc.want)
		}
	}

	if _, ok := RoutingKeyFor(model.ScoreEventType("BOGUS")); ok {
		t.Error("unknown event type must not resolve")
	}
}

func TestNotificationStreamFor(t *testing.T) {
	cases := []struct {
		routingKey string
		want       string
		ok         bool
	}{
		{"comment.created", NotificationCommentsStream, true},
		{"assignment.graded", NotificationAssignmentsStream, true},
		{"assignment.submitted", NotificationAssignmentsStream, true},
		{"achievement.awarded", NotificationAchievementsStream, true},
		{"email.send", NotificationEmailStream, true},
		{"submission.accepted", "", false},
		{"nodot", "", false},
	}
	for _, tc := range cases {
		stream, ok := NotificationStreamFor(tc.routingKey)
		if ok != tc.ok || stream != tc.want {
			t.Errorf("NotificationStreamFor(%q) = (%q, %v), want (%q, %v)", tc.routingKey, stream, ok, tc.want, tc.ok)
		}
	}
}

func TestDeadLetterStream(t *testing.T) {
	if got := DeadLetterStream(NotificationEmailStream); got != "notifications.email.dlq" {
		t.Errorf("DeadLetterStream = %q", got)
	}
}
