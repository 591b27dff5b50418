package mq

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	commonmq "github.com/park285/codepanel-gamification-go/internal/common/mq"
	"github.com/park285/codepanel-gamification-go/internal/common/telemetry"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// NotificationPublisher: 알림 페이로드를 라우팅 키 접두어에 따라
// 해당 알림 스트림으로 발행한다. 모든 발행은 최선 노력(best-effort)이며
// 실패는 에러로 반환되어 호출자가 로깅한다.
type NotificationPublisher struct {
	publishers map[string]*commonmq.StreamPublisher
	logger     *slog.Logger
}

// NewNotificationPublisher: 네 개의 알림 스트림에 대한 발행자를 준비한다.
func NewNotificationPublisher(client valkey.Client, logger *slog.Logger, maxLen int64) *NotificationPublisher {
	streams := []string{
		NotificationCommentsStream,
		NotificationAssignmentsStream,
		NotificationAchievementsStream,
		NotificationEmailStream,
	}
	publishers := make(map[string]*commonmq.StreamPublisher, len(streams))
	for _, stream := range streams {
		publishers[stream] = commonmq.NewStreamPublisher(client, logger, commonmq.StreamPublisherConfig{
			Stream: stream,
			MaxLen: maxLen,
		})
	}
	return &NotificationPublisher{
		publishers: publishers,
		logger:     logger,
	}
}

// PublishAchievementAwarded: 업적 획득 알림을 발행한다.
func (n *NotificationPublisher) PublishAchievementAwarded(ctx context.Context, event model.AchievementAwardedEvent) error {
	return n.publish(ctx, RoutingKeyAchievementAwarded, event)
}

// PublishCommentCreated: 댓글 생성 알림을 발행한다.
func (n *NotificationPublisher) PublishCommentCreated(ctx context.Context, payload any) error {
	return n.publish(ctx, RoutingKeyCommentCreated, payload)
}

// PublishAssignmentGraded: 과제 채점 완료 알림을 발행한다.
func (n *NotificationPublisher) PublishAssignmentGraded(ctx context.Context, payload any) error {
	return n.publish(ctx, RoutingKeyAssignmentGraded, payload)
}

// PublishAssignmentSubmitted: 과제 제출 알림을 발행한다.
func (n *NotificationPublisher) PublishAssignmentSubmitted(ctx context.Context, payload any) error {
	return n.publish(ctx, RoutingKeyAssignmentSubmitted, payload)
}

// PublishEmail: 이메일 발송 요청을 발행한다.
func (n *NotificationPublisher) PublishEmail(ctx context.Context, payload any) error {
	return n.publish(ctx, RoutingKeyEmailSend, payload)
}

func (n *NotificationPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	if n == nil {
		return nil
	}

	stream, ok := NotificationStreamFor(routingKey)
	if !ok {
		return cerrors.PublishError{Err: fmt.Errorf("no notification stream for routing key %q", routingKey)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return cerrors.PublishError{Stream: stream, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	values := map[string]any{
		"routingKey": routingKey,
		"payload":    string(body),
	}
	carrier := telemetry.MapCarrier{}
	telemetry.InjectContext(ctx, carrier)
	for k, v := range carrier {
		values[k] = v
	}

	id, err := n.publishers[stream].Publish(ctx, values)
	if err != nil {
		return cerrors.PublishError{Stream: stream, Err: err}
	}

	n.logger.DebugContext(ctx, "notification_published",
		"stream", stream,
		"routing_key", routingKey,
		"id", id,
	)
	return nil
}
