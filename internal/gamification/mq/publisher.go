package mq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/codepanel-gamification-go/internal/common/config"
	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	commonmq "github.com/park285/codepanel-gamification-go/internal/common/mq"
	"github.com/park285/codepanel-gamification-go/internal/common/telemetry"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// EventPublisher: 도메인 이벤트를 게임화 스트림으로 발행한다.
// 발행 실패는 에러로 반환되지만 호출 측 도메인 로직은 이를 로깅만 하고 계속 진행한다.
type EventPublisher struct {
	pub    *commonmq.StreamPublisher
	stream string
	logger *slog.Logger
}

// NewEventPublisher: 새로운 EventPublisher 인스턴스를 생성한다.
func NewEventPublisher(client valkey.Client, logger *slog.Logger, cfg config.ValkeyMQConfig) *EventPublisher {
	stream := cfg.StreamKey
	if stream == "" {
		stream = config.DefaultStreamKey
	}
	return &EventPublisher{
		pub: commonmq.NewStreamPublisher(client, logger, commonmq.StreamPublisherConfig{
			Stream: stream,
			MaxLen: cfg.StreamMaxLen,
		}),
		stream: stream,
		logger: logger,
	}
}

// Publish: 이벤트 봉투를 라우팅 키와 추적 컨텍스트를 실어 스트림에 발행한다.
func (p *EventPublisher) Publish(ctx context.Context, event model.GamificationEvent) (string, error) {
	routingKey, ok := RoutingKeyFor(event.EventType)
	if !ok {
		return "", cerrors.PublishError{
			Stream: p.stream,
			Err:    fmt.Errorf("no routing key for event type %q", event.EventType),
		}
	}

	values := event.ToStreamValues()
	values["routingKey"] = routingKey

	// 소비 측 span이 발행 측 trace에 이어지도록 컨텍스트를 메시지 필드에 주입한다
	carrier := telemetry.MapCarrier{}
	telemetry.InjectContext(ctx, carrier)
	for k, v := range carrier {
		values[k] = v
	}

	id, err := p.pub.Publish(ctx, values)
	if err != nil {
		return "", cerrors.PublishError{Stream: p.stream, Err: err}
	}

	p.logger.DebugContext(ctx, "gamification_event_published",
		"stream", p.stream,
		"routing_key", routingKey,
		"event_type", string(event.EventType),
		"user_id", event.UserID.String(),
		"id", id,
	)
	return id, nil
}
