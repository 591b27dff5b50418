package mq

import (
	"context"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/codepanel-gamification-go/internal/common/config"
	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	commonmq "github.com/park285/codepanel-gamification-go/internal/common/mq"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// EventHandler: 파싱된 도메인 이벤트를 처리하는 함수
type EventHandler func(ctx context.Context, event model.GamificationEvent) error

// EventConsumer: 게임화 스트림을 Consumer Group으로 소비하여 이벤트 파이프라인에
// 전달한다. 봉투 파싱 실패는 영구 실패로 분류되어 재전달되지 않는다.
type EventConsumer struct {
	consumer  *commonmq.StreamConsumer
	reclaimer *commonmq.StreamReclaimer
	handler   func(ctx context.Context, msg commonmq.XMessage) error
	logger    *slog.Logger
}

// NewEventConsumer: 소비 루프와 pending 재청구 루프를 함께 준비한다.
func NewEventConsumer(client valkey.Client, logger *slog.Logger, cfg config.ValkeyMQConfig, handle EventHandler) *EventConsumer {
	stream := cfg.StreamKey
	if stream == "" {
		stream = config.DefaultStreamKey
	}
	group := cfg.ConsumerGroup
	if group == "" {
		group = config.DefaultConsumerGroup
	}
	deadLetter := cfg.DeadLetterStreamKey
	if deadLetter == "" {
		deadLetter = DeadLetterStream(stream)
	}

	handler := envelopeHandler(handle)

	consumer := commonmq.NewStreamConsumer(client, logger, commonmq.StreamConsumerConfig{
		Stream:              stream,
		Group:               group,
		Name:                cfg.ConsumerName,
		BatchSize:           cfg.BatchSize,
		Block:               cfg.BlockTimeout,
		Concurrency:         cfg.Concurrency,
		ResetGroupOnStartup: cfg.ResetConsumerGroupOnStartup,
	})
	reclaimer := commonmq.NewStreamReclaimer(client, logger, commonmq.StreamReclaimerConfig{
		Stream:           stream,
		Group:            group,
		Name:             cfg.ConsumerName,
		DeadLetterStream: deadLetter,
		DeadLetterMaxLen: cfg.StreamMaxLen,
		MinIdle:          cfg.ReclaimMinIdle,
		Interval:         cfg.ReclaimInterval,
		MaxDeliveries:    int64(cfg.MaxDeliveries),
		BatchSize:        cfg.BatchSize,
	}, handler)

	return &EventConsumer{
		consumer:  consumer,
		reclaimer: reclaimer,
		handler:   handler,
		logger:    logger,
	}
}

// Run: 메시지 소비 루프를 실행한다. (블로킹 방식)
func (c *EventConsumer) Run(ctx context.Context) error {
	return c.consumer.Run(ctx, c.handler)
}

// RunReclaimer: pending 메시지 재청구/DLQ 라우팅 루프를 실행한다. (블로킹 방식)
func (c *EventConsumer) RunReclaimer(ctx context.Context) error {
	return c.reclaimer.Run(ctx)
}

// envelopeHandler: 스트림 메시지를 도메인 이벤트로 파싱하여 핸들러에 넘긴다.
func envelopeHandler(handle EventHandler) func(ctx context.Context, msg commonmq.XMessage) error {
	return func(ctx context.Context, msg commonmq.XMessage) error {
		event, err := model.ParseGamificationEvent(msg.Values)
		if err != nil {
			return cerrors.MalformedEventError{Message: err.Error()}
		}
		return handle(ctx, event)
	}
}
