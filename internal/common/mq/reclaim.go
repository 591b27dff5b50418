package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valkey-io/valkey-go"

	commonerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
)

// StreamReclaimerConfig: 미확인(pending) 메시지 재청구 및 DLQ 라우팅 설정
type StreamReclaimerConfig struct {
	Stream string
	Group  string
	Name   string

	DeadLetterStream string
	DeadLetterMaxLen int64

	MinIdle       time.Duration // 재청구 대상이 되는 최소 유휴 시간
	Interval      time.Duration // 재청구 주기
	MaxDeliveries int64         // 초과 시 DLQ 라우팅되는 전달 횟수 상한
	BatchSize     int64
}

// PendingEntry: XPENDING 확장 응답의 단일 항목
type PendingEntry struct {
	ID         string
	Consumer   string
	Idle       time.Duration
	Deliveries int64
}

// StreamReclaimer: Consumer Group에 pending으로 남은 메시지를 주기적으로 재청구하여
// 다시 처리하고, 전달 횟수가 상한을 넘은 메시지는 데드레터 스트림으로 옮긴다.
// XCLAIM이 전달 카운터를 증가시키므로 재전달 횟수는 자연히 바운드된다.
type StreamReclaimer struct {
	client  valkey.Client
	logger  *slog.Logger
	cfg     StreamReclaimerConfig
	handler func(ctx context.Context, msg XMessage) error
}

// NewStreamReclaimer: 새로운 StreamReclaimer 인스턴스를 생성합니다.
func NewStreamReclaimer(
	client valkey.Client,
	logger *slog.Logger,
	cfg StreamReclaimerConfig,
	handler func(ctx context.Context, msg XMessage) error,
) *StreamReclaimer {
	return &StreamReclaimer{
		client:  client,
		logger:  logger,
		cfg:     cfg,
		handler: handler,
	}
}

// Run: 재청구 루프를 실행합니다. (블로킹 방식)
func (r *StreamReclaimer) Run(ctx context.Context) error {
	cfg, err := r.normalizedConfig()
	if err != nil {
		return err
	}

	// 연결 에러 시 지수 백오프로 재시도 주기를 늘린다
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Interval
	bo.MaxInterval = 5 * cfg.Interval
	bo.MaxElapsedTime = 0 // 무한 재시도
	bo.Reset()

	wait := cfg.Interval
	for {
		if !sleepWithContext(ctx, wait) {
			return nil
		}

		if err := r.reclaimOnce(ctx, cfg); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			wait = bo.NextBackOff()
			r.logger.Warn("reclaim_cycle_failed",
				"err", err,
				"stream", cfg.Stream,
				"group", cfg.Group,
				"next_in", wait,
			)
			continue
		}

		bo.Reset()
		wait = cfg.Interval
	}
}

func (r *StreamReclaimer) reclaimOnce(ctx context.Context, cfg StreamReclaimerConfig) error {
	pending, err := r.listPending(ctx, cfg)
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.Deliveries >= cfg.MaxDeliveries {
			if dlqErr := r.routeDeadLetter(ctx, cfg, entry); dlqErr != nil {
				r.logger.Warn("dead_letter_route_failed",
					"err", dlqErr,
					"stream", cfg.Stream,
					"id", entry.ID,
					"deliveries", entry.Deliveries,
				)
			}
			continue
		}

		r.claimAndHandle(ctx, cfg, entry)
	}
	return nil
}

// listPending: XPENDING 확장 형태로 유휴 시간이 MinIdle을 넘은 항목을 조회한다.
func (r *StreamReclaimer) listPending(ctx context.Context, cfg StreamReclaimerConfig) ([]PendingEntry, error) {
	cmd := r.client.B().Arbitrary("XPENDING").
		Keys(cfg.Stream).
		Args(cfg.Group,
			"IDLE", strconv.FormatInt(cfg.MinIdle.Milliseconds(), 10),
			"-", "+",
			strconv.FormatInt(cfg.BatchSize, 10),
		).
		Build()

	rows, err := r.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("xpending failed stream=%s group=%s: %w", cfg.Stream, cfg.Group, err)
	}

	entries := make([]PendingEntry, 0, len(rows))
	for _, row := range rows {
		fields, err := row.ToArray()
		if err != nil || len(fields) < 4 {
			continue
		}
		id, err := fields[0].ToString()
		if err != nil {
			continue
		}
		consumer, _ := fields[1].ToString()
		idleMillis, _ := fields[2].AsInt64()
		deliveries, _ := fields[3].AsInt64()

		entries = append(entries, PendingEntry{
			ID:         id,
			Consumer:   consumer,
			Idle:       time.Duration(idleMillis) * time.Millisecond,
			Deliveries: deliveries,
		})
	}
	return entries, nil
}

// routeDeadLetter: 원본 메시지를 DLQ 스트림으로 복사한 뒤 원본을 ACK 처리한다.
// 원본이 이미 트리밍되어 없으면 ACK만 수행한다.
func (r *StreamReclaimer) routeDeadLetter(ctx context.Context, cfg StreamReclaimerConfig, entry PendingEntry) error {
	rangeCmd := r.client.B().Xrange().Key(cfg.Stream).Start(entry.ID).End(entry.ID).Build()
	found, err := r.client.Do(ctx, rangeCmd).AsXRange()
	if err != nil {
		return fmt.Errorf("xrange failed stream=%s id=%s: %w", cfg.Stream, entry.ID, err)
	}

	if len(found) > 0 {
		fieldValues := make([]string, 0, (len(found[0].FieldValues)+3)*2)
		for k, v := range found[0].FieldValues {
			fieldValues = append(fieldValues, k, v)
		}
		fieldValues = append(fieldValues,
			"dlq_source_stream", cfg.Stream,
			"dlq_source_id", entry.ID,
			"dlq_deliveries", strconv.FormatInt(entry.Deliveries, 10),
		)

		var args []string
		if cfg.DeadLetterMaxLen > 0 {
			args = append(args, "MAXLEN", "~", strconv.FormatInt(cfg.DeadLetterMaxLen, 10))
		}
		args = append(args, "*")
		args = append(args, fieldValues...)

		addCmd := r.client.B().Arbitrary("XADD").Keys(cfg.DeadLetterStream).Args(args...).Build()
		if err := r.client.Do(ctx, addCmd).Error(); err != nil {
			return fmt.Errorf("xadd dlq failed stream=%s: %w", cfg.DeadLetterStream, err)
		}
	}

	ackCmd := r.client.B().Xack().Key(cfg.Stream).Group(cfg.Group).Id(entry.ID).Build()
	if err := r.client.Do(ctx, ackCmd).Error(); err != nil {
		return fmt.Errorf("xack failed stream=%s id=%s: %w", cfg.Stream, entry.ID, err)
	}

	r.logger.Warn("message_dead_lettered",
		"stream", cfg.Stream,
		"dlq", cfg.DeadLetterStream,
		"id", entry.ID,
		"deliveries", entry.Deliveries,
	)
	return nil
}

// claimAndHandle: 메시지를 이 소비자로 재청구하여 핸들러로 다시 처리한다.
func (r *StreamReclaimer) claimAndHandle(ctx context.Context, cfg StreamReclaimerConfig, entry PendingEntry) {
	claimCmd := r.client.B().Arbitrary("XCLAIM").
		Keys(cfg.Stream).
		Args(cfg.Group, cfg.Name,
			strconv.FormatInt(cfg.MinIdle.Milliseconds(), 10),
			entry.ID,
		).
		Build()

	claimed, err := r.client.Do(ctx, claimCmd).AsXRange()
	if err != nil {
		r.logger.Warn("xclaim_failed", "err", err, "stream", cfg.Stream, "id", entry.ID)
		return
	}

	for _, m := range claimed {
		msg := XMessage{ID: m.ID, Values: m.FieldValues}

		handleErr := r.handler(ctx, msg)
		if handleErr != nil && !commonerrors.IsPermanent(handleErr) {
			// 일시 실패: pending 유지, 다음 주기에 재시도 (전달 횟수 증가)
			r.logger.Warn("reclaimed_handler_retryable",
				"err", handleErr,
				"stream", cfg.Stream,
				"id", msg.ID,
				"deliveries", entry.Deliveries,
			)
			continue
		}
		if handleErr != nil {
			r.logger.Error("reclaimed_handler_permanent",
				"err", handleErr,
				"stream", cfg.Stream,
				"id", msg.ID,
			)
		}

		ackCmd := r.client.B().Xack().Key(cfg.Stream).Group(cfg.Group).Id(msg.ID).Build()
		if ackErr := r.client.Do(ctx, ackCmd).Error(); ackErr != nil {
			r.logger.Warn("xack_failed", "err", ackErr, "stream", cfg.Stream, "id", msg.ID)
		}
	}
}

func (r *StreamReclaimer) normalizedConfig() (StreamReclaimerConfig, error) {
	cfg := r.cfg
	cfg.Stream = strings.TrimSpace(cfg.Stream)
	cfg.Group = strings.TrimSpace(cfg.Group)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.DeadLetterStream = strings.TrimSpace(cfg.DeadLetterStream)
	if cfg.Stream == "" || cfg.Group == "" || cfg.Name == "" {
		return StreamReclaimerConfig{}, errors.New("stream/group/name must be set")
	}
	if cfg.DeadLetterStream == "" {
		cfg.DeadLetterStream = cfg.Stream + ".dlq"
	}
	if cfg.MinIdle <= 0 {
		cfg.MinIdle = time.Minute
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return cfg, nil
}
