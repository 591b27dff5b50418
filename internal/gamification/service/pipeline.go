package service

import (
	"context"
	"log/slog"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

// Pipeline: 소비된 도메인 이벤트 하나를 점수 반영 → 지표 전진 → 업적 평가
// 순서로 처리하는 파이프라인이다. 반환 에러의 영구/일시 분류에 따라
// 소비자가 ACK 여부를 결정한다.
type Pipeline struct {
	scoring  *ScoringService
	progress *ProgressService
	logger   *slog.Logger
}

// NewPipeline: 새로운 Pipeline 인스턴스를 생성한다.
func NewPipeline(scoring *ScoringService, progress *ProgressService, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		scoring:  scoring,
		progress: progress,
		logger:   logger,
	}
}

// Handle: 이벤트 하나를 끝까지 처리한다.
// 원장에 이미 반영된 이벤트(중복 replay)는 지표도 전진시키지 않아
// 재전달이 집계를 부풀리지 않는다.
func (p *Pipeline) Handle(ctx context.Context, event model.GamificationEvent) error {
	result, err := p.scoring.Record(ctx, event)
	if err != nil {
		return err
	}
	if !result.Applied {
		return nil
	}

	p.progress.Apply(ctx, result.User, event, result.Points)
	return nil
}
