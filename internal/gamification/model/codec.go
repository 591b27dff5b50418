package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 스트림 메시지 파싱 에러 목록.
var (
	// ErrMissingEventType 는 패키지 변수다.
	ErrMissingEventType = errors.New("missing event type")
	ErrMissingUserID    = errors.New("missing user id")
)

// ToStreamValues 는 이벤트 봉투를 Valkey 스트림 필드 맵으로 변환한다.
func (e GamificationEvent) ToStreamValues() map[string]any {
	values := map[string]any{
		"eventType": string(e.EventType),
		"userId":    e.UserID.String(),
	}
	if e.Difficulty != nil {
		values["difficulty"] = string(*e.Difficulty)
	}
	if e.RefType != nil && strings.TrimSpace(*e.RefType) != "" {
		values["refType"] = strings.TrimSpace(*e.RefType)
	}
	if e.RefID != nil {
		values["refId"] = e.RefID.String()
	}
	if !e.OccurredAt.IsZero() {
		values["occurredAt"] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	return values
}

// ParseGamificationEvent 는 스트림 필드 맵을 이벤트 봉투로 복원한다.
func ParseGamificationEvent(fields map[string]string) (GamificationEvent, error) {
	rawType := strings.TrimSpace(fields["eventType"])
	if rawType == "" {
		return GamificationEvent{}, ErrMissingEventType
	}
	eventType, err := ParseScoreEventType(rawType)
	if err != nil {
		return GamificationEvent{}, err
	}

	rawUserID := strings.TrimSpace(fields["userId"])
	if rawUserID == "" {
		return GamificationEvent{}, ErrMissingUserID
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return GamificationEvent{}, errors.Join(errors.New("invalid user id"), err)
	}

	difficulty, err := ParseDifficultyLevel(fields["difficulty"])
	if err != nil {
		return GamificationEvent{}, err
	}

	var refTypePtr *string
	if refType := strings.TrimSpace(fields["refType"]); refType != "" {
		refTypePtr = &refType
	}

	var refIDPtr *uuid.UUID
	if rawRefID := strings.TrimSpace(fields["refId"]); rawRefID != "" {
		refID, parseErr := uuid.Parse(rawRefID)
		if parseErr != nil {
			return GamificationEvent{}, errors.Join(errors.New("invalid ref id"), parseErr)
		}
		refIDPtr = &refID
	}

	occurredAt := time.Now().UTC()
	if rawOccurredAt := strings.TrimSpace(fields["occurredAt"]); rawOccurredAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, rawOccurredAt); parseErr == nil {
			occurredAt = parsed.UTC()
		}
	}

	return GamificationEvent{
		EventType:  eventType,
		UserID:     userID,
		Difficulty: difficulty,
		RefType:    refTypePtr,
		RefID:      refIDPtr,
		OccurredAt: occurredAt,
	}, nil
}
