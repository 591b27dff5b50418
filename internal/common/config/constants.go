package config

// MQ 공통 상수.
const (
	// MQBatchSize: 메시지 큐 배치 크기
	MQBatchSize = 16
	// MQReadTimeoutMS: 메시지 큐 읽기 타임아웃(ms)
	MQReadTimeoutMS = 5000
	// MQConsumerConcurrency: 메시지 큐 소비 동시성
	MQConsumerConcurrency = 8
	// MQStreamMaxLen: 스트림 최대 길이
	MQStreamMaxLen = 100_000
	// MQMaxDeliveries: 메시지 최대 전달 횟수 (초과 시 DLQ 라우팅)
	MQMaxDeliveries = 5
	// MQReclaimMinIdleMS: 재청구 대상이 되는 최소 유휴 시간(ms)
	MQReclaimMinIdleMS = 60_000
	// MQReclaimIntervalMS: 미확인 메시지 재청구 주기(ms)
	MQReclaimIntervalMS = 30_000
)

// 도메인 이벤트 스트림 키 상수.
const (
	// DefaultStreamKey: 도메인 이벤트 인바운드 스트림 키
	DefaultStreamKey = "domain.events"
	// DefaultDeadLetterStreamKey: 도메인 이벤트 데드레터 스트림 키
	DefaultDeadLetterStreamKey = "domain.events.dlq"
	// DefaultConsumerGroup: 게임화 파이프라인 Consumer Group 이름
	DefaultConsumerGroup = "gamification.events"
)

// 리더보드 캐시 키 상수.
const (
	// LeaderboardWeeklyKeyPrefix: 주간 리더보드 키 접두사 (lb:weekly:<월요일 ISO 날짜>)
	LeaderboardWeeklyKeyPrefix = "lb:weekly:"
	// LeaderboardMonthlyKeyPrefix: 월간 리더보드 키 접두사 (lb:monthly:<yyyy-MM>)
	LeaderboardMonthlyKeyPrefix = "lb:monthly:"
	// LeaderboardAllTimeKey: 전체 기간 리더보드 키
	LeaderboardAllTimeKey = "lb:alltime"
)
