// Package errors: 게임화 서비스 전체에서 공용으로 사용되는 에러 타입들을 정의한다.
// 파이프라인/리포지토리/캐시 간 공유되는 인프라스트럭처 에러 타입을 포함한다.
package errors

import (
	"errors"
	"fmt"
)

// RedisError: Redis(Valkey) 작업을 수행하는 도중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 데이터베이스(PostgreSQL 등) 작업을 수행하는 도중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// PublishError: 이벤트 스트림 발행 중 발생한 에러 (호출자는 로깅 후 계속 진행)
type PublishError struct {
	Stream string
	Err    error
}

func (e PublishError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("publish error stream=%s", e.Stream)
	}
	return fmt.Sprintf("publish error stream=%s: %v", e.Stream, e.Err)
}

func (e PublishError) Unwrap() error { return e.Err }

// UserNotFoundError: 이벤트가 참조하는 사용자가 존재하지 않을 때 발생하는 에러
// 재시도해도 해소되지 않으므로 영구 실패로 분류된다.
type UserNotFoundError struct {
	UserID string
}

func (e UserNotFoundError) Error() string { return fmt.Sprintf("user not found: %s", e.UserID) }

// MalformedEventError: 스트림 메시지 파싱 실패 등 이벤트 형식이 올바르지 않을 때 발생하는 에러
// 메시지를 다시 전달받아도 해소되지 않으므로 영구 실패로 분류된다.
type MalformedEventError struct {
	Message string
}

func (e MalformedEventError) Error() string {
	if e.Message == "" {
		return "malformed event"
	}
	return "malformed event: " + e.Message
}

// permanentError: 재시도로 해소되지 않는 에러를 감싸는 마커
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }

func (e permanentError) Unwrap() error { return e.err }

// Permanent: 에러를 영구 실패로 표시한다. Consumer는 영구 실패 메시지를
// 재전달하지 않고 즉시 ACK 처리한다.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// permanentTypes: 마커 없이도 영구 실패로 간주되는 에러 타입들
var permanentTypes = []func() any{
	func() any { return new(UserNotFoundError) },
	func() any { return new(MalformedEventError) },
}

// IsPermanent: 에러가 재시도로 해소되지 않는 영구 실패인지 확인한다.
// Consumer의 ACK/재전달 분기에서 사용된다.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var marker permanentError
	if errors.As(err, &marker) {
		return true
	}
	for _, targetFn := range permanentTypes {
		if errors.As(err, targetFn()) {
			return true
		}
	}
	return false
}
