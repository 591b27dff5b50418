package valkeyx

import (
	"strings"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
)

// WrapRedisError: Redis 관련 에러를 공통 타입으로 감싼다.
func WrapRedisError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: operation, Err: err}
}

// IsBusyGroup: XGROUP CREATE 시 그룹이 이미 존재할 때 발생하는 BUSYGROUP 에러인지 확인한다.
func IsBusyGroup(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "BUSYGROUP")
}
