package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
)

// GetUser: 사용자를 조회한다. 없으면 UserNotFoundError를 반환한다.
func (r *Repository) GetUser(ctx context.Context, userID string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, cerrors.UserNotFoundError{UserID: userID}
	}

	var user User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cerrors.UserNotFoundError{UserID: userID}
		}
		return nil, cerrors.DatabaseError{Operation: "get_user", Err: err}
	}
	return &user, nil
}

// EnsureUser: 사용자 행을 생성한다. 이미 존재하면 아무 일도 하지 않는다.
// 테스트 및 내부 API에서 사용한다.
func (r *Repository) EnsureUser(ctx context.Context, userID string, username string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is empty")
	}

	entity := User{ID: userID, Username: strings.TrimSpace(username)}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&entity).Error; err != nil {
		return cerrors.DatabaseError{Operation: "ensure_user", Err: err}
	}
	return nil
}
