package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/pkg/apperr"
)

var (
	ErrFollowSelf       = apperr.Validation("cannot follow yourself")
	ErrAlreadyFollowing = apperr.Conflict("already following this user")
	ErrUserNotFound     = apperr.NotFound("user not found")
	ErrVideoNotFound    = apperr.NotFound("video not found")
	ErrCommentNotFound  = apperr.NotFound("comment not found")
	ErrBadCredentials   = apperr.Unauthenticated("invalid email or password")
	ErrEmailTaken       = apperr.Validation("email is already in use")
	ErrNicknameTaken    = apperr.Validation("nickname is already in use")
)

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// wrap 保留已有的 apperr，其余错误按内部错误处理
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(msg, err)
}

// notFoundOr 将 ErrRecordNotFound 转为给定的 not-found 错误
func notFoundOr(err error, nf error, msg string) error {
	if isNotFound(err) {
		return nf
	}
	return wrap(err, msg)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
