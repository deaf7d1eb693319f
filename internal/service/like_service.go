package service

import (
	"context"

	"github.com/d60-Lab/clipshare/internal/repository"
)

// LikeService 点赞切换；每次切换后从账本重算计数，整个过程在一个事务内
type LikeService interface {
	ToggleVideo(ctx context.Context, userID, videoID uint64) (*VideoLikeResult, error)
	ToggleComment(ctx context.Context, userID, commentID uint64) (*CommentLikeResult, error)
	IsVideoLiked(ctx context.Context, userID, videoID uint64) (bool, error)
}

type likeService struct {
	store *repository.Store
}

func NewLikeService(store *repository.Store) LikeService {
	return &likeService{store: store}
}

func (s *likeService) ToggleVideo(ctx context.Context, userID, videoID uint64) (*VideoLikeResult, error) {
	res := &VideoLikeResult{VideoID: videoID}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Videos.Lock(ctx, videoID); err != nil {
			return err
		}
		if _, err := tx.Videos.FindByID(ctx, videoID); err != nil {
			return notFoundOr(err, ErrVideoNotFound, "find video")
		}
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find user")
		}
		liked, err := tx.Likes.FlipVideoLike(ctx, userID, videoID)
		if err != nil {
			return err
		}
		n, err := recountVideoLikes(ctx, tx, videoID)
		if err != nil {
			return err
		}
		res.IsLiked, res.LikeCount = liked, n
		return nil
	})
	if err != nil {
		return nil, wrap(err, "toggle video like")
	}
	return res, nil
}

func (s *likeService) ToggleComment(ctx context.Context, userID, commentID uint64) (*CommentLikeResult, error) {
	res := &CommentLikeResult{CommentID: commentID}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Comments.Lock(ctx, commentID); err != nil {
			return err
		}
		if _, err := tx.Comments.FindByID(ctx, commentID); err != nil {
			return notFoundOr(err, ErrCommentNotFound, "find comment")
		}
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find user")
		}
		liked, err := tx.Likes.FlipCommentLike(ctx, userID, commentID)
		if err != nil {
			return err
		}
		n, err := recountCommentLikes(ctx, tx, commentID)
		if err != nil {
			return err
		}
		res.IsLiked, res.LikeCount = liked, n
		return nil
	})
	if err != nil {
		return nil, wrap(err, "toggle comment like")
	}
	return res, nil
}

func (s *likeService) IsVideoLiked(ctx context.Context, userID, videoID uint64) (bool, error) {
	if _, err := s.store.Videos.FindByID(ctx, videoID); err != nil {
		return false, notFoundOr(err, ErrVideoNotFound, "find video")
	}
	liked, err := s.store.Likes.IsVideoLiked(ctx, userID, videoID)
	return liked, wrap(err, "load like")
}
