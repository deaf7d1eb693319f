package service

import (
	"context"

	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
)

// deleteVideos 删除视频及其评论、评论点赞、视频点赞；必须在事务内调用
func deleteVideos(ctx context.Context, tx *repository.Store, videoIDs []uint64) error {
	if len(videoIDs) == 0 {
		return nil
	}
	commentIDs, err := tx.Comments.IDsByVideos(ctx, videoIDs)
	if err != nil {
		return err
	}
	if err := tx.Likes.DeleteByComments(ctx, commentIDs); err != nil {
		return err
	}
	if err := tx.Comments.Delete(ctx, commentIDs...); err != nil {
		return err
	}
	if err := tx.Likes.DeleteByVideos(ctx, videoIDs); err != nil {
		return err
	}
	return tx.Videos.Delete(ctx, videoIDs...)
}

// deleteComment 删除评论；顶级评论连带删除回复并重算视频评论数
func deleteComment(ctx context.Context, tx *repository.Store, c *model.Comment) error {
	ids := []uint64{c.ID}
	if !c.IsReply() {
		replies, err := tx.Comments.ReplyIDs(ctx, ids)
		if err != nil {
			return err
		}
		ids = append(ids, replies...)
	}
	if err := tx.Likes.DeleteByComments(ctx, ids); err != nil {
		return err
	}
	if err := tx.Comments.Delete(ctx, ids...); err != nil {
		return err
	}
	if c.IsReply() {
		return nil
	}
	return recountComments(ctx, tx, c.VideoID)
}

func recountComments(ctx context.Context, tx *repository.Store, videoID uint64) error {
	n, err := tx.Comments.CountTopLevel(ctx, videoID)
	if err != nil {
		return err
	}
	return tx.Videos.SetCommentCnt(ctx, videoID, n)
}

func recountVideoLikes(ctx context.Context, tx *repository.Store, videoID uint64) (int64, error) {
	n, err := tx.Likes.CountVideoLikes(ctx, videoID)
	if err != nil {
		return 0, err
	}
	return n, tx.Videos.SetLikeCnt(ctx, videoID, n)
}

func recountCommentLikes(ctx context.Context, tx *repository.Store, commentID uint64) (int64, error) {
	n, err := tx.Likes.CountCommentLikes(ctx, commentID)
	if err != nil {
		return 0, err
	}
	return n, tx.Comments.SetLikeCnt(ctx, commentID, n)
}
