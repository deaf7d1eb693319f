package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/apperr"
)

// CommentService 两级评论：顶级评论与回复，回复不能再被回复
type CommentService interface {
	Create(ctx context.Context, userID, videoID uint64, content string, parentID *uint64) (*CommentView, error)
	ListTopLevel(ctx context.Context, videoID, viewerID uint64) ([]CommentView, error)
	ListReplies(ctx context.Context, videoID, parentID, viewerID uint64) ([]CommentView, error)
	Update(ctx context.Context, userID, videoID, commentID uint64, content string) (*CommentView, error)
	Delete(ctx context.Context, userID, videoID, commentID uint64) error
	LikedTopLevelIDs(ctx context.Context, userID, videoID uint64) ([]uint64, error)
}

type commentService struct {
	store *repository.Store
}

func NewCommentService(store *repository.Store) CommentService {
	return &commentService{store: store}
}

func (s *commentService) Create(ctx context.Context, userID, videoID uint64, content string, parentID *uint64) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content is required")
	}
	var created *model.Comment
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return notFoundOr(err, ErrUserNotFound, "find author")
		}
		if _, err := tx.Videos.FindByID(ctx, videoID); err != nil {
			return notFoundOr(err, ErrVideoNotFound, "find video")
		}
		if parentID != nil {
			parent, err := tx.Comments.FindByID(ctx, *parentID)
			if err != nil {
				return notFoundOr(err, apperr.NotFound("parent comment not found"), "find parent")
			}
			if parent.VideoID != videoID {
				return apperr.Validation("parent comment belongs to another video")
			}
			if parent.IsReply() {
				return apperr.Validation("cannot reply to a reply")
			}
		}

		c := &model.Comment{UserID: userID, VideoID: videoID, ParentCommentID: parentID, Content: content}
		if err := tx.Comments.Create(ctx, c); err != nil {
			return err
		}
		if parentID == nil {
			if err := recountComments(ctx, tx, videoID); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.Comments.FindByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, wrap(err, "create comment")
	}
	view := toCommentView(created, false)
	return &view, nil
}

func (s *commentService) ListTopLevel(ctx context.Context, videoID, viewerID uint64) ([]CommentView, error) {
	if _, err := s.store.Videos.FindByID(ctx, videoID); err != nil {
		return nil, notFoundOr(err, ErrVideoNotFound, "find video")
	}
	comments, err := s.store.Comments.ListTopLevel(ctx, videoID)
	if err != nil {
		return nil, wrap(err, "list comments")
	}
	return s.views(ctx, comments, viewerID)
}

func (s *commentService) ListReplies(ctx context.Context, videoID, parentID, viewerID uint64) ([]CommentView, error) {
	parent, err := s.store.Comments.FindByID(ctx, parentID)
	if err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "find comment")
	}
	if parent.VideoID != videoID {
		return nil, ErrCommentNotFound
	}
	replies, err := s.store.Comments.ListReplies(ctx, parentID)
	if err != nil {
		return nil, wrap(err, "list replies")
	}
	return s.views(ctx, replies, viewerID)
}

func (s *commentService) views(ctx context.Context, comments []*model.Comment, viewerID uint64) ([]CommentView, error) {
	ids := make([]uint64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := s.store.Likes.LikedCommentSet(ctx, viewerID, ids)
	if err != nil {
		return nil, wrap(err, "load likes")
	}
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentView(c, liked[c.ID]))
	}
	return out, nil
}

// owned 评论不存在或不属于该视频时返回 not-found，非作者返回 forbidden
func (s *commentService) owned(ctx context.Context, userID, videoID, commentID uint64) (*model.Comment, error) {
	c, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "find comment")
	}
	if c.VideoID != videoID {
		return nil, ErrCommentNotFound
	}
	if c.UserID != userID {
		return nil, apperr.Forbidden("you are not the author of this comment")
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, userID, videoID, commentID uint64, content string) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content is required")
	}
	c, err := s.owned(ctx, userID, videoID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Comments.UpdateContent(ctx, c.ID, content); err != nil {
		return nil, wrap(err, "update comment")
	}
	if c, err = s.store.Comments.FindByID(ctx, c.ID); err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "reload comment")
	}
	liked, err := s.store.Likes.LikedCommentSet(ctx, userID, []uint64{c.ID})
	if err != nil {
		return nil, wrap(err, "load like")
	}
	view := toCommentView(c, liked[c.ID])
	return &view, nil
}

func (s *commentService) Delete(ctx context.Context, userID, videoID, commentID uint64) error {
	c, err := s.owned(ctx, userID, videoID, commentID)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return deleteComment(ctx, tx, c)
	})
	return wrap(err, "delete comment")
}

func (s *commentService) LikedTopLevelIDs(ctx context.Context, userID, videoID uint64) ([]uint64, error) {
	comments, err := s.store.Comments.ListTopLevel(ctx, videoID)
	if err != nil {
		return nil, wrap(err, "list comments")
	}
	ids := make([]uint64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := s.store.Likes.LikedCommentSet(ctx, userID, ids)
	if err != nil {
		return nil, wrap(err, "load likes")
	}
	out := make([]uint64, 0, len(liked))
	for _, id := range ids {
		if liked[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
