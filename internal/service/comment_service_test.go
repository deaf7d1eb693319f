package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/clipshare/pkg/apperr"
)

func TestComment_TopLevelAndReplyCounting(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")
	v := e.upload(t, u.ID, "v")

	top, err := e.cmts.Create(ctx, u.ID, v.ID, "top", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.reloadVideo(t, v.ID).CommentCnt)

	reply, err := e.cmts.Create(ctx, u.ID, v.ID, "reply", &top.ID)
	require.NoError(t, err)
	assert.Equal(t, top.ID, *reply.ParentCommentID)
	assert.Equal(t, int64(1), e.reloadVideo(t, v.ID).CommentCnt, "replies do not count")

	require.NoError(t, e.cmts.Delete(ctx, u.ID, v.ID, top.ID))
	assert.Equal(t, int64(0), e.reloadVideo(t, v.ID).CommentCnt)
	_, err = e.store.Comments.FindByID(ctx, reply.ID)
	assert.Error(t, err, "reply removed with its parent")
}

func TestComment_DeletingReplyKeepsCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")
	v := e.upload(t, u.ID, "v")
	top, err := e.cmts.Create(ctx, u.ID, v.ID, "top", nil)
	require.NoError(t, err)
	reply, err := e.cmts.Create(ctx, u.ID, v.ID, "reply", &top.ID)
	require.NoError(t, err)

	require.NoError(t, e.cmts.Delete(ctx, u.ID, v.ID, reply.ID))
	assert.Equal(t, int64(1), e.reloadVideo(t, v.ID).CommentCnt)
}

func TestComment_NestingRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")
	v1 := e.upload(t, u.ID, "v1")
	v2 := e.upload(t, u.ID, "v2")
	top, err := e.cmts.Create(ctx, u.ID, v1.ID, "top", nil)
	require.NoError(t, err)
	reply, err := e.cmts.Create(ctx, u.ID, v1.ID, "reply", &top.ID)
	require.NoError(t, err)

	_, err = e.cmts.Create(ctx, u.ID, v1.ID, "deep", &reply.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.cmts.Create(ctx, u.ID, v2.ID, "cross", &top.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := uint64(999)
	_, err = e.cmts.Create(ctx, u.ID, v1.ID, "orphan", &missing)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.cmts.Create(ctx, u.ID, 999, "nowhere", nil)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	_, err = e.cmts.Create(ctx, u.ID, v1.ID, "  ", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestComment_OnlyAuthorMayModify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.signup(t, "author")
	other := e.signup(t, "other")
	v := e.upload(t, author.ID, "v")
	c, err := e.cmts.Create(ctx, author.ID, v.ID, "mine", nil)
	require.NoError(t, err)

	_, err = e.cmts.Update(ctx, other.ID, v.ID, c.ID, "theirs")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	err = e.cmts.Delete(ctx, other.ID, v.ID, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := e.store.Comments.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)

	updated, err := e.cmts.Update(ctx, author.ID, v.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = e.cmts.Update(ctx, author.ID, v.ID+1, c.ID, "wrong video")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestComment_ListingsCarryCallerLikes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")
	viewer := e.signup(t, "viewer")
	v := e.upload(t, u.ID, "v")

	first, err := e.cmts.Create(ctx, u.ID, v.ID, "first", nil)
	require.NoError(t, err)
	second, err := e.cmts.Create(ctx, u.ID, v.ID, "second", nil)
	require.NoError(t, err)
	r1, err := e.cmts.Create(ctx, viewer.ID, v.ID, "r1", &first.ID)
	require.NoError(t, err)
	r2, err := e.cmts.Create(ctx, viewer.ID, v.ID, "r2", &first.ID)
	require.NoError(t, err)

	_, err = e.likes.ToggleComment(ctx, viewer.ID, first.ID)
	require.NoError(t, err)

	top, err := e.cmts.ListTopLevel(ctx, v.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, second.ID, top[0].ID, "newest first")
	assert.True(t, top[1].IsLiked)
	assert.Equal(t, int64(1), top[1].LikeCount)

	replies, err := e.cmts.ListReplies(ctx, v.ID, first.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID, "oldest first")
	assert.Equal(t, r2.ID, replies[1].ID)
	assert.Equal(t, "viewer", replies[0].Nickname)

	liked, err := e.cmts.LikedTopLevelIDs(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first.ID}, liked)
}
