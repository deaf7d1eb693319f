package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleVideo_TwiceRestoresState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u1 := e.signup(t, "u1")
	u2 := e.signup(t, "u2")
	v := e.upload(t, u1.ID, "V")

	res, err := e.likes.ToggleVideo(ctx, u2.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, &VideoLikeResult{VideoID: v.ID, IsLiked: true, LikeCount: 1}, res)

	liked, err := e.likes.IsVideoLiked(ctx, u2.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	res, err = e.likes.ToggleVideo(ctx, u2.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, &VideoLikeResult{VideoID: v.ID, IsLiked: false, LikeCount: 0}, res)
	assert.Equal(t, int64(0), e.reloadVideo(t, v.ID).LikeCnt)
}

func TestToggleVideo_CountMatchesLedger(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.signup(t, "owner")
	v := e.upload(t, owner.ID, "V")

	var wg sync.WaitGroup
	for _, n := range []string{"a", "b", "c", "d"} {
		u := e.signup(t, n)
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := e.likes.ToggleVideo(ctx, id, v.ID)
			assert.NoError(t, err)
		}(u.ID)
	}
	wg.Wait()

	n, err := e.store.Likes.CountVideoLikes(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, n, e.reloadVideo(t, v.ID).LikeCnt)
}

func TestToggle_MissingTargets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")

	_, err := e.likes.ToggleVideo(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	_, err = e.likes.ToggleComment(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestToggleComment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.signup(t, "u")
	v := e.upload(t, u.ID, "V")
	c, err := e.cmts.Create(ctx, u.ID, v.ID, "hi", nil)
	require.NoError(t, err)

	res, err := e.likes.ToggleComment(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, &CommentLikeResult{CommentID: c.ID, IsLiked: true, LikeCount: 1}, res)

	res, err = e.likes.ToggleComment(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, res.IsLiked)
	assert.Equal(t, int64(0), res.LikeCount)
}
