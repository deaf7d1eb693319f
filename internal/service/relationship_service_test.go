package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/clipshare/internal/cache"
	"github.com/d60-Lab/clipshare/pkg/apperr"
)

func TestFollow_SelfIsRejected(t *testing.T) {
	e := newEnv(t)
	u := e.signup(t, "u")
	err := e.rel.Follow(context.Background(), u.ID, u.ID)
	assert.ErrorIs(t, err, ErrFollowSelf)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFollow_DuplicateConflictsAndKeepsCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.signup(t, "a")
	b := e.signup(t, "b")

	require.NoError(t, e.rel.Follow(ctx, a.ID, b.ID))
	assert.Equal(t, int64(1), e.reloadUser(t, b.ID).FollowerCnt)

	err := e.rel.Follow(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, int64(1), e.reloadUser(t, b.ID).FollowerCnt)
}

func TestFollow_UnknownFollowee(t *testing.T) {
	e := newEnv(t)
	a := e.signup(t, "a")
	assert.ErrorIs(t, e.rel.Follow(context.Background(), a.ID, 999), ErrUserNotFound)
}

func TestUnfollow_NeverFollowedIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.signup(t, "a")
	b := e.signup(t, "b")
	c := e.signup(t, "c")
	require.NoError(t, e.rel.Follow(ctx, c.ID, b.ID))

	require.NoError(t, e.rel.Unfollow(ctx, a.ID, b.ID))
	assert.Equal(t, int64(1), e.reloadUser(t, b.ID).FollowerCnt)

	require.NoError(t, e.rel.Unfollow(ctx, c.ID, b.ID))
	require.NoError(t, e.rel.Unfollow(ctx, c.ID, b.ID))
	assert.Equal(t, int64(0), e.reloadUser(t, b.ID).FollowerCnt)
}

func TestListFollowersAndFollowing_DBPaging(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	star := e.signup(t, "star")
	for _, n := range []string{"f1", "f2", "f3"} {
		f := e.signup(t, n)
		require.NoError(t, e.rel.Follow(ctx, f.ID, star.ID))
	}

	page1, err := e.rel.ListFollowers(ctx, star.ID, 1, 2)
	require.NoError(t, err)
	page2, err := e.rel.ListFollowers(ctx, star.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Len(t, page2, 1)

	following, err := e.rel.ListFollowing(ctx, page2[0].ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "star", following[0].Nickname)
	assert.Equal(t, int64(3), following[0].FollowerCnt)
}

func TestListFollowers_CachedIndexInvalidatedOnFollow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	fc := cache.NewFollowCache(rdb, time.Minute)
	rel := NewRelationshipService(e.store, fc)

	star := e.signup(t, "star")
	a := e.signup(t, "a")
	b := e.signup(t, "b")
	require.NoError(t, rel.Follow(ctx, a.ID, star.ID))

	list, err := rel.ListFollowers(ctx, star.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = rel.ListFollowers(ctx, star.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fc.IndexLoads())

	require.NoError(t, rel.Follow(ctx, b.ID, star.ID))
	list, err = rel.ListFollowers(ctx, star.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "newest follower first")
	assert.Equal(t, int64(2), fc.IndexLoads())

	require.NoError(t, rel.Unfollow(ctx, a.ID, star.ID))
	list, err = rel.ListFollowers(ctx, star.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
