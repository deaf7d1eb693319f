package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/clipshare/internal/model"
)

func BenchmarkFollowWrite(b *testing.B) {
	s := NewStore(setupDB(b))
	ctx := context.Background()

	// 预创建部分用户
	users := make([]*model.User, 1000)
	for i := range users {
		users[i] = seedUser(b, s, fmt.Sprintf("u%04d", i))
	}

	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[r.Intn(len(users))].ID
		to := users[r.Intn(len(users))].ID
		if from == to {
			continue
		}
		_ = s.Transaction(ctx, func(tx *Store) error {
			created, err := tx.Follows.Create(ctx, from, to)
			if err != nil || !created {
				return err
			}
			return tx.Users.AdjustFollowerCnt(ctx, to, 1)
		})
	}
}

func BenchmarkQueryFollowersAndFollowing(b *testing.B) {
	s := NewStore(setupDB(b))
	ctx := context.Background()

	// 构造：u0 有 N 个粉丝，同时 u0 也关注这 N 个用户
	const N = 2000
	u0 := seedUser(b, s, "u0")
	for i := 1; i <= N; i++ {
		u := seedUser(b, s, fmt.Sprintf("u%d", i))
		_, _ = s.Follows.Create(ctx, u.ID, u0.ID)
		_, _ = s.Follows.Create(ctx, u0.ID, u.ID)
	}

	b.ResetTimer()
	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = s.Follows.ListFollowers(ctx, u0.ID, 0, 50)
		}
	})

	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = s.Follows.ListFollowings(ctx, u0.ID, 0, 50)
		}
	})
}

func BenchmarkLikeToggle(b *testing.B) {
	s := NewStore(setupDB(b))
	ctx := context.Background()
	owner := seedUser(b, s, "owner")
	v := seedVideo(b, s, owner.ID, "v")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Transaction(ctx, func(tx *Store) error {
			if _, err := tx.Likes.FlipVideoLike(ctx, owner.ID, v.ID); err != nil {
				return err
			}
			n, err := tx.Likes.CountVideoLikes(ctx, v.ID)
			if err != nil {
				return err
			}
			return tx.Videos.SetLikeCnt(ctx, v.ID, n)
		})
	}
}
