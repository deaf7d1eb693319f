package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/pkg/database"
	"github.com/d60-Lab/clipshare/pkg/probe"
	"github.com/d60-Lab/clipshare/pkg/storage"
	"github.com/d60-Lab/clipshare/pkg/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var dbSeq atomic.Int64

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	store  *repository.Store
	mem    *storage.Memory
	media  *storage.Gateway
	clock  *testClock
	codec  *token.Codec
	auth   AuthService
	users  UserService
	rel    RelationshipService
	videos VideoService
	cmts   CommentService
	likes  LikeService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.ReplaceAll(t.Name(), "/", "_"), dbSeq.Add(1))
	db, err := database.OpenMemory(name)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	e := &env{
		store: repository.NewStore(db),
		mem:   storage.NewMemory("http://media.test"),
		clock: &testClock{t: time.Now()},
	}
	e.media = storage.NewGateway(e.mem)
	e.codec = token.NewCodec(testSecret, token.WithClock(e.clock.Now))

	auth := NewAuthService(e.store, e.codec, e.media).(*authService)
	auth.bcrypt = bcrypt.MinCost
	e.auth = auth
	users := NewUserService(e.store, e.media, nil).(*userService)
	users.bcrypt = bcrypt.MinCost
	e.users = users
	e.rel = NewRelationshipService(e.store, nil)
	e.videos = NewVideoService(e.store, e.media, probe.Fixed(42))
	e.cmts = NewCommentService(e.store)
	e.likes = NewLikeService(e.store)
	return e
}

func (e *env) signup(t *testing.T, nickname string) *model.User {
	t.Helper()
	u, err := e.auth.Signup(context.Background(), SignupInput{
		Email:    nickname + "@x.com",
		Password: "secret-" + nickname,
		Nickname: nickname,
	})
	require.NoError(t, err)
	return u
}

func (e *env) upload(t *testing.T, owner uint64, title string) *VideoView {
	t.Helper()
	v, err := e.videos.Upload(context.Background(), owner, UploadVideoInput{
		Title: title,
		Video: storage.FromBytes("clip.mp4", "video/mp4", []byte("frames")),
	})
	require.NoError(t, err)
	return v
}

func (e *env) reloadUser(t *testing.T, id uint64) *model.User {
	t.Helper()
	u, err := e.store.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *env) reloadVideo(t *testing.T, id uint64) *model.Video {
	t.Helper()
	v, err := e.store.Videos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return v
}

func ptr[T any](v T) *T { return &v }

// hookedMedia 在存储调用前执行 hook，用来模拟上传期间的并发写
type hookedMedia struct {
	*storage.Gateway
	hook func()
}

func (m *hookedMedia) StoreProfileImage(ctx context.Context, up *storage.Upload) (string, error) {
	if m.hook != nil {
		m.hook()
	}
	return m.Gateway.StoreProfileImage(ctx, up)
}

type hookedProber struct {
	runtime int
	hook    func()
}

func (p *hookedProber) Runtime(context.Context, *storage.Upload) int {
	if p.hook != nil {
		p.hook()
	}
	return p.runtime
}
