package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/clipshare/config"
	"github.com/d60-Lab/clipshare/internal/cache"
	"github.com/d60-Lab/clipshare/internal/model"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/database"
)

// 粉丝列表分页延迟对比：直接查库 vs Redis ID 索引缓存
type request struct {
	page int
	size int
}

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=clipshare_bench port=5432 sslmode=disable"
	}
	db := must(database.Open(config.DatabaseConfig{Driver: "postgres", DSN: dsn, MaxOpenConns: 20, LogLevel: "silent"}))
	mustDo(db.Migrator().DropTable(&model.Follow{}, &model.User{}))
	mustDo(repository.AutoMigrate(db))

	const (
		userCount = 20000
		celebs    = 3
	)
	fmt.Println("Setting up test data...")
	celebIDs := seed(db, userCount, celebs)
	fmt.Printf("Test data ready: %d users, %d celebrities with %d followers each\n", userCount, celebs, userCount/2)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("failed to connect to redis at %s: %v", redisAddr, err))
	}

	store := repository.NewStore(db)
	fc := cache.NewFollowCache(client, 10*time.Minute)
	direct := service.NewRelationshipService(store, nil)
	cached := service.NewRelationshipService(store, fc)

	reqs := makeRequests(celebIDs, 3000)

	noCache := run(ctx, client, reqs, false, direct)
	withCache := run(ctx, client, reqs, true, cached)

	fmt.Printf("\nFollower list latency (%d req across %d users, %d users total)\n", len(reqs), celebs, userCount)
	report("No cache", noCache)
	report("ID index cache", withCache)
	fmt.Printf("index loads from db: %d\n", fc.IndexLoads())
}

type call struct {
	userID uint64
	req    request
}

type result struct {
	durations []time.Duration
	cacheKeys int
}

func seed(db *gorm.DB, userCount, celebs int) []uint64 {
	users := make([]model.User, userCount)
	for i := range users {
		users[i] = model.User{Nickname: fmt.Sprintf("user_%d", i), LoginName: fmt.Sprintf("bench_%d", i)}
	}
	mustDo(db.CreateInBatches(&users, 1000).Error)

	ids := make([]uint64, celebs)
	base := time.Now()
	for c := 0; c < celebs; c++ {
		ids[c] = users[c].ID
		// 相邻明星的粉丝有一半重叠
		offset := c * userCount / 4
		rows := make([]model.Follow, 0, userCount/2)
		for i := 0; i < userCount/2; i++ {
			follower := users[(i+offset)%userCount].ID
			if follower == ids[c] {
				continue
			}
			rows = append(rows, model.Follow{
				FollowerID: follower,
				FolloweeID: ids[c],
				CreatedAt:  base.Add(-time.Duration(i) * time.Second),
			})
		}
		mustDo(db.CreateInBatches(&rows, 1000).Error)
		mustDo(db.Model(&model.User{}).Where("id = ?", ids[c]).Update("follower_cnt", len(rows)).Error)
	}
	return ids
}

func run(ctx context.Context, client *redis.Client, reqs []call, warm bool, svc service.RelationshipService) result {
	client.FlushAll(ctx)
	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			_, err := svc.ListFollowers(ctx, r.userID, r.req.page, r.req.size)
			mustDo(err)
		}
		fmt.Println(" done")
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		_, err := svc.ListFollowers(ctx, r.userID, r.req.page, r.req.size)
		mustDo(err)
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()
	return result{durations: out, cacheKeys: len(keys)}
}

func report(name string, r result) {
	fmt.Printf("%-16s avg=%v p95=%v p99=%v cache_keys=%d\n",
		name, avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99), r.cacheKeys)
}

func makeRequests(userIDs []uint64, perUser int) []call {
	sizes := []int{20, 40, 60}
	rnd := rand.New(rand.NewSource(42))
	out := make([]call, 0, perUser*len(userIDs))
	for _, id := range userIDs {
		for i := 0; i < perUser; i++ {
			page := 1
			if rnd.Float64() > 0.72 {
				// 模拟深分页
				page = 2 + rnd.Intn(120)
			}
			out = append(out, call{userID: id, req: request{page: page, size: sizes[rnd.Intn(len(sizes))]}})
		}
	}
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
