package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/pkg/response"
	"github.com/d60-Lab/clipshare/pkg/token"
)

const (
	AccessCookie  = "AccessToken"
	RefreshCookie = "RefreshToken"

	principalKey = "principal"
)

// Principal 由认证中间件解析出的调用者身份
type Principal struct {
	UserID    uint64
	LoginName string
	Role      string
}

// publicRoute 无需登录即可访问的路由；method 为空表示任意方法
type publicRoute struct {
	method  string
	pattern *regexp.Regexp
}

var publicRoutes = []publicRoute{
	{"", regexp.MustCompile(`^/auth/(signup|login|refresh|logout)$`)},
	{"", regexp.MustCompile(`^/api/files(/.*)?$`)},
	{http.MethodGet, regexp.MustCompile(`^/videos$`)},
	{http.MethodGet, regexp.MustCompile(`^/videos/search$`)},
	{http.MethodGet, regexp.MustCompile(`^/videos/\d+$`)},
	{http.MethodGet, regexp.MustCompile(`^/videos/\d+/comments(/\d+/replies)?$`)},
	{http.MethodGet, regexp.MustCompile(`^/users/search$`)},
	{http.MethodGet, regexp.MustCompile(`^/users/\d+/profile$`)},
	{http.MethodGet, regexp.MustCompile(`^/follow/(followers|followings)/\d+$`)},
	{http.MethodGet, regexp.MustCompile(`^/oauth2/authorization/[^/]+$`)},
	{http.MethodGet, regexp.MustCompile(`^/login/oauth2/code/[^/]+$`)},
	{http.MethodGet, regexp.MustCompile(`^/swagger/.*$`)},
	{http.MethodGet, regexp.MustCompile(`^/healthz$`)},
}

// IsPublic 判断请求是否命中白名单
func IsPublic(method, path string) bool {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range publicRoutes {
		if r.method != "" && r.method != method {
			continue
		}
		if r.pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// Auth 认证中间件：OPTIONS 直接返回 204；白名单路由有令牌时附带身份，
// 其余路由必须携带有效的 AccessToken Cookie
func Auth(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		public := IsPublic(c.Request.Method, c.Request.URL.Path)

		raw, _ := c.Cookie(AccessCookie)
		if raw == "" {
			if public {
				c.Next()
				return
			}
			response.Unauthorized(c, "authentication required")
			return
		}

		p, err := parsePrincipal(codec, raw)
		if err != nil {
			if public {
				c.Next()
				return
			}
			if errors.Is(err, token.ErrExpired) {
				response.Unauthorized(c, "access token expired")
				return
			}
			response.Unauthorized(c, "invalid access token")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func parsePrincipal(codec *token.Codec, raw string) (*Principal, error) {
	claims, err := codec.ParseAccess(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: id, LoginName: claims.LoginName, Role: claims.Role}, nil
}

// CurrentPrincipal 返回当前调用者；匿名访问时 ok 为 false
func CurrentPrincipal(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

// ViewerID 匿名访问时返回 0
func ViewerID(c *gin.Context) uint64 {
	if p, ok := CurrentPrincipal(c); ok {
		return p.UserID
	}
	return 0
}
