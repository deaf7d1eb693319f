package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/clipshare/internal/api/middleware"
)

const oauthStateCookie = "OAuthState"

type cookieWriter struct {
	secure bool
}

// set SameSite=None 以支持跨站携带，ttl 为 0 时清除
func (w cookieWriter) set(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl <= 0 {
		maxAge = -1
		value = ""
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (w cookieWriter) setTokens(c *gin.Context, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	w.set(c, middleware.AccessCookie, access, accessTTL)
	w.set(c, middleware.RefreshCookie, refresh, refreshTTL)
}

func (w cookieWriter) clearTokens(c *gin.Context) {
	w.set(c, middleware.AccessCookie, "", 0)
	w.set(c, middleware.RefreshCookie, "", 0)
}

// state Cookie 只在 OAuth 跳转往返中使用，Lax 即可
func (w cookieWriter) setState(c *gin.Context, state string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl <= 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
