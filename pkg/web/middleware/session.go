package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/session"
)

const userIDKey = "user_id"

// Authenticator validates a raw session token.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken any) (session.Result, error)
}

// Cookies 维护 session_token (httpOnly) 与 logged (t/f) 两个 Cookie
type Cookies struct {
	cfg config.SessionConfig
}

func NewCookies(cfg config.SessionConfig) *Cookies {
	return &Cookies{cfg: cfg}
}

// Token returns the session token cookie, empty when absent.
func (k *Cookies) Token(ctx *app.RequestContext) string {
	return string(ctx.Cookie(k.cfg.CookieName))
}

// Logged returns the raw logged cookie value.
func (k *Cookies) Logged(ctx *app.RequestContext) string {
	return string(ctx.Cookie(k.cfg.LoggedCookieName))
}

// SetSession stores a fresh token and marks the client as logged in.
func (k *Cookies) SetSession(ctx *app.RequestContext, token string) {
	ctx.SetCookie(k.cfg.CookieName, token, 0, "/", "", protocol.CookieSameSiteLaxMode, k.cfg.SecureCookies, true)
	k.SetLogged(ctx, true)
}

func (k *Cookies) SetLogged(ctx *app.RequestContext, logged bool) {
	value := "f"
	if logged {
		value = "t"
	}
	ctx.SetCookie(k.cfg.LoggedCookieName, value, 0, "/", "", protocol.CookieSameSiteLaxMode, k.cfg.SecureCookies, false)
}

// ClearToken expires the session token cookie only.
func (k *Cookies) ClearToken(ctx *app.RequestContext) {
	k.expire(ctx, k.cfg.CookieName, true)
}

// Clear expires both cookies.
func (k *Cookies) Clear(ctx *app.RequestContext) {
	k.expire(ctx, k.cfg.CookieName, true)
	k.expire(ctx, k.cfg.LoggedCookieName, false)
}

func (k *Cookies) expire(ctx *app.RequestContext, name string, httpOnly bool) {
	cookie := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(cookie)

	cookie.SetKey(name)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetExpire(protocol.CookieExpireDelete)
	cookie.SetHTTPOnly(httpOnly)
	cookie.SetSecure(k.cfg.SecureCookies)
	ctx.Response.Header.SetCookie(cookie)
}

// SessionMiddleware 校验 session_token，通过后把用户ID写入上下文
func SessionMiddleware(auth Authenticator, cookies *Cookies) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		token := cookies.Token(ctx)
		if token == "" {
			abortWith(ctx, errs.ErrMissingSession)
			return
		}

		res, err := auth.Authenticate(c, token)
		if err != nil {
			_ = ctx.Error(errs.Private(err, describe(ctx)))
			abortWith(ctx, errs.ErrInternal)
			return
		}
		if !res.Logged {
			hlog.CtxInfof(c, "Rejected session user_id=%d code=%s request_id=%s",
				res.UserID, res.Err.Code, RequestID(ctx))
			cookies.Clear(ctx)
			abortWith(ctx, errs.ErrInvalidSession)
			return
		}

		if cookies.Logged(ctx) != "t" {
			cookies.SetLogged(ctx, true)
		}
		ctx.Set(userIDKey, res.UserID)
		ctx.Next(c)
	}
}

// UserID 返回 SessionMiddleware 写入的用户ID
func UserID(ctx *app.RequestContext) (int64, bool) {
	v, ok := ctx.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
