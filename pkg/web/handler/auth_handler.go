package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/service"
	"user-portal/pkg/web/middleware"
	"user-portal/pkg/web/model"
)

type AuthHandler struct {
	users   *service.UserService
	cookies *middleware.Cookies
}

func NewAuthHandler(users *service.UserService, cookies *middleware.Cookies) *AuthHandler {
	return &AuthHandler{users: users, cookies: cookies}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return
	}

	s, err := h.users.Register(ctx,
		body.Value(model.FieldUsername),
		body.Value(model.FieldEmail),
		body.Value(model.FieldPassword),
	)
	if err != nil {
		respondError(c, err, errs.ErrRegister)
		return
	}

	h.cookies.SetSession(c, s.Token)
	c.JSON(http.StatusCreated, model.NewUserRes(s.User))
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return
	}

	s, err := h.users.Login(ctx, body.Value(model.FieldUUID), body.Value(model.FieldPassword))
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}

	h.cookies.SetSession(c, s.Token)
	c.JSON(http.StatusOK, model.NewUserRes(s.User))
}

// Exit POST /api/auth/exit
func (h *AuthHandler) Exit(ctx context.Context, c *app.RequestContext) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, model.MessageRes{Message: "logged out"})
}

// Session GET /api/auth/session
// 同步 logged Cookie，并清除失效的 session_token
func (h *AuthHandler) Session(ctx context.Context, c *app.RequestContext) {
	token := h.cookies.Token(c)
	if token == "" {
		if h.cookies.Logged(c) != "f" {
			h.cookies.SetLogged(c, false)
		}
		c.JSON(http.StatusOK, model.SessionRes{Logged: false})
		return
	}

	res, err := h.users.Authenticate(ctx, token)
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}

	if !res.Logged {
		h.cookies.ClearToken(c)
	}
	want := "f"
	if res.Logged {
		want = "t"
	}
	if h.cookies.Logged(c) != want {
		h.cookies.SetLogged(c, res.Logged)
	}
	c.JSON(http.StatusOK, model.SessionRes{Logged: res.Logged})
}
