// ----------- pkg/web/handler/user_handler.go -----------
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

// UserHandler 需要登录的用户接口，挂在 SessionMiddleware 之后
type UserHandler struct {
	users   *service.UserService
	cookies *middleware.Cookies
}

func NewUserHandler(users *service.UserService, cookies *middleware.Cookies) *UserHandler {
	return &UserHandler{users: users, cookies: cookies}
}

// Me GET /api/users
func (h *UserHandler) Me(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.users.Me(ctx, userID)
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.NewUserRes(user))
}

// Get GET /api/users/:id
func (h *UserHandler) Get(ctx context.Context, c *app.RequestContext) {
	user, err := h.users.GetPublic(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.NewPublicUserRes(user))
}

// ChangeUsername PUT /api/users/username
func (h *UserHandler) ChangeUsername(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return
	}

	user, err := h.users.ChangeUsername(ctx, userID, body.Value(model.FieldUsername))
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.NewUserRes(user))
}

// ChangeEmail PUT /api/users/email
func (h *UserHandler) ChangeEmail(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return
	}

	user, err := h.users.ChangeEmail(ctx, userID, body.Value(model.FieldEmail))
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.NewUserRes(user))
}

// ChangePassword PUT /api/users/password
// 旧令牌随密码一起失效，当前客户端拿到新令牌
func (h *UserHandler) ChangePassword(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return
	}

	token, err := h.users.ChangePassword(ctx, userID,
		body.Value(model.FieldPassword),
		body.Value(model.FieldNewPassword),
	)
	if err != nil {
		respondError(c, err, errs.ErrChangePassword)
		return
	}

	h.cookies.SetSession(c, token)
	c.JSON(http.StatusOK, model.MessageRes{Message: "password changed"})
}

// Delete DELETE /api/users
func (h *UserHandler) Delete(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.users.Delete(ctx, userID); err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, model.MessageRes{Message: "user deleted"})
}
