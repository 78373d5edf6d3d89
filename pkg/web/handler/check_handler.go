package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/service"
	"user-portal/pkg/web/model"
)

// CheckHandler 前端表单的即时校验接口，不访问数据库
type CheckHandler struct {
	users *service.UserService
}

func NewCheckHandler(users *service.UserService) *CheckHandler {
	return &CheckHandler{users: users}
}

// field 取出必填字段，缺失时直接返回 MISSING_DATA
func field(c *app.RequestContext, key string) (any, bool) {
	body, err := model.ParseBody(c)
	if err != nil {
		respondError(c, err, errs.ErrInvalidBody)
		return nil, false
	}
	v, ok := body.Get(key)
	if !ok {
		respondError(c, errs.ErrMissingData.WithMessage("Key '%s' is undefined on body", key), errs.ErrMissingData)
		return nil, false
	}
	return v, true
}

// UUID POST /api/check/uuid
func (h *CheckHandler) UUID(ctx context.Context, c *app.RequestContext) {
	raw, ok := field(c, model.FieldUUID)
	if !ok {
		return
	}
	kind, err := h.users.CheckIdentifier(raw)
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.CheckRes{Type: string(kind)})
}

// Username POST /api/check/username
func (h *CheckHandler) Username(ctx context.Context, c *app.RequestContext) {
	h.check(c, model.FieldUsername, h.users.CheckUsername)
}

// Email POST /api/check/email
func (h *CheckHandler) Email(ctx context.Context, c *app.RequestContext) {
	h.check(c, model.FieldEmail, h.users.CheckEmail)
}

// Password POST /api/check/password
func (h *CheckHandler) Password(ctx context.Context, c *app.RequestContext) {
	h.check(c, model.FieldPassword, h.users.CheckPassword)
}

func (h *CheckHandler) check(c *app.RequestContext, key string, fn func(any) error) {
	raw, ok := field(c, key)
	if !ok {
		return
	}
	if err := fn(raw); err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.CheckRes{Type: key})
}
