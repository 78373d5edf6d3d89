package handler

import (
	"github.com/cloudwego/hertz/pkg/app"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/web/middleware"
)

// 统一错误响应方法
// 业务错误原样返回；其他错误只写日志，客户端收到 fallback
func respondError(c *app.RequestContext, err error, fallback *errs.Error) {
	if apiErr, ok := errs.As(err); ok {
		if apiErr.Status >= 500 {
			_ = c.Error(errs.Private(err, c.FullPath()))
		} else {
			_ = c.Error(errs.Public(apiErr))
		}
		c.JSON(apiErr.Status, apiErr.Body())
		return
	}

	_ = c.Error(errs.Private(err, c.FullPath()))
	c.JSON(fallback.Status, fallback.Body())
}

// currentUser 取出 SessionMiddleware 写入的用户ID
func currentUser(c *app.RequestContext) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(errs.ErrMissingSession.Status, errs.ErrMissingSession.Body())
	}
	return id, ok
}
