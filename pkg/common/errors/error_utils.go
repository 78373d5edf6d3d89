package errors

import (
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// region 错误处理工具函数

// As 从错误链中取出 *Error
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Public 包装成 Hertz 公共错误，可直接暴露给客户端
func Public(e *Error) *hzte.Error {
	return hzte.New(e, hzte.ErrorTypePublic, e.Code)
}

// Private 包装成 Hertz 私有错误，只进日志
// 参数说明：
//   - rawErr: 原始错误
//   - meta: 附加的上下文信息（如用户ID）
func Private(rawErr error, meta interface{}) *hzte.Error {
	return hzte.New(rawErr, hzte.ErrorTypePrivate, meta)
}

// Resolve 将任意错误转为响应错误，未知错误统一为 ErrInternal
func Resolve(err error) *Error {
	if apiErr, ok := As(err); ok {
		return apiErr
	}
	return ErrInternal
}

// endregion
