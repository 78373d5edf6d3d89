package model

import (
	"bytes"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"

	errs "user-portal/pkg/common/errors"
	usermodel "user-portal/pkg/core/user/model"
)

// 请求体字段名
const (
	FieldUUID        = "uuid"
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewPassword = "new-password"
)

// Body 原始请求体，字段值未经校验直接交给 validator
type Body map[string]any

// Get returns the raw value of key and whether the key was sent at all.
func (b Body) Get(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

// Value returns the raw value of key, nil when absent.
func (b Body) Value(key string) any {
	return b[key]
}

// ParseBody reads a JSON or urlencoded form body. Form values are always
// strings; JSON values keep their decoded type so type errors surface in
// validation.
func ParseBody(c *app.RequestContext) (Body, error) {
	body := Body{}

	if bytes.HasPrefix(c.ContentType(), []byte("application/json")) {
		raw := c.Request.Body()
		if len(bytes.TrimSpace(raw)) == 0 {
			return body, nil
		}
		var decoded map[string]any
		if err := sonic.Unmarshal(raw, &decoded); err != nil {
			return nil, errs.ErrInvalidBody
		}
		for k, v := range decoded {
			body[k] = v
		}
		return body, nil
	}

	c.PostArgs().VisitAll(func(key, value []byte) {
		body[string(key)] = string(value)
	})
	return body, nil
}

// 响应数据结构
type (
	UserRes struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	PublicUserRes struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	CheckRes struct {
		Type string `json:"type"`
	}

	SessionRes struct {
		Logged bool `json:"logged"`
	}

	MessageRes struct {
		Message string `json:"message"`
	}
)

func NewUserRes(u usermodel.User) UserRes {
	return UserRes{ID: u.ID, Username: u.Username, Email: u.Email}
}

func NewPublicUserRes(u usermodel.PublicUser) PublicUserRes {
	return PublicUserRes{ID: u.ID, Username: u.Username}
}
