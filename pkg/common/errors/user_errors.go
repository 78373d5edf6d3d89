// pkg/common/errors/user_errors.go

/*
  - 使用实例
    // 返回给调用方:
    if _, err := v.Username(raw); err != nil {
    	return err // *errors.Error, 带 HTTP 状态码
    }

    // 在 handler 中判断:
    if apiErr, ok := errors.As(err); ok {
    	c.JSON(apiErr.Status, apiErr.Body())
    }
*/
package errors

import (
	"fmt"
	"net/http"
)

// Error 面向调用方的结构化错误：状态码 + 错误码 + 描述
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Is matches by code so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Body 统一的错误响应体
func (e *Error) Body() map[string]interface{} {
	return map[string]interface{}{"error": e}
}

// WithMessage returns a copy with a different message and the same code.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error   { return New(http.StatusBadRequest, code, message) }
func Unauthorized(code, message string) *Error { return New(http.StatusUnauthorized, code, message) }
func NotFound(code, message string) *Error     { return New(http.StatusNotFound, code, message) }
func Conflict(code, message string) *Error     { return New(http.StatusConflict, code, message) }
func Internal(code, message string) *Error     { return New(http.StatusInternalServerError, code, message) }

// 输入校验错误 (400)
var (
	ErrUserIDType   = BadRequest("INVALID_USER_ID_TYPE", "User id must be a Number or String")
	ErrUserIDFormat = BadRequest("INVALID_USER_ID_FORMAT", "User id isn't a valid String")
	ErrUserIDLength = BadRequest("INVALID_USER_ID_LENGTH", "User id String is null")
	ErrUserIDUnsafe = BadRequest("INVALID_USER_ID_FORMAT", "User id isn't a Safe Integer")

	ErrUsernameType     = BadRequest("INVALID_USER_NAME_TYPE", "User username must be a String")
	ErrUsernameTooShort = BadRequest("INVALID_USER_NAME_LENGTH", "User username is too short")
	ErrUsernameTooLong  = BadRequest("INVALID_USER_NAME_LENGTH", "User username is too long")
	ErrUsernameFormat   = BadRequest("INVALID_USER_NAME_FORMAT", "User username have untrusted characters")

	ErrEmailType   = BadRequest("INVALID_USER_EMAIL_TYPE", "User email must be a String")
	ErrEmailLength = BadRequest("INVALID_USER_EMAIL_LENGTH", "User email is too long")
	ErrEmailFormat = BadRequest("INVALID_USER_EMAIL_FORMAT", "User email is not a valid E-mail")

	ErrPasswordType     = BadRequest("INVALID_USER_PASSWORD_TYPE", "User password must be a String")
	ErrPasswordFormat   = BadRequest("INVALID_USER_PASSWORD_FORMAT", "Password can't start or end with white spaces")
	ErrPasswordTooShort = BadRequest("INVALID_USER_PASSWORD_LENGTH", "User password is too short")
	ErrPasswordTooLong  = BadRequest("INVALID_USER_PASSWORD_LENGTH", "User password is too long")

	// INVALID_HASH_LENGTH 同时用于长度错误和字符集错误
	ErrHashType    = BadRequest("INVALID_HASH_TYPE", "Hash must be a String")
	ErrHashLength  = BadRequest("INVALID_HASH_LENGTH", "Hash have a invalid length")
	ErrHashPattern = BadRequest("INVALID_HASH_LENGTH", "Hash format is invalid")

	ErrUUIDFormat  = BadRequest("INVALID_UUID_FORMAT", "User Unique ID doesn't match any format of unique key")
	ErrTokenType   = BadRequest("INVALID_TOKEN_TYPE", "Token is not a String")
	ErrTokenFormat = BadRequest("INVALID_TOKEN_FORMAT", "Token is not a valid Token")

	ErrMissingData = BadRequest("MISSING_DATA", "Required key is undefined on body")
	ErrInvalidBody = BadRequest("INVALID_BODY", "Request body can't be parsed")
	ErrInvalidID   = BadRequest("INVALID_USER_ID", "Specified ID is invalid")
)

// 冲突 (409)
var (
	ErrExistingUsername = Conflict("EXISTING_USER_NAME", "Username is already taken")
	ErrExistingEmail    = Conflict("EXISTING_USER_EMAIL", "E-mail is already taken")
	ErrSameUsername     = Conflict("SAME_USER_NAME", "Username is the current one")
	ErrSameEmail        = Conflict("SAME_USER_EMAIL", "E-mail is the current one")
)

// 认证失败 (401)
var (
	ErrLoginCredentials = Unauthorized("INVALID_LOGIN_CREDENTIALS", "Invalid Username or E-mail")
	ErrLoginPassword    = Unauthorized("INVALID_LOGIN_PASSWORD", "Invalid Password")
	ErrWrongPassword    = Unauthorized("INVALID_PASSWORD", "Invalid Password")
	ErrTokenSignature   = Unauthorized("INVALID_TOKEN_SIGNATURE", "Token doesn't matches user's password")
	ErrMissingSession   = Unauthorized("MISSING_SESSION", "User's session is unavailable")
	ErrInvalidSession   = Unauthorized("INVALID_SESSION", "Invalid session")
)

// 资源不存在 (404)
var (
	ErrTokenData    = NotFound("INVALID_TOKEN_DATA", "Token data is invalid")
	ErrUserNotFound = NotFound("USER_NOT_FOUND", "User not found")
)

// 内部错误 (500)
var (
	ErrVerifyToken    = Internal("FAILED_VERIFY_TOKEN", "Failed to verify token")
	ErrChangePassword = Internal("FAILED_CHANGE_USER_PASSWORD", "Failed to change user password")
	ErrRegister       = Internal("UNKNOWN", "Failed to register user")
	ErrInternal       = Internal("INTERNAL_ERROR", "internal server error")
)
