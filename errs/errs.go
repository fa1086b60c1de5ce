package errs

import (
	"errors"
	"net/http"
)

// Error 业务错误，携带对应的 HTTP 状态码
// 校验器与服务层只抛出本类型错误，由 api 层统一映射为响应
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Validation 参数校验错误（400）
func Validation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Unauthorized 认证错误（401）
func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// Forbidden 权限错误（403）
func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

// NotFound 记录不存在或不属于当前用户（404）
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

// Conflict 唯一字段冲突（409）
func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Message: message}
}

// As 提取业务错误，非业务错误返回 nil
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsValidation 判断是否为参数校验错误
func IsValidation(err error) bool {
	e := As(err)
	return e != nil && e.Code == http.StatusBadRequest
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	e := As(err)
	return e != nil && e.Code == http.StatusNotFound
}
