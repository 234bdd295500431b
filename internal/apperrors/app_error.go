package apperrors

import (
	"net/http"
)

// AppError 自定义错误类型
// MessageID 是 i18n 的消息键，由错误中间件本地化；Message 是兜底文案
type AppError struct {
	Code      int
	MessageID string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, messageID, message string) *AppError {
	return &AppError{
		Code:      code,
		MessageID: messageID,
		Message:   message,
	}
}

// InvalidURLError 目标 URL 非法
func InvalidURLError() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_url", "Invalid URL format")
}

// InvalidCodeError 自定义短码非法（长度或字符集不符合要求）
func InvalidCodeError() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_code", "Custom short code must be 3-20 characters of letters, digits, hyphen or underscore")
}

// InvalidDateError 过期时间格式非法
func InvalidDateError() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_date", "Invalid expiresAt date format. Use ISO 8601 format")
}

// CodeTakenError 自定义短码已被占用
func CodeTakenError() *AppError {
	return WithCode(http.StatusBadRequest, "error.code_taken", "Custom short code is already taken. Please choose another")
}

// GenerationExhaustedError 随机短码重试次数用尽（瞬时故障，调用方可整体重试）
func GenerationExhaustedError() *AppError {
	return WithCode(http.StatusInternalServerError, "error.generation_exhausted", "Failed to generate a unique short code")
}

// RateLimitedError 触发限流
func RateLimitedError() *AppError {
	return WithCode(http.StatusTooManyRequests, "error.rate_limited", "Too many requests. Please try again later")
}

// NotFoundError 短链不存在
func NotFoundError() *AppError {
	return WithCode(http.StatusNotFound, "error.not_found", "Short URL not found")
}

// LinkExpiredError 短链已过期
func LinkExpiredError() *AppError {
	return WithCode(http.StatusGone, "error.link_expired", "Short URL has expired")
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, "", message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_request", "Parameter verification failed")
}

// BusinessError 封装业务逻辑错误（通用）
func BusinessError(code int, message string) *AppError {
	return WithCode(code, "", message)
}

// SystemError 封装系统内部错误（存储故障等，对调用方不透出细节）
func SystemError(cause error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		MessageID: "error.system",
		Message:   "Internal Server Error",
		Cause:     cause,
	}
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "error.system", "Internal Server Error")
}
