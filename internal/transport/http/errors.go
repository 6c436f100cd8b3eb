package httptransport

import (
	"errors"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/service"
)

// 通用响应消息
const (
	MsgInternalError = "服务器内部错误，请稍后重试"
	MsgUnauthorized  = "未授权访问"
	MsgInvalidParams = "请求参数错误"
)

// errorMessage 将业务错误映射为对外消息，未知错误返回空串
func errorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return "姓名、邮箱和密码均为必填项"
	case errors.Is(err, auth.ErrInvalidEmail):
		return "邮箱格式不正确"
	case errors.Is(err, auth.ErrEmailExists):
		return "该邮箱已被注册"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "邮箱或密码错误"
	case errors.Is(err, service.ErrMissingFields):
		return "firstname、lastname 和 email 均为必填项"
	case errors.Is(err, service.ErrMissingAPIKey):
		return "API Key 不能为空"
	case errors.Is(err, service.ErrDuplicateAPIKey):
		return "API Key 已存在"
	case errors.Is(err, service.ErrUserNotFound):
		return "用户不存在"
	}
	return ""
}
