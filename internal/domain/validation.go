package domain

import (
	"errors"
	"regexp"
	"strings"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrEmailTooLong = errors.New("email address too long")
)

// MaxEmailLength RFC 5322 邮箱地址最大长度
const MaxEmailLength = 254

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail 验证邮箱格式
//
// 只做格式与长度校验，不做大小写归一化（比较按原样进行）。
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// AllFieldsPresent 判断所有字段去除首尾空白后是否均非空
func AllFieldsPresent(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}
