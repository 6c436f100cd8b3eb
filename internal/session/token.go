package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken 令牌无效（签名不符、格式错误或非本系统签发）
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken 令牌已过期
	ErrExpiredToken = errors.New("session token expired")
)

// Claims 会话令牌的自定义声明
//
// 令牌只携带会话标识，管理员身份以服务端
// 会话存储中的载荷为准。
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signer 会话令牌签名器
//
// 签名密钥来自启动配置注入，绝不硬编码。
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner 创建令牌签名器
func NewSigner(secret, issuer string) *Signer {
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Sign 为给定会话标识签发令牌
func (s *Signer) Sign(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse 验证令牌并返回其中的会话标识
func (s *Signer) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}
