// Package keygen 生成不透明的 API 密钥串。
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Prefix 密钥固定文本前缀
const Prefix = "sk-sm-v1-"

// entropyBytes 随机载荷长度，128 位熵
const entropyBytes = 16

// Generate 生成一个新的 API 密钥
//
// 形式为 Prefix + 32 位大写十六进制字符，随机载荷取自
// 加密安全随机源。除随机源外无任何输入或副作用。
func Generate() (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return Prefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}
