package domain

import "time"

// KeyStatus API密钥状态
type KeyStatus string

const (
	KeyStatusActive   KeyStatus = "active"
	KeyStatusInactive KeyStatus = "inactive"
)

// APIKey API密钥实体
//
// 规范形态：密钥串 + 状态 + 创建/过期时间。
// 密钥串全局唯一，由存储层唯一索引保证。
type APIKey struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Value     string     `json:"apiKey" gorm:"column:api_key;type:varchar(64);uniqueIndex;not null"` // 完整密钥串，形如 sk-sm-v1-<32位大写HEX>
	Status    KeyStatus  `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiredAt *time.Time `json:"expiredAt,omitempty"` // 过期时间（可选）
}

// IsUsable 判断密钥在给定时间点是否可用
//
// 可用 = 状态为 active 且未到达过期时间。
// 存储层只是被动记录状态与过期时间，是否可用由调用方在此判断。
func (k *APIKey) IsUsable(now time.Time) bool {
	if k.Status != KeyStatusActive {
		return false
	}
	if k.ExpiredAt != nil && !now.Before(*k.ExpiredAt) {
		return false
	}
	return true
}
