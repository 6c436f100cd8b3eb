package domain

import "time"

// User 表示领取密钥的终端用户
//
// 每个用户独占一把 API 密钥（APIKeyID 唯一索引），
// 删除用户时必须级联删除其密钥，保持引用一致。
type User struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Firstname string `json:"firstname" gorm:"type:varchar(100);not null"`
	Lastname  string `json:"lastname" gorm:"type:varchar(100);not null"`
	Email     string `json:"email" gorm:"type:varchar(255);not null"`
	APIKeyID  int64  `json:"apikeyId" gorm:"column:apikey_id;uniqueIndex;not null"`
}

// UserWithKey 仪表盘行：用户与其密钥元数据的 JOIN 结果
type UserWithKey struct {
	ID        int64      `json:"id"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	Email     string     `json:"email"`
	APIKey    string     `json:"apiKey"`
	Status    KeyStatus  `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiredAt *time.Time `json:"expiredAt,omitempty"`
}
