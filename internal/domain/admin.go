package domain

import "time"

// Admin 管理员账户
//
// 密码以 bcrypt 哈希存储，绝不返回给前端。
// 邮箱唯一性以存储层唯一索引为准（先查后插仅用于友好提示）。
type Admin struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
}
