package domain

import "time"

// Session 服务端会话记录
//
// 登录成功后创建，绑定管理员身份；登出或过期后销毁。
// AdminID 只是查询键，不拥有管理员记录本身。
type Session struct {
	ID        string    `json:"id"` // 会话标识，随机生成
	AdminID   int64     `json:"adminId"`
	AdminName string    `json:"adminName"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
