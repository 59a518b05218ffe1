package model

import "time"

// SysLoginLog 对应数据库中 sys_login_log 表，记录每次成功登录的来源信息。
type SysLoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"userId"`
	IP        string    `gorm:"type:varchar(64)" json:"ip"`
	UA        string    `gorm:"column:ua;type:varchar(512)" json:"ua"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (SysLoginLog) TableName() string {
	return "sys_login_log"
}
