package model

import "time"

// 用户状态值：1 启用，0 禁用。禁用的账号不能登录，也不会被登录查询命中。
const (
	UserStatusForbidden = 0
	UserStatusEnabled   = 1
)

// SysUser 对应数据库中 sys_user 表。
// Password 和 PSalt 永远不参与 JSON 序列化，避免凭证外泄。
type SysUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DepartmentID uint      `gorm:"column:department_id;not null" json:"departmentId"`
	Username     string    `gorm:"type:varchar(255);not null;unique" json:"username"`
	Password     string    `gorm:"type:varchar(255);not null" json:"-"`
	PSalt        string    `gorm:"column:psalt;type:varchar(32);not null" json:"-"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	NickName     string    `gorm:"column:nick_name;type:varchar(255)" json:"nickName"`
	Email        string    `gorm:"type:varchar(255)" json:"email"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	Remark       string    `gorm:"type:varchar(255)" json:"remark"`
	HeadImg      string    `gorm:"column:head_img;type:varchar(512)" json:"headImg"`
	Status       int       `gorm:"type:tinyint;default:1" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (SysUser) TableName() string {
	return "sys_user"
}
