package model

import "time"

// SysRole 对应数据库中 sys_role 表。
type SysRole struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Label     string    `gorm:"type:varchar(64)" json:"label"`
	Remark    string    `gorm:"type:varchar(255)" json:"remark"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SysRole) TableName() string {
	return "sys_role"
}

// SysUserRole 是用户与角色的关联表，一个用户可以持有多个角色。
type SysUserRole struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"column:user_id;not null;index" json:"userId"`
	RoleID uint `gorm:"column:role_id;not null;index" json:"roleId"`
}

func (SysUserRole) TableName() string {
	return "sys_user_role"
}

// SysRoleMenu 是角色与菜单的关联表，决定角色能看到哪些菜单和权限。
type SysRoleMenu struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID uint `gorm:"column:role_id;not null;index" json:"roleId"`
	MenuID uint `gorm:"column:menu_id;not null;index" json:"menuId"`
}

func (SysRoleMenu) TableName() string {
	return "sys_role_menu"
}
