package model

import "time"

// 菜单类型：0 目录，1 菜单，2 权限节点。
// 只有权限节点（type=2）的 Perms 字段会被收集进用户的权限码列表。
const (
	MenuTypeDirectory = 0
	MenuTypeMenu      = 1
	MenuTypePerm      = 2
)

// SysMenu 对应数据库中 sys_menu 表，以 ParentID 组成树形结构。
type SysMenu struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  uint      `gorm:"column:parent_id" json:"parentId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Router    string    `gorm:"type:varchar(255)" json:"router"`
	Perms     string    `gorm:"type:varchar(255)" json:"perms"`
	Type      int       `gorm:"type:tinyint;default:0" json:"type"`
	Icon      string    `gorm:"type:varchar(255)" json:"icon"`
	OrderNum  int       `gorm:"column:order_num;default:0" json:"orderNum"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SysMenu) TableName() string {
	return "sys_menu"
}

// SysMenuNode 是 SysMenu 的树形视图，供前端渲染菜单使用。
type SysMenuNode struct {
	SysMenu
	Children []*SysMenuNode `json:"children"`
}
