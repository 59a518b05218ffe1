package model

import "time"

// SysDepartment 对应数据库中 sys_department 表，被用户以多对一方式引用。
type SysDepartment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  uint      `gorm:"column:parent_id" json:"parentId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	OrderNum  int       `gorm:"column:order_num;default:0" json:"orderNum"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SysDepartment) TableName() string {
	return "sys_department"
}
