package repository

import (
	"sys_admin_go/internal/model"

	"gorm.io/gorm"
)

// MenuRepository 接口定义了菜单数据的查询操作。
type MenuRepository interface {
	// FindByRoleIDs 返回这批角色可见的全部菜单行，按 order_num 升序。
	FindByRoleIDs(roleIDs []uint) ([]model.SysMenu, error)
	// PermsByRoleIDs 返回这批角色持有的权限码（type=2 且 perms 非空），已去重。
	PermsByRoleIDs(roleIDs []uint) ([]string, error)
}

type menuRepository struct {
	db *gorm.DB
}

// NewMenuRepository 创建一个新的 MenuRepository 实例。
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) FindByRoleIDs(roleIDs []uint) ([]model.SysMenu, error) {
	if len(roleIDs) == 0 {
		return []model.SysMenu{}, nil
	}
	var menus []model.SysMenu
	err := r.db.Model(&model.SysMenu{}).
		Distinct("sys_menu.*").
		Joins("INNER JOIN sys_role_menu ON sys_role_menu.menu_id = sys_menu.id").
		Where("sys_role_menu.role_id IN ?", roleIDs).
		Order("sys_menu.order_num ASC").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *menuRepository) PermsByRoleIDs(roleIDs []uint) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}
	var perms []string
	err := r.db.Model(&model.SysMenu{}).
		Distinct().
		Joins("INNER JOIN sys_role_menu ON sys_role_menu.menu_id = sys_menu.id").
		Where("sys_role_menu.role_id IN ?", roleIDs).
		Where("sys_menu.type = ?", model.MenuTypePerm).
		Where("sys_menu.perms <> ''").
		Pluck("sys_menu.perms", &perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
