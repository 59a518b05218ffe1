package service

import (
	"sys_admin_go/internal/model"
	"sys_admin_go/internal/repository"
	"sys_admin_go/pkg/log"
)

// MenuService 提供按用户聚合的菜单树与权限码查询。
type MenuService interface {
	GetMenus(userID uint) ([]*model.SysMenuNode, error)
	GetPerms(userID uint) ([]string, error)
}

type menuService struct {
	userRepo repository.UserRepository
	menuRepo repository.MenuRepository
}

// NewMenuService 创建 MenuService。
func NewMenuService(userRepo repository.UserRepository, menuRepo repository.MenuRepository) MenuService {
	return &menuService{userRepo: userRepo, menuRepo: menuRepo}
}

// GetMenus 返回用户通过角色可见的菜单，组装成树。
// 实现采用两遍扫描：
// 1. 第一遍创建所有节点并放入 map（menuID -> node）
// 2. 第二遍按 ParentID 把子节点挂到父节点上
func (s *menuService) GetMenus(userID uint) ([]*model.SysMenuNode, error) {
	if s.userRepo == nil || s.menuRepo == nil {
		return nil, ErrInternal
	}

	roleIDs, err := s.userRepo.RoleIDsOf(userID)
	if err != nil {
		log.Errorf("GetMenus: failed to query roles of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	menus, err := s.menuRepo.FindByRoleIDs(roleIDs)
	if err != nil {
		log.Errorf("GetMenus: failed to query menus of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	nodes := make(map[uint]*model.SysMenuNode, len(menus))
	for _, menu := range menus {
		nodes[menu.ID] = &model.SysMenuNode{
			SysMenu:  menu,
			Children: []*model.SysMenuNode{},
		}
	}

	tree := make([]*model.SysMenuNode, 0)
	for _, menu := range menus {
		node := nodes[menu.ID]
		if menu.ParentID != 0 {
			if parent, ok := nodes[menu.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		// 父节点不可见或为根时，统一作为根节点返回，避免节点丢失。
		tree = append(tree, node)
	}
	return tree, nil
}

// GetPerms 返回用户持有的全部权限码（扁平、去重）。
func (s *menuService) GetPerms(userID uint) ([]string, error) {
	if s.userRepo == nil || s.menuRepo == nil {
		return nil, ErrInternal
	}

	roleIDs, err := s.userRepo.RoleIDsOf(userID)
	if err != nil {
		log.Errorf("GetPerms: failed to query roles of user %d: %v", userID, err)
		return nil, ErrInternal
	}

	perms, err := s.menuRepo.PermsByRoleIDs(roleIDs)
	if err != nil {
		log.Errorf("GetPerms: failed to query perms of user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return perms, nil
}
