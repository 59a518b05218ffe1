package repository

import (
	"fmt"
	"time"

	"sys_admin_go/internal/model"

	"gorm.io/gorm"
)

// PageSearchQuery 是用户分页查询的过滤条件。
// 各字符串字段按“包含”匹配，为空时等价于不过滤；DepartmentIDs 为空表示不限部门。
type PageSearchQuery struct {
	DepartmentIDs []uint
	Name          string
	Username      string
	Phone         string
	Remark        string
	Page          int
	Limit         int
}

// PageSearchUserRow 是分页查询的一行结果，附带部门名和逗号拼接的角色名。
type PageSearchUserRow struct {
	ID             uint      `json:"id"`
	DepartmentID   uint      `json:"departmentId"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	NickName       string    `json:"nickName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Remark         string    `json:"remark"`
	HeadImg        string    `json:"headImg"`
	Status         int       `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	DepartmentName string    `json:"departmentName"`
	RoleNames      string    `json:"-"`
}

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	FindByID(userID uint) (*model.SysUser, error)
	// FindActiveByUsername 只命中启用状态的账号，供登录查询使用。
	FindActiveByUsername(username string) (*model.SysUser, error)
	ExistsByUsername(username string) (bool, error)
	// CreateWithRoles 在同一事务中写入用户行和用户-角色关联，要么全部提交要么全部回滚。
	CreateWithRoles(user *model.SysUser, roleIDs []uint) error
	UpdateStatus(userID uint, status int) error
	RoleIDsOf(userID uint) ([]uint, error)
	// RootUserID 查找持有 rootRoleID 角色的用户 ID，映射缺失时返回 gorm.ErrRecordNotFound。
	RootUserID(rootRoleID uint) (uint, error)
	// PageSearch 联查部门与角色做分页搜索，total 反映过滤条件而非分页窗口。
	PageSearch(excludeIDs []uint, q PageSearchQuery) ([]PageSearchUserRow, int64, error)
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 根据ID查找用户。
func (r *userRepository) FindByID(userID uint) (*model.SysUser, error) {
	var user model.SysUser
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByUsername 根据用户名查找已启用的用户。
func (r *userRepository) FindActiveByUsername(username string) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.Where("username = ? AND status = ?", username, model.UserStatusEnabled).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername 判断用户名是否已被占用。
func (r *userRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.SysUser{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithRoles 创建用户并分配角色，两步在同一事务内完成。
func (r *userRepository) CreateWithRoles(user *model.SysUser, roleIDs []uint) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		links := make([]model.SysUserRole, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			links = append(links, model.SysUserRole{UserID: user.ID, RoleID: roleID})
		}
		return tx.Create(&links).Error
	})
}

// UpdateStatus 更新用户状态位。
func (r *userRepository) UpdateStatus(userID uint, status int) error {
	tx := r.db.Model(&model.SysUser{}).
		Where("id = ?", userID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RoleIDsOf 返回用户持有的全部角色 ID。
func (r *userRepository) RoleIDsOf(userID uint) ([]uint, error) {
	var roleIDs []uint
	err := r.db.Model(&model.SysUserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}

// RootUserID 查找超管角色对应的用户 ID。
func (r *userRepository) RootUserID(rootRoleID uint) (uint, error) {
	var link model.SysUserRole
	err := r.db.Where("role_id = ?", rootRoleID).First(&link).Error
	if err != nil {
		return 0, err
	}
	return link.UserID, nil
}

// PageSearch 分页搜索用户。
// 过滤条件全部走参数绑定；空的子串条件退化为 LIKE '%%'，与“不过滤”等价。
func (r *userRepository) PageSearch(excludeIDs []uint, q PageSearchQuery) ([]PageSearchUserRow, int64, error) {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	base := func() *gorm.DB {
		tx := r.db.Table("sys_user AS user").
			Joins("INNER JOIN sys_department AS dept ON dept.id = user.department_id").
			Joins("INNER JOIN sys_user_role AS user_role ON user_role.user_id = user.id").
			Joins("INNER JOIN sys_role AS role ON role.id = user_role.role_id").
			Where("user.name LIKE ?", "%"+q.Name+"%").
			Where("user.username LIKE ?", "%"+q.Username+"%").
			Where("user.phone LIKE ?", "%"+q.Phone+"%").
			Where("user.remark LIKE ?", "%"+q.Remark+"%")
		if len(excludeIDs) > 0 {
			tx = tx.Where("user.id NOT IN ?", excludeIDs)
		}
		if len(q.DepartmentIDs) > 0 {
			tx = tx.Where("user.department_id IN ?", q.DepartmentIDs)
		}
		return tx
	}

	var total int64
	if err := base().Distinct("user.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []PageSearchUserRow{}, 0, nil
	}

	var rows []PageSearchUserRow
	err := base().
		Select("user.id, user.department_id, user.username, user.name, user.nick_name, " +
			"user.email, user.phone, user.remark, user.head_img, user.status, " +
			"user.created_at, user.updated_at, " +
			"dept.name AS department_name, GROUP_CONCAT(role.name) AS role_names").
		Group("user.id").
		Order("user.updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
