package service

import (
	"errors"
	"strings"
	"time"

	"sys_admin_go/internal/model"
	"sys_admin_go/internal/repository"
	"sys_admin_go/pkg/hash"
	"sys_admin_go/pkg/log"

	"gorm.io/gorm"
)

// 哨兵错误：对外统一语义，隐藏底层实现细节
var (
	// ErrUserExists 用户名已被占用（新增用户时）
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrDepartmentNotFound 用户引用的部门不存在（悬挂引用）
	ErrDepartmentNotFound = errors.New("department not found")
	// ErrRootUserMissing 超管角色没有对应的用户，属于配置错误
	ErrRootUserMissing = errors.New("root role has no user bound")
	// ErrInvalidCredentials 用户名或密码错误（登录时统一返回，防止用户枚举）
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidCaptcha 验证码不存在、已过期或不匹配
	ErrInvalidCaptcha = errors.New("invalid captcha")
	// ErrInvalidToken 令牌签名不合法或已过期
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)

// CreateUserParams 是新增用户的入参。密码不在其中：所有新用户使用统一初始密码。
type CreateUserParams struct {
	DepartmentID uint   `json:"departmentId" binding:"required"`
	Username     string `json:"username" binding:"required"`
	Name         string `json:"name"`
	NickName     string `json:"nickName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Remark       string `json:"remark"`
	Status       int    `json:"status"`
	RoleIDs      []uint `json:"roles" binding:"required"`
}

// UserInfo 是用户详情视图：用户字段 + 部门名 + 角色 ID 列表，不含任何凭证字段。
type UserInfo struct {
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
	Roles          []uint    `json:"roles"`
}

// PageUserItem 是分页列表中的一行，角色名已从逗号串拆成数组。
type PageUserItem struct {
	repository.PageSearchUserRow
	RoleNames []string `json:"roleNames"`
}

// AccountProfile 是按令牌返回给当前登录者的简要资料。
type AccountProfile struct {
	Name     string `json:"name"`
	NickName string `json:"nickName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Remark   string `json:"remark"`
	HeadImg  string `json:"headImg"`
}

// UserService 封装用户目录的领域逻辑。
type UserService interface {
	Add(params CreateUserParams) error
	Info(userID uint) (*UserInfo, error)
	Page(excludeUID uint, q repository.PageSearchQuery) ([]PageUserItem, int64, error)
	// FindUserByUserName 只查启用状态的账号，查无此人时返回 (nil, nil)。仅供登录使用。
	FindUserByUserName(username string) (*model.SysUser, error)
	FindRootUserId() (uint, error)
	// Forbidden 把用户置为禁用状态，目录中的用户从不硬删除。
	Forbidden(userID uint) error
	AccountInfo(userID uint) (*AccountProfile, error)
}

type userService struct {
	userRepo repository.UserRepository
	deptRepo repository.DepartmentRepository
	// rootRoleID 通过构造函数注入，避免进程级可变全局量。
	rootRoleID   uint
	initPassword string
}

// NewUserService 创建 UserService。
// initPassword 是新增用户的统一初始密码，rootRoleID 是超管角色 ID。
func NewUserService(
	userRepo repository.UserRepository,
	deptRepo repository.DepartmentRepository,
	rootRoleID uint,
	initPassword string,
) UserService {
	return &userService{
		userRepo:     userRepo,
		deptRepo:     deptRepo,
		rootRoleID:   rootRoleID,
		initPassword: initPassword,
	}
}

// Add 新增系统用户。
// 用户行和角色关联在同一事务中写入，任一步失败整体回滚。
func (s *userService) Add(params CreateUserParams) error {
	if s.userRepo == nil {
		return ErrInternal
	}

	exists, err := s.userRepo.ExistsByUsername(params.Username)
	if err != nil {
		log.Errorf("Add: failed to check username %q: %v", params.Username, err)
		return ErrInternal
	}
	if exists {
		return ErrUserExists
	}

	// 初始密码加每用户盐值散列后入库，明文从不落地
	salt := hash.GenerateSalt(32)
	user := &model.SysUser{
		DepartmentID: params.DepartmentID,
		Username:     params.Username,
		Password:     hash.PasswordHash(s.initPassword, salt),
		PSalt:        salt,
		Name:         params.Name,
		NickName:     params.NickName,
		Email:        params.Email,
		Phone:        params.Phone,
		Remark:       params.Remark,
		Status:       params.Status,
	}
	if err := s.userRepo.CreateWithRoles(user, params.RoleIDs); err != nil {
		log.Errorf("Add: failed to create user %q: %v", params.Username, err)
		return ErrInternal
	}
	return nil
}

// Info 查询用户详情，部门引用悬挂时报 ErrDepartmentNotFound 而不是返回残缺数据。
func (s *userService) Info(userID uint) (*UserInfo, error) {
	if s.userRepo == nil || s.deptRepo == nil {
		return nil, ErrInternal
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("Info: failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}

	dept, err := s.deptRepo.FindByID(user.DepartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		log.Errorf("Info: failed to query department %d: %v", user.DepartmentID, err)
		return nil, ErrInternal
	}

	roleIDs, err := s.userRepo.RoleIDsOf(user.ID)
	if err != nil {
		log.Errorf("Info: failed to query roles of user %d: %v", user.ID, err)
		return nil, ErrInternal
	}

	return &UserInfo{
		ID:             user.ID,
		DepartmentID:   user.DepartmentID,
		Username:       user.Username,
		Name:           user.Name,
		NickName:       user.NickName,
		Email:          user.Email,
		Phone:          user.Phone,
		Remark:         user.Remark,
		HeadImg:        user.HeadImg,
		Status:         user.Status,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
		DepartmentName: dept.Name,
		Roles:          roleIDs,
	}, nil
}

// Page 分页搜索用户列表。
// 无论过滤条件如何，结果始终排除超管用户和发起查询的用户自己。
func (s *userService) Page(excludeUID uint, q repository.PageSearchQuery) ([]PageUserItem, int64, error) {
	if s.userRepo == nil {
		return nil, 0, ErrInternal
	}

	rootUserID, err := s.FindRootUserId()
	if err != nil {
		return nil, 0, err
	}

	rows, total, err := s.userRepo.PageSearch([]uint{rootUserID, excludeUID}, q)
	if err != nil {
		log.Errorf("Page: failed to search users: %v", err)
		return nil, 0, ErrInternal
	}

	items := make([]PageUserItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, PageUserItem{
			PageSearchUserRow: row,
			RoleNames:         splitRoleNames(row.RoleNames),
		})
	}
	return items, total, nil
}

func (s *userService) FindUserByUserName(username string) (*model.SysUser, error) {
	if s.userRepo == nil {
		return nil, ErrInternal
	}

	user, err := s.userRepo.FindActiveByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Errorf("FindUserByUserName: failed to query user %q: %v", username, err)
		return nil, ErrInternal
	}
	return user, nil
}

// FindRootUserId 查找持有超管角色的用户 ID，映射缺失视为配置错误。
func (s *userService) FindRootUserId() (uint, error) {
	if s.userRepo == nil {
		return 0, ErrInternal
	}

	uid, err := s.userRepo.RootUserID(s.rootRoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrRootUserMissing
		}
		log.Errorf("FindRootUserId: failed to query root user: %v", err)
		return 0, ErrInternal
	}
	return uid, nil
}

func (s *userService) Forbidden(userID uint) error {
	if s.userRepo == nil {
		return ErrInternal
	}

	if err := s.userRepo.UpdateStatus(userID, model.UserStatusForbidden); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		log.Errorf("Forbidden: failed to update user %d: %v", userID, err)
		return ErrInternal
	}
	return nil
}

func (s *userService) AccountInfo(userID uint) (*AccountProfile, error) {
	if s.userRepo == nil {
		return nil, ErrInternal
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("AccountInfo: failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}

	return &AccountProfile{
		Name:     user.Name,
		NickName: user.NickName,
		Email:    user.Email,
		Phone:    user.Phone,
		Remark:   user.Remark,
		HeadImg:  user.HeadImg,
	}, nil
}

// splitRoleNames 把 GROUP_CONCAT 出来的逗号串拆成数组，并去掉空项。
func splitRoleNames(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
