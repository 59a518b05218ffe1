package service

import (
	"errors"
	"os"
	"testing"

	"sys_admin_go/internal/model"
	"sys_admin_go/internal/repository"
	"sys_admin_go/pkg/hash"
	applog "sys_admin_go/pkg/log"

	"gorm.io/gorm"
)

type fakeUserRepo struct {
	findByIDFn             func(userID uint) (*model.SysUser, error)
	findActiveByUsernameFn func(username string) (*model.SysUser, error)
	existsByUsernameFn     func(username string) (bool, error)
	createWithRolesFn      func(user *model.SysUser, roleIDs []uint) error
	updateStatusFn         func(userID uint, status int) error
	roleIDsOfFn            func(userID uint) ([]uint, error)
	rootUserIDFn           func(rootRoleID uint) (uint, error)
	pageSearchFn           func(excludeIDs []uint, q repository.PageSearchQuery) ([]repository.PageSearchUserRow, int64, error)
}

func (f *fakeUserRepo) FindByID(userID uint) (*model.SysUser, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(userID)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindActiveByUsername(username string) (*model.SysUser, error) {
	if f.findActiveByUsernameFn != nil {
		return f.findActiveByUsernameFn(username)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) ExistsByUsername(username string) (bool, error) {
	if f.existsByUsernameFn != nil {
		return f.existsByUsernameFn(username)
	}
	return false, nil
}
func (f *fakeUserRepo) CreateWithRoles(user *model.SysUser, roleIDs []uint) error {
	if f.createWithRolesFn != nil {
		return f.createWithRolesFn(user, roleIDs)
	}
	return nil
}
func (f *fakeUserRepo) UpdateStatus(userID uint, status int) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(userID, status)
	}
	return nil
}
func (f *fakeUserRepo) RoleIDsOf(userID uint) ([]uint, error) {
	if f.roleIDsOfFn != nil {
		return f.roleIDsOfFn(userID)
	}
	return []uint{}, nil
}
func (f *fakeUserRepo) RootUserID(rootRoleID uint) (uint, error) {
	if f.rootUserIDFn != nil {
		return f.rootUserIDFn(rootRoleID)
	}
	return 0, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) PageSearch(excludeIDs []uint, q repository.PageSearchQuery) ([]repository.PageSearchUserRow, int64, error) {
	if f.pageSearchFn != nil {
		return f.pageSearchFn(excludeIDs, q)
	}
	return []repository.PageSearchUserRow{}, 0, nil
}

type fakeDeptRepo struct {
	findByIDFn func(deptID uint) (*model.SysDepartment, error)
}

func (f *fakeDeptRepo) FindByID(deptID uint) (*model.SysDepartment, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(deptID)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeMenuRepo struct {
	findByRoleIDsFn  func(roleIDs []uint) ([]model.SysMenu, error)
	permsByRoleIDsFn func(roleIDs []uint) ([]string, error)
}

func (f *fakeMenuRepo) FindByRoleIDs(roleIDs []uint) ([]model.SysMenu, error) {
	if f.findByRoleIDsFn != nil {
		return f.findByRoleIDsFn(roleIDs)
	}
	return []model.SysMenu{}, nil
}
func (f *fakeMenuRepo) PermsByRoleIDs(roleIDs []uint) ([]string, error) {
	if f.permsByRoleIDsFn != nil {
		return f.permsByRoleIDsFn(roleIDs)
	}
	return []string{}, nil
}

func TestMain(m *testing.M) {
	// service 里有 log.Errorf，初始化一下避免 nil panic
	applog.Init("error", "console", "")
	code := m.Run()
	os.Exit(code)
}

const (
	testRootRoleID   = uint(1)
	testInitPassword = "123456"
)

func newUserService(userRepo *fakeUserRepo, deptRepo *fakeDeptRepo) UserService {
	return NewUserService(userRepo, deptRepo, testRootRoleID, testInitPassword)
}

func TestUserService_Add_Success(t *testing.T) {
	var created *model.SysUser
	var createdRoles []uint
	repo := &fakeUserRepo{
		existsByUsernameFn: func(username string) (bool, error) { return false, nil },
		createWithRolesFn: func(user *model.SysUser, roleIDs []uint) error {
			user.ID = 10
			created = user
			createdRoles = roleIDs
			return nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	err := svc.Add(CreateUserParams{
		DepartmentID: 2,
		Username:     "alice",
		Name:         "Alice",
		Status:       model.UserStatusEnabled,
		RoleIDs:      []uint{3, 4},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if len(createdRoles) != 2 {
		t.Fatalf("expected 2 role links, got %v", createdRoles)
	}

	// 入库口令必须是 初始密码+盐值 的散列，绝不是明文
	if created.Password == testInitPassword {
		t.Fatal("password stored in plaintext")
	}
	if created.PSalt == "" {
		t.Fatal("expected a generated salt")
	}
	if created.Password != hash.PasswordHash(testInitPassword, created.PSalt) {
		t.Fatal("stored password does not match hash(initPassword + salt)")
	}
}

func TestUserService_Add_Duplicate(t *testing.T) {
	createCalled := false
	repo := &fakeUserRepo{
		existsByUsernameFn: func(username string) (bool, error) { return true, nil },
		createWithRolesFn: func(user *model.SysUser, roleIDs []uint) error {
			createCalled = true
			return nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	err := svc.Add(CreateUserParams{Username: "alice", RoleIDs: []uint{3}})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got: %v", err)
	}
	if createCalled {
		t.Fatal("duplicate username must not reach the credential store")
	}
}

func TestUserService_Info_Success(t *testing.T) {
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint) (*model.SysUser, error) {
			return &model.SysUser{ID: userID, DepartmentID: 2, Username: "alice", Password: "secret", PSalt: "salt"}, nil
		},
		roleIDsOfFn: func(userID uint) ([]uint, error) { return []uint{3, 4}, nil },
	}
	dept := &fakeDeptRepo{
		findByIDFn: func(deptID uint) (*model.SysDepartment, error) {
			return &model.SysDepartment{ID: deptID, Name: "研发部"}, nil
		},
	}
	svc := newUserService(repo, dept)

	info, err := svc.Info(7)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.DepartmentName != "研发部" {
		t.Fatalf("unexpected department name: %q", info.DepartmentName)
	}
	if len(info.Roles) != 2 {
		t.Fatalf("unexpected roles: %v", info.Roles)
	}
}

func TestUserService_Info_UserNotFound(t *testing.T) {
	svc := newUserService(&fakeUserRepo{}, &fakeDeptRepo{})

	if _, err := svc.Info(7); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

// 部门引用悬挂时必须报错，而不是返回残缺数据。
func TestUserService_Info_DanglingDepartment(t *testing.T) {
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint) (*model.SysUser, error) {
			return &model.SysUser{ID: userID, DepartmentID: 99, Username: "alice"}, nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	if _, err := svc.Info(7); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got: %v", err)
	}
}

// 无论过滤条件如何，超管用户和查询发起者都要被排除。
func TestUserService_Page_ExcludesRootAndRequester(t *testing.T) {
	var gotExcludes []uint
	repo := &fakeUserRepo{
		rootUserIDFn: func(rootRoleID uint) (uint, error) {
			if rootRoleID != testRootRoleID {
				t.Fatalf("unexpected root role id: %d", rootRoleID)
			}
			return 5, nil
		},
		pageSearchFn: func(excludeIDs []uint, q repository.PageSearchQuery) ([]repository.PageSearchUserRow, int64, error) {
			gotExcludes = excludeIDs
			return []repository.PageSearchUserRow{
				{ID: 3, Username: "bob", RoleNames: "运营,测试"},
			}, 1, nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	items, total, err := svc.Page(8, repository.PageSearchQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if len(gotExcludes) != 2 || gotExcludes[0] != 5 || gotExcludes[1] != 8 {
		t.Fatalf("expected excludes [5 8], got %v", gotExcludes)
	}
	if len(items) != 1 || len(items[0].RoleNames) != 2 || items[0].RoleNames[0] != "运营" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestUserService_Page_RootUserMissing(t *testing.T) {
	svc := newUserService(&fakeUserRepo{}, &fakeDeptRepo{})

	if _, _, err := svc.Page(8, repository.PageSearchQuery{}); !errors.Is(err, ErrRootUserMissing) {
		t.Fatalf("expected ErrRootUserMissing, got: %v", err)
	}
}

func TestUserService_FindUserByUserName_NotFoundIsNil(t *testing.T) {
	svc := newUserService(&fakeUserRepo{}, &fakeDeptRepo{})

	user, err := svc.FindUserByUserName("ghost")
	if err != nil {
		t.Fatalf("FindUserByUserName() error = %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestUserService_Forbidden(t *testing.T) {
	var gotStatus = -1
	repo := &fakeUserRepo{
		updateStatusFn: func(userID uint, status int) error {
			gotStatus = status
			return nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	if err := svc.Forbidden(7); err != nil {
		t.Fatalf("Forbidden() error = %v", err)
	}
	if gotStatus != model.UserStatusForbidden {
		t.Fatalf("expected status %d, got %d", model.UserStatusForbidden, gotStatus)
	}
}

func TestUserService_AccountInfo_OmitsCredentials(t *testing.T) {
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint) (*model.SysUser, error) {
			return &model.SysUser{ID: userID, Username: "alice", Name: "Alice", Password: "secret", PSalt: "salt"}, nil
		},
	}
	svc := newUserService(repo, &fakeDeptRepo{})

	profile, err := svc.AccountInfo(7)
	if err != nil {
		t.Fatalf("AccountInfo() error = %v", err)
	}
	if profile.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
