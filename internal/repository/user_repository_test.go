package repository

import (
	"errors"
	"testing"
	"time"

	"sys_admin_go/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error: %v", err)
	}

	return gdb, mock
}

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := newMockDB(t)
	return NewUserRepository(gdb), mock
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "department_id", "username", "password", "psalt", "name", "nick_name",
		"email", "phone", "remark", "head_img", "status", "created_at", "updated_at",
	}).AddRow(1, 2, "alice", "hashed", "salt", "Alice", "ali", "a@b.c", "13800000000", "", "", 1, now, now)
}

func TestUserRepository_FindActiveByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_user` WHERE username = \\? AND status = \\? ORDER BY .* LIMIT \\?").
		WithArgs("alice", model.UserStatusEnabled, 1).
		WillReturnRows(userRows())

	u, err := repo.FindActiveByUsername("alice")
	if err != nil {
		t.Fatalf("FindActiveByUsername() error: %v", err)
	}
	if u == nil || u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindActiveByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_user` WHERE username = \\? AND status = \\? ORDER BY .* LIMIT \\?").
		WithArgs("missing", model.UserStatusEnabled, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	u, err := repo.FindActiveByUsername("missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got: %+v", u)
	}
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sys_user` WHERE username = \\?").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	exists, err := repo.ExistsByUsername("alice")
	if err != nil {
		t.Fatalf("ExistsByUsername() error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists = true")
	}
}

func TestUserRepository_CreateWithRoles(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sys_user`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `sys_user_role`").WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	u := &model.SysUser{DepartmentID: 2, Username: "alice", Password: "hashed", PSalt: "salt", Status: 1}
	if err := repo.CreateWithRoles(u, []uint{3, 4}); err != nil {
		t.Fatalf("CreateWithRoles() error: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("expected user ID 7 after insert, got %d", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// 角色关联写入失败时整个事务必须回滚，不能留下孤立的用户行。
func TestUserRepository_CreateWithRoles_RollbackOnRoleFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sys_user`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `sys_user_role`").WillReturnError(errors.New("role insert failed"))
	mock.ExpectRollback()

	u := &model.SysUser{DepartmentID: 2, Username: "alice", Password: "hashed", PSalt: "salt", Status: 1}
	if err := repo.CreateWithRoles(u, []uint{3}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateStatus_RowsAffectedZero(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sys_user` SET .* WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(99, model.UserStatusForbidden)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestUserRepository_RootUserID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_user_role` WHERE role_id = \\? ORDER BY .* LIMIT \\?").
		WithArgs(uint(1), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role_id"}).AddRow(1, 5, 1))

	uid, err := repo.RootUserID(1)
	if err != nil {
		t.Fatalf("RootUserID() error: %v", err)
	}
	if uid != 5 {
		t.Fatalf("expected root user id 5, got %d", uid)
	}
}

func TestUserRepository_RootUserID_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_user_role` WHERE role_id = \\? ORDER BY .* LIMIT \\?").
		WithArgs(uint(1), 1).
		WillReturnError(gorm.ErrRecordNotFound)

	if _, err := repo.RootUserID(1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestUserRepository_RoleIDsOf(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT `role_id` FROM `sys_user_role` WHERE user_id = \\?").
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(2).AddRow(3))

	roleIDs, err := repo.RoleIDsOf(5)
	if err != nil {
		t.Fatalf("RoleIDsOf() error: %v", err)
	}
	if len(roleIDs) != 2 || roleIDs[0] != 2 || roleIDs[1] != 3 {
		t.Fatalf("unexpected role ids: %v", roleIDs)
	}
}

func TestUserRepository_PageSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT\\(.*\\)\\) FROM sys_user AS user").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery("SELECT user\\.id, .* FROM sys_user AS user .* GROUP BY .* ORDER BY user\\.updated_at DESC LIMIT \\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "department_id", "username", "name", "nick_name", "email", "phone",
			"remark", "head_img", "status", "created_at", "updated_at", "department_name", "role_names",
		}).AddRow(3, 2, "bob", "Bob", "bobby", "b@b.c", "139", "", "", 1, now, now, "研发部", "运营,测试"))

	rows, total, err := repo.PageSearch([]uint{1, 5}, PageSearchQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("PageSearch() error: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if len(rows) != 1 || rows[0].Username != "bob" || rows[0].DepartmentName != "研发部" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].RoleNames != "运营,测试" {
		t.Fatalf("unexpected role names: %q", rows[0].RoleNames)
	}
}

func TestUserRepository_PageSearch_EmptyResult(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT\\(.*\\)\\) FROM sys_user AS user").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := repo.PageSearch([]uint{1, 5}, PageSearchQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("PageSearch() error: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("expected empty result, got total=%d rows=%+v", total, rows)
	}
}
