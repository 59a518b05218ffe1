package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMenuRepository_PermsByRoleIDs(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewMenuRepository(gdb)

	mock.ExpectQuery("SELECT DISTINCT `sys_menu`\\.`perms` FROM `sys_menu` INNER JOIN sys_role_menu").
		WillReturnRows(sqlmock.NewRows([]string{"perms"}).AddRow("sys:user:add").AddRow("sys:user:page"))

	perms, err := repo.PermsByRoleIDs([]uint{2, 3})
	if err != nil {
		t.Fatalf("PermsByRoleIDs() error: %v", err)
	}
	if len(perms) != 2 || perms[0] != "sys:user:add" {
		t.Fatalf("unexpected perms: %v", perms)
	}
}

// 空角色列表不应触发任何 SQL，直接返回空结果。
func TestMenuRepository_EmptyRoleIDs(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewMenuRepository(gdb)

	menus, err := repo.FindByRoleIDs(nil)
	if err != nil {
		t.Fatalf("FindByRoleIDs() error: %v", err)
	}
	if len(menus) != 0 {
		t.Fatalf("expected no menus, got %+v", menus)
	}

	perms, err := repo.PermsByRoleIDs(nil)
	if err != nil {
		t.Fatalf("PermsByRoleIDs() error: %v", err)
	}
	if len(perms) != 0 {
		t.Fatalf("expected no perms, got %v", perms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
