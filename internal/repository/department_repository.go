package repository

import (
	"sys_admin_go/internal/model"

	"gorm.io/gorm"
)

// DepartmentRepository 接口定义了部门数据的持久化操作。
type DepartmentRepository interface {
	FindByID(deptID uint) (*model.SysDepartment, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建一个新的 DepartmentRepository 实例。
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

// FindByID 根据ID查找部门。
func (r *departmentRepository) FindByID(deptID uint) (*model.SysDepartment, error) {
	var dept model.SysDepartment
	if err := r.db.First(&dept, deptID).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}
