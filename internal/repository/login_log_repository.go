package repository

import (
	"fmt"

	"sys_admin_go/internal/model"

	"gorm.io/gorm"
)

// LoginLogRepository 接口定义了登录日志的持久化操作。
type LoginLogRepository interface {
	Create(entry *model.SysLoginLog) error
}

type loginLogRepository struct {
	db *gorm.DB
}

// NewLoginLogRepository 创建一个新的 LoginLogRepository 实例。
func NewLoginLogRepository(db *gorm.DB) LoginLogRepository {
	return &loginLogRepository{db: db}
}

// Create 写入一条登录审计记录。
func (r *loginLogRepository) Create(entry *model.SysLoginLog) error {
	if entry == nil {
		return fmt.Errorf("login log entry is nil")
	}
	return r.db.Create(entry).Error
}
