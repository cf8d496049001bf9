package logic

import (
	"errors"
	"fmt"

	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// ProfileLogic 用户档案业务逻辑
type ProfileLogic struct {
	db *gorm.DB
}

// NewProfileLogic 创建用户档案业务逻辑
func NewProfileLogic(db *gorm.DB) *ProfileLogic {
	return &ProfileLogic{db: db}
}

// CreateProfile 创建用户档案
func (l *ProfileLogic) CreateProfile(profile *model.ProfileModel) error {
	if profile.Username == "" {
		return NewValidationError("用户名不能为空")
	}
	if profile.Role == "" {
		profile.Role = string(model.ProfileRoleUser)
	}
	if profile.Role != string(model.ProfileRoleUser) && profile.Role != string(model.ProfileRoleAdmin) {
		return NewValidationError("无效的用户角色")
	}

	if err := l.db.Create(profile).Error; err != nil {
		return fmt.Errorf("创建用户档案失败: %w", err)
	}
	return nil
}

// GetProfile 获取用户档案
func (l *ProfileLogic) GetProfile(id int64) (*model.ProfileModel, error) {
	var profile model.ProfileModel
	if err := l.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取用户档案失败: %w", err)
	}
	return &profile, nil
}
