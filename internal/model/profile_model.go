package model

import (
	"time"
)

// ProfileModel 用户档案
type ProfileModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `json:"username" gorm:"not null;uniqueIndex"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role" gorm:"default:'user'"` // user, admin
	Bio      string `json:"bio" gorm:"type:text"`
	Website  string `json:"website"`
}

// ProfileRole 用户角色
type ProfileRole string

const (
	ProfileRoleUser  ProfileRole = "user"  // 普通用户
	ProfileRoleAdmin ProfileRole = "admin" // 管理员
)

// TableName 自定义表名
func (ProfileModel) TableName() string {
	return "profile"
}
