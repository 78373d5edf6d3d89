package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户身份记录，ID 分配后不可变
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// Credential 密码哈希记录，与 User 一对一，主键即用户ID
type Credential struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Hash      string    `gorm:"type:char(60);not null"`
	Version   int       `gorm:"default:1;not null"` // 乐观锁
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Credential) TableName() string {
	return "security"
}

// UserChanges 资料修改，nil 字段不修改
type UserChanges struct {
	Username *string
	Email    *string
}

// Empty reports whether no field is set.
func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil
}

// PublicUser 对外公开的用户信息
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='user portal'").
		AutoMigrate(&User{}, &Credential{})
}
