package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" gorm:"unique_index:uni_user_name"`
	Nickname string   `json:"nickname"`
	Email    string   `json:"email"`
	Secret   string   `json:"-"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Email    string   `json:"email"`
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,lte=128"`
	Nickname string `json:"nickname" binding:"lte=128"`
	Email    string `json:"email" binding:"omitempty,email"`
	Secret   string `json:"secret" binding:"required,gte=6"`
}

type UserUpdation struct {
	Nickname string `json:"nickname" binding:"lte=128"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" binding:"required"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6"`
}

type UserRole struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role"`
	Role   string   `json:"role" gorm:"unique_index:uni_user_role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *UserRole) TableName() string {
	return "user_roles"
}

type RoleAssignment struct {
	UserID types.ID `json:"userId" binding:"required"`
	Role   string   `json:"role" binding:"required,oneof=admin aprovador gestor_centro_custo visualizador"`
}
