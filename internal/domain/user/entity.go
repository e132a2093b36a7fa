package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// User 用户实体
// 认证/注册由外部身份服务负责，本系统只消费已验证的身份（JWT）。
// 这里保留的字段服务于订单归属、通知投递和管理员广播。
type User struct {
	ID        uint
	Email     string
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
